package repository

import (
	"context"
	"fmt"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/acharya-rj/admissions/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type ApplicationRepository struct {
	db base.Querier
}

func NewApplicationRepository(db base.Querier) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *ApplicationRepository) WithTx(tx pgx.Tx) *ApplicationRepository {
	return &ApplicationRepository{db: tx}
}

const applicationColumns = `
	id, reference_id, applicant_name, date_of_birth, email, phone_number, address,
	category, course_applied, previous_school, last_percentage,
	first_preference_school_id, second_preference_school_id, third_preference_school_id,
	status, application_date, verification_id
`

// Create создаёт заявление. Нарушение уникальности reference_id возвращается
// как ошибка 23505 — вызывающий повторяет с новым идентификатором.
func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (
			reference_id, applicant_name, date_of_birth, email, phone_number, address,
			category, course_applied, previous_school, last_percentage,
			first_preference_school_id, second_preference_school_id, third_preference_school_id,
			status, verification_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, application_date
	`

	err := r.db.QueryRow(
		ctx, query,
		app.ReferenceID,
		app.ApplicantName,
		app.DateOfBirth,
		app.Email,
		app.PhoneNumber,
		app.Address,
		app.Category,
		app.CourseApplied,
		app.PreviousSchool,
		app.LastPercentage,
		app.FirstPrefSchool,
		app.SecondPrefSchool,
		app.ThirdPrefSchool,
		app.Status,
		app.VerificationID,
	).Scan(&app.ID, &app.ApplicationDate)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create application: %w", model.ErrDuplicateReferenceID)
		}
		return fmt.Errorf("create application: %w", err)
	}

	return nil
}

// GetByID получает заявление по ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id), "get application by id")
}

// GetByReferenceID получает заявление по публичному трек-номеру
func (r *ApplicationRepository) GetByReferenceID(ctx context.Context, referenceID string) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE reference_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, referenceID), "get application by reference id")
}

// Stats возвращает счётчики заявлений по статусам
func (r *ApplicationRepository) Stats(ctx context.Context) (*model.ApplicationStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM applications
	`

	var stats model.ApplicationStats
	err := r.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected)
	if err != nil {
		return nil, fmt.Errorf("application stats: %w", err)
	}

	return &stats, nil
}

// Recent возвращает последние заявления
func (r *ApplicationRepository) Recent(ctx context.Context, limit int) ([]*model.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY application_date DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent applications: %w", err)
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app, err := r.scanOne(rows, "scan application")
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, nil
}

func (r *ApplicationRepository) scanOne(row pgx.Row, op string) (*model.Application, error) {
	var app model.Application
	err := row.Scan(
		&app.ID,
		&app.ReferenceID,
		&app.ApplicantName,
		&app.DateOfBirth,
		&app.Email,
		&app.PhoneNumber,
		&app.Address,
		&app.Category,
		&app.CourseApplied,
		&app.PreviousSchool,
		&app.LastPercentage,
		&app.FirstPrefSchool,
		&app.SecondPrefSchool,
		&app.ThirdPrefSchool,
		&app.Status,
		&app.ApplicationDate,
		&app.VerificationID,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &app, nil
}
