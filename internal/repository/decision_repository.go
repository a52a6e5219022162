package repository

import (
	"context"
	"fmt"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/acharya-rj/admissions/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type DecisionRepository struct {
	db base.Querier
}

func NewDecisionRepository(db base.Querier) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *DecisionRepository) WithTx(tx pgx.Tx) *DecisionRepository {
	return &DecisionRepository{db: tx}
}

const decisionColumns = `
	sd.id, sd.application_id, sd.school_id, sd.preference_order,
	sd.decision, sd.decision_date, sd.review_comments, sd.reviewed_by,
	sd.enrollment_status, sd.enrollment_date, sd.withdrawal_date, sd.withdrawal_reason,
	sd.is_student_choice, sd.student_choice_date,
	sd.payment_status, sd.payment_reference, sd.created_at,
	s.school_name
`

// CreateIfAbsent создаёт решение школы, если его ещё нет.
// Пара (application_id, school_id) уникальна; повторный вызов — no-op.
func (r *DecisionRepository) CreateIfAbsent(ctx context.Context, d *model.Decision) (bool, error) {
	query := `
		INSERT INTO school_decisions (application_id, school_id, preference_order, decision, enrollment_status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (application_id, school_id) DO NOTHING
	`

	tag, err := r.db.Exec(
		ctx, query,
		d.ApplicationID,
		d.SchoolID,
		d.PreferenceOrder,
		d.Decision,
		d.EnrollmentStatus,
		d.PaymentStatus,
	)
	if err != nil {
		return false, fmt.Errorf("create decision: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetByID получает решение по ID вместе с именем школы
func (r *DecisionRepository) GetByID(ctx context.Context, id int64) (*model.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM school_decisions sd
		JOIN schools s ON s.id = sd.school_id
		WHERE sd.id = $1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, id), "get decision by id")
}

// ListByApplication получает все решения заявления.
// Порядок отображения: ранг предпочтения по возрастанию, дата решения по убыванию.
func (r *DecisionRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*model.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM school_decisions sd
		JOIN schools s ON s.id = sd.school_id
		WHERE sd.application_id = $1
		ORDER BY sd.preference_order ASC, sd.decision_date DESC NULLS LAST
	`

	return r.list(ctx, query, applicationID)
}

// ListByApplicationForUpdate блокирует и возвращает все решения заявления.
// Вызывается только внутри транзакции: заявление служит ареной блокировки
// для инварианта "не больше одного зачисления".
func (r *DecisionRepository) ListByApplicationForUpdate(ctx context.Context, applicationID int64) ([]*model.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM school_decisions sd
		JOIN schools s ON s.id = sd.school_id
		WHERE sd.application_id = $1
		ORDER BY sd.preference_order ASC
		FOR UPDATE OF sd
	`

	return r.list(ctx, query, applicationID)
}

// ListAcceptedByApplication получает принятые решения заявления
func (r *DecisionRepository) ListAcceptedByApplication(ctx context.Context, applicationID int64) ([]*model.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM school_decisions sd
		JOIN schools s ON s.id = sd.school_id
		WHERE sd.application_id = $1 AND sd.decision = 'accepted'
		ORDER BY sd.preference_order ASC, sd.decision_date DESC NULLS LAST
	`

	return r.list(ctx, query, applicationID)
}

// ListBySchool получает все решения, ожидающие или вынесенные данной школой
func (r *DecisionRepository) ListBySchool(ctx context.Context, schoolID int64) ([]*model.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM school_decisions sd
		JOIN schools s ON s.id = sd.school_id
		WHERE sd.school_id = $1
		ORDER BY sd.created_at DESC
	`

	return r.list(ctx, query, schoolID)
}

// Update сохраняет изменяемые поля решения
func (r *DecisionRepository) Update(ctx context.Context, d *model.Decision) error {
	query := `
		UPDATE school_decisions
		SET decision = $1,
			decision_date = $2,
			review_comments = $3,
			reviewed_by = $4,
			enrollment_status = $5,
			enrollment_date = $6,
			withdrawal_date = $7,
			withdrawal_reason = $8,
			is_student_choice = $9,
			student_choice_date = $10,
			payment_status = $11,
			payment_reference = $12
		WHERE id = $13
	`

	tag, err := r.db.Exec(
		ctx, query,
		d.Decision,
		d.DecisionDate,
		d.ReviewComments,
		d.ReviewedBy,
		d.EnrollmentStatus,
		d.EnrollmentDate,
		d.WithdrawalDate,
		d.WithdrawalReason,
		d.IsStudentChoice,
		d.StudentChoiceDate,
		d.PaymentStatus,
		d.PaymentReference,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("update decision: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update decision: %w", model.ErrDecisionNotFound)
	}

	return nil
}

// ClearStudentChoice снимает отметку выбора со всех решений заявления,
// кроме указанного
func (r *DecisionRepository) ClearStudentChoice(ctx context.Context, applicationID, exceptID int64) error {
	query := `
		UPDATE school_decisions
		SET is_student_choice = FALSE, student_choice_date = NULL
		WHERE application_id = $1 AND id <> $2 AND is_student_choice = TRUE
	`

	_, err := r.db.Exec(ctx, query, applicationID, exceptID)
	if err != nil {
		return fmt.Errorf("clear student choice: %w", err)
	}

	return nil
}

// Stats возвращает счётчики решений для панели администратора
func (r *DecisionRepository) Stats(ctx context.Context) (*model.DecisionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE enrollment_status = 'enrolled'),
			COUNT(*) FILTER (WHERE enrollment_status = 'withdrawn'),
			COUNT(*) FILTER (WHERE decision = 'accepted'),
			COUNT(*) FILTER (WHERE decision = 'pending')
		FROM school_decisions
	`

	var stats model.DecisionStats
	err := r.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Enrolled, &stats.Withdrawn, &stats.Accepted, &stats.Pending)
	if err != nil {
		return nil, fmt.Errorf("decision stats: %w", err)
	}

	return &stats, nil
}

// PendingReviews возвращает решения, ожидающие вердикта, вместе с данными заявлений
func (r *DecisionRepository) PendingReviews(ctx context.Context, limit int) ([]*model.PendingReview, error) {
	query := `
		SELECT a.reference_id, a.applicant_name, s.school_name, sd.preference_order,
			a.application_date, a.course_applied
		FROM school_decisions sd
		JOIN applications a ON a.id = sd.application_id
		JOIN schools s ON s.id = sd.school_id
		WHERE sd.decision = 'pending'
		ORDER BY a.application_date DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*model.PendingReview
	for rows.Next() {
		var pr model.PendingReview
		err := rows.Scan(
			&pr.ReferenceID,
			&pr.ApplicantName,
			&pr.SchoolName,
			&pr.PreferenceOrder,
			&pr.ApplicationDate,
			&pr.CourseApplied,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending review: %w", err)
		}
		reviews = append(reviews, &pr)
	}

	return reviews, nil
}

func (r *DecisionRepository) list(ctx context.Context, query string, args ...any) ([]*model.Decision, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*model.Decision
	for rows.Next() {
		d, err := r.scanOne(rows, "scan decision")
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	return decisions, nil
}

func (r *DecisionRepository) scanOne(row pgx.Row, op string) (*model.Decision, error) {
	var d model.Decision
	err := row.Scan(
		&d.ID,
		&d.ApplicationID,
		&d.SchoolID,
		&d.PreferenceOrder,
		&d.Decision,
		&d.DecisionDate,
		&d.ReviewComments,
		&d.ReviewedBy,
		&d.EnrollmentStatus,
		&d.EnrollmentDate,
		&d.WithdrawalDate,
		&d.WithdrawalReason,
		&d.IsStudentChoice,
		&d.StudentChoiceDate,
		&d.PaymentStatus,
		&d.PaymentReference,
		&d.CreatedAt,
		&d.SchoolName,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &d, nil
}
