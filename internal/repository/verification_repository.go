package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/acharya-rj/admissions/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type VerificationRepository struct {
	db base.Querier
}

func NewVerificationRepository(db base.Querier) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create создаёт новую запись подтверждения с кодом
func (r *VerificationRepository) Create(ctx context.Context, email, otp string, createdAt, expiresAt time.Time) (*model.EmailVerification, error) {
	query := `
		INSERT INTO email_verifications (email, otp, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	v := &model.EmailVerification{
		Email:     email,
		OTP:       otp,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}

	err := r.db.QueryRow(ctx, query, email, otp, createdAt, expiresAt).Scan(&v.ID)
	if err != nil {
		return nil, fmt.Errorf("create verification: %w", err)
	}

	return v, nil
}

// HasRecent проверяет был ли недавний запрос кода для адреса
func (r *VerificationRepository) HasRecent(ctx context.Context, email string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM email_verifications
			WHERE email = $1 AND created_at >= $2
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, email, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check recent verification: %w", err)
	}

	return exists, nil
}

// LatestUnverified получает самый свежий неподтверждённый код для адреса
func (r *VerificationRepository) LatestUnverified(ctx context.Context, email string) (*model.EmailVerification, error) {
	query := `
		SELECT id, email, otp, created_at, expires_at, is_verified, verified_at, attempts
		FROM email_verifications
		WHERE email = $1 AND is_verified = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, email), "get latest unverified")
}

// LatestVerified получает подтверждённую запись по адресу и коду.
// Используется при создании заявления для проверки токена.
func (r *VerificationRepository) LatestVerified(ctx context.Context, email, otp string) (*model.EmailVerification, error) {
	query := `
		SELECT id, email, otp, created_at, expires_at, is_verified, verified_at, attempts
		FROM email_verifications
		WHERE email = $1 AND otp = $2 AND is_verified = TRUE
		ORDER BY verified_at DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, email, otp), "get latest verified")
}

// IncrementAttempts атомарно увеличивает счётчик попыток и возвращает
// новое значение. Один UPDATE, чтобы гонка не позволила больше трёх
// действительных попыток.
func (r *VerificationRepository) IncrementAttempts(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE email_verifications
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int
	err := r.db.QueryRow(ctx, query, id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}

	return attempts, nil
}

// MarkVerified помечает код использованным. Успешное подтверждение
// возможно ровно один раз.
func (r *VerificationRepository) MarkVerified(ctx context.Context, id int64, verifiedAt time.Time) error {
	query := `
		UPDATE email_verifications
		SET is_verified = TRUE, verified_at = $1
		WHERE id = $2 AND is_verified = FALSE
	`

	tag, err := r.db.Exec(ctx, query, verifiedAt, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark verified: %w", model.ErrInvalidCode)
	}

	return nil
}

// CountExpiredUnverified считает неподтверждённые коды, истёкшие до
// указанного момента. Только чтение: записи остаются как журнал аудита
func (r *VerificationRepository) CountExpiredUnverified(ctx context.Context, before time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM email_verifications
		WHERE is_verified = FALSE AND expires_at < $1
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, before).Scan(&count); err != nil {
		return 0, fmt.Errorf("count expired verifications: %w", err)
	}

	return count, nil
}

func (r *VerificationRepository) scanOne(row pgx.Row, op string) (*model.EmailVerification, error) {
	var v model.EmailVerification
	err := row.Scan(
		&v.ID,
		&v.Email,
		&v.OTP,
		&v.CreatedAt,
		&v.ExpiresAt,
		&v.IsVerified,
		&v.VerifiedAt,
		&v.Attempts,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &v, nil
}
