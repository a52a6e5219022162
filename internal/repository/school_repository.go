package repository

import (
	"context"
	"fmt"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/acharya-rj/admissions/internal/repository/base"
)

type SchoolRepository struct {
	db base.Querier
}

func NewSchoolRepository(db base.Querier) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// GetByID получает школу по ID
func (r *SchoolRepository) GetByID(ctx context.Context, id int64) (*model.School, error) {
	query := `
		SELECT id, school_name, school_code, district, block, village, contact_email, is_active, created_at
		FROM schools
		WHERE id = $1
	`

	var s model.School
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.Code,
		&s.District,
		&s.Block,
		&s.Village,
		&s.ContactEmail,
		&s.IsActive,
		&s.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school by id: %w", err)
	}

	return &s, nil
}

// ExistActive проверяет что все перечисленные школы существуют и активны
func (r *SchoolRepository) ExistActive(ctx context.Context, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	query := `
		SELECT COUNT(*) FROM schools
		WHERE id = ANY($1) AND is_active = TRUE
	`

	var count int
	err := r.db.QueryRow(ctx, query, ids).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check schools exist: %w", err)
	}

	return count == len(dedupe(ids)), nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
