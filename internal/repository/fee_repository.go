package repository

import (
	"context"
	"fmt"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/acharya-rj/admissions/internal/repository/base"
)

type FeeBandRepository struct {
	db base.Querier
}

func NewFeeBandRepository(db base.Querier) *FeeBandRepository {
	return &FeeBandRepository{db: db}
}

// FindBand возвращает вилку, в которую попадает класс для данной категории
func (r *FeeBandRepository) FindBand(ctx context.Context, class int, category model.FeeCategory) (*model.FeeBand, error) {
	query := `
		SELECT id, class_min, class_max, category, annual_fee_min, annual_fee_max
		FROM fee_bands
		WHERE class_min <= $1 AND class_max >= $1 AND category = $2
	`

	var b model.FeeBand
	err := r.db.QueryRow(ctx, query, class, string(category)).Scan(
		&b.ID,
		&b.ClassMin,
		&b.ClassMax,
		&b.Category,
		&b.AnnualFeeMin,
		&b.AnnualFeeMax,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find fee band: %w", err)
	}

	return &b, nil
}
