package repository

import (
	"context"
	"fmt"

	"github.com/acharya-rj/admissions/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Transactor исполняет функцию в одной транзакции pgx и отдаёт ей
// репозитории, привязанные к этой транзакции
type Transactor struct {
	pool         *pgxpool.Pool
	applications *ApplicationRepository
	decisions    *DecisionRepository
}

func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{
		pool:         pool,
		applications: NewApplicationRepository(pool),
		decisions:    NewDecisionRepository(pool),
	}
}

func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context, stores service.TxStores) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stores := service.TxStores{
		Applications: t.applications.WithTx(tx),
		Decisions:    t.decisions.WithTx(tx),
	}

	if err := fn(ctx, stores); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
