package service

import (
	"context"
	"time"

	"github.com/acharya-rj/admissions/internal/model"
)

// Контракты хранилища, объявленные на стороне потребителя.
// Боевые реализации живут в internal/repository (pgx), тесты используют
// in-memory реализации.

type VerificationStore interface {
	Create(ctx context.Context, email, otp string, createdAt, expiresAt time.Time) (*model.EmailVerification, error)
	HasRecent(ctx context.Context, email string, since time.Time) (bool, error)
	LatestUnverified(ctx context.Context, email string) (*model.EmailVerification, error)
	LatestVerified(ctx context.Context, email, otp string) (*model.EmailVerification, error)
	IncrementAttempts(ctx context.Context, id int64) (int, error)
	MarkVerified(ctx context.Context, id int64, verifiedAt time.Time) error
	// CountExpiredUnverified считает неподтверждённые коды, истёкшие до
	// указанного момента. Записи не удаляются: таблица — журнал аудита
	CountExpiredUnverified(ctx context.Context, before time.Time) (int64, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id int64) (*model.Application, error)
	GetByReferenceID(ctx context.Context, referenceID string) (*model.Application, error)
	Stats(ctx context.Context) (*model.ApplicationStats, error)
	Recent(ctx context.Context, limit int) ([]*model.Application, error)
}

type DecisionStore interface {
	CreateIfAbsent(ctx context.Context, d *model.Decision) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Decision, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*model.Decision, error)
	// ListByApplicationForUpdate блокирует строки заявления до конца транзакции;
	// имеет смысл только внутри Transactor.InTx
	ListByApplicationForUpdate(ctx context.Context, applicationID int64) ([]*model.Decision, error)
	ListAcceptedByApplication(ctx context.Context, applicationID int64) ([]*model.Decision, error)
	ListBySchool(ctx context.Context, schoolID int64) ([]*model.Decision, error)
	Update(ctx context.Context, d *model.Decision) error
	ClearStudentChoice(ctx context.Context, applicationID, exceptID int64) error
	Stats(ctx context.Context) (*model.DecisionStats, error)
	PendingReviews(ctx context.Context, limit int) ([]*model.PendingReview, error)
}

// SchoolDirectory — справочник школ; ядро только читает его.
// Имена школ приходят вместе с решениями (JOIN в репозитории),
// отдельного метода выборки имён нет
type SchoolDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.School, error)
	ExistActive(ctx context.Context, ids []int64) (bool, error)
}

// TxStores — репозитории, привязанные к одной открытой транзакции
type TxStores struct {
	Applications ApplicationStore
	Decisions    DecisionStore
}

// Transactor исполняет fn в одной транзакции БД. Откат при любой ошибке.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}
