package app

import (
	"context"
	"time"

	"github.com/acharya-rj/admissions/internal/service"
	"go.uber.org/zap"
)

// Sweeper управляет фоновыми задачами
type Sweeper struct {
	verifications *service.VerificationService
	logger        *zap.Logger
	stopChan      chan struct{}
}

// NewSweeper создаёт новый фоновый обходчик
func NewSweeper(verifications *service.VerificationService, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		verifications: verifications,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting background sweeper")

	go s.runAuditTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping background sweeper")
	close(s.stopChan)
}

// runAuditTask периодически считает протухшие неподтверждённые коды.
// Таблица подтверждений — журнал аудита, ничего не удаляется:
// задача только сообщает размер хвоста
func (s *Sweeper) runAuditTask(ctx context.Context) {
	// Первый замер сразу при старте
	s.report(ctx)

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.report(ctx)
		case <-s.stopChan:
			s.logger.Info("Verification audit task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Verification audit task cancelled")
			return
		}
	}
}

func (s *Sweeper) report(ctx context.Context) {
	count, err := s.verifications.ExpiredUnverified(ctx)
	if err != nil {
		s.logger.Error("Failed to count expired verifications", zap.Error(err))
		return
	}

	if count > 0 {
		s.logger.Info("Expired unverified codes on record", zap.Int64("count", count))
	}
}
