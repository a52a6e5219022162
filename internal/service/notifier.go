package service

import (
	"context"

	"github.com/acharya-rj/admissions/internal/model"
	"go.uber.org/zap"
)

// Notifier — контракт доставки уведомлений абитуриенту.
// Механика доставки (SMTP, шаблоны) вне ядра; ядро лишь вызывает контракт
// и логирует сбои.
type Notifier interface {
	SendOTP(ctx context.Context, email, otp, displayName string) error
	SendSubmissionConfirmation(ctx context.Context, app *model.Application) error
}

// LogNotifier пишет уведомления в лог. Используется в разработке и тестах;
// в бою заменяется реализацией поверх почтового шлюза.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendOTP(_ context.Context, email, otp, displayName string) error {
	n.logger.Info("OTP notification dispatched",
		zap.String("email", email),
		zap.String("display_name", displayName),
		zap.Int("otp_length", len(otp)),
	)
	return nil
}

func (n *LogNotifier) SendSubmissionConfirmation(_ context.Context, app *model.Application) error {
	n.logger.Info("Submission confirmation dispatched",
		zap.String("email", app.Email),
		zap.String("reference_id", app.ReferenceID),
	)
	return nil
}
