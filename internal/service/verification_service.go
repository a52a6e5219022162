package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/acharya-rj/admissions/internal/model"
	"go.uber.org/zap"
)

// VerificationService выдаёт и проверяет одноразовые коды, открывающие
// подачу заявления
type VerificationService struct {
	store    VerificationStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewVerificationService(store VerificationStore, notifier Notifier, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// RequestCode создаёт новый код и отправляет его на адрес.
// Повторный запрос раньше чем через 2 минуты отклоняется.
func (s *VerificationService) RequestCode(ctx context.Context, email, displayName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}

	now := s.now()

	recent, err := s.store.HasRecent(ctx, email, now.Add(-model.OTPResendWindow))
	if err != nil {
		return fmt.Errorf("check recent verification: %w", err)
	}
	if recent {
		return model.ErrRateLimited
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	verification, err := s.store.Create(ctx, email, otp, now, now.Add(model.OTPLifetime))
	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	// Без доставленного кода запрос бессмысленен, поэтому сбой отправки
	// возвращается вызывающему
	if err := s.notifier.SendOTP(ctx, email, otp, displayName); err != nil {
		s.logger.Error("Failed to send OTP", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("send otp: %w", err)
	}

	s.logger.Info("OTP issued",
		zap.Int64("verification_id", verification.ID),
		zap.String("email", email),
	)

	return nil
}

// VerifyCode проверяет код и возвращает его как непрозрачный токен для
// создания заявления. Счётчик попыток увеличивается безусловно; четвёртая
// попытка отклоняется даже с правильным кодом.
func (s *VerificationService) VerifyCode(ctx context.Context, email, otp string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	otp = strings.TrimSpace(otp)

	verification, err := s.store.LatestUnverified(ctx, email)
	if err != nil {
		return "", fmt.Errorf("get verification: %w", err)
	}
	if verification == nil {
		return "", model.ErrVerificationNotFound
	}

	attempts, err := s.store.IncrementAttempts(ctx, verification.ID)
	if err != nil {
		return "", fmt.Errorf("increment attempts: %w", err)
	}

	now := s.now()

	switch {
	case attempts > model.OTPMaxAttempts:
		return "", model.ErrTooManyAttempts
	case verification.IsExpired(now):
		return "", model.ErrCodeExpired
	case verification.OTP != otp:
		return "", model.ErrInvalidCode
	}

	if err := s.store.MarkVerified(ctx, verification.ID, now); err != nil {
		return "", fmt.Errorf("mark verified: %w", err)
	}

	s.logger.Info("Email verified",
		zap.Int64("verification_id", verification.ID),
		zap.String("email", email),
	)

	return verification.OTP, nil
}

// ExpiredUnverified считает неподтверждённые коды, у которых истёк и срок
// самого кода, и часовое окно токена. Коды не удаляются: таблица — журнал
// аудита, счётчик нужен фоновой задаче для наблюдения за ростом хвоста
func (s *VerificationService) ExpiredUnverified(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-model.VerificationTokenLifetime)

	count, err := s.store.CountExpiredUnverified(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("count expired verifications: %w", err)
	}
	return count, nil
}

// generateOTP генерирует 6-значный цифровой код через crypto/rand
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func validateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") || strings.Contains(email, " ") {
		return &model.ValidationError{Fields: map[string]string{"email": "a valid email address is required"}}
	}
	return nil
}
