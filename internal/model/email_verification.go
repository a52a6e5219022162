package model

import "time"

// Время жизни кода и лимит попыток ввода
const (
	OTPLifetime    = 10 * time.Minute
	OTPMaxAttempts = 3

	// OTPResendWindow — минимальный интервал между запросами кода на один адрес
	OTPResendWindow = 2 * time.Minute

	// VerificationTokenLifetime — окно, в котором подтверждённый код принимается
	// при создании заявления
	VerificationTokenLifetime = time.Hour
)

// EmailVerification — одноразовый код подтверждения адреса.
// Записи никогда не удаляются: таблица служит журналом аудита.
type EmailVerification struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	OTP        string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Attempts   int        `json:"attempts"`
}

// IsExpired проверяет истёк ли срок действия кода
func (v *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// TokenUsableAt проверяет можно ли использовать подтверждённый код как токен
// при создании заявления: не позднее часа после подтверждения
func (v *EmailVerification) TokenUsableAt(now time.Time) bool {
	if !v.IsVerified || v.VerifiedAt == nil {
		return false
	}
	return now.Sub(*v.VerifiedAt) <= VerificationTokenLifetime
}
