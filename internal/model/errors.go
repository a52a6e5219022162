package model

import (
	"errors"
	"fmt"
	"strings"
)

// Общие ошибки доменного слоя
var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDecisionNotFound     = errors.New("school decision not found")
	ErrSchoolNotFound       = errors.New("school not found")
	ErrVerificationNotFound = errors.New("no verification request found for this email")
	ErrFeeBandNotFound      = errors.New("fee structure not found for this course and category")

	ErrRateLimited          = errors.New("otp already sent recently")
	ErrInvalidCode          = errors.New("invalid otp")
	ErrCodeExpired          = errors.New("otp has expired")
	ErrTooManyAttempts      = errors.New("too many failed attempts")
	ErrVerificationRequired = errors.New("email verification required")

	ErrDuplicateReferenceID = errors.New("reference id already exists")
	ErrReferenceIDExhausted = errors.New("could not allocate a unique reference id")
)

// Refusal — отказ бизнес-правила: состояние не позволяет запрошенный переход.
// Причина детерминирована и не меняется при повторных попытках.
type Refusal struct {
	Reason string
}

func (r *Refusal) Error() string {
	return r.Reason
}

// Refuse создаёт отказ с форматированной причиной
func Refuse(format string, args ...any) *Refusal {
	return &Refusal{Reason: fmt.Sprintf(format, args...)}
}

// IsRefusal проверяет является ли ошибка отказом бизнес-правила
func IsRefusal(err error) bool {
	var r *Refusal
	return errors.As(err, &r)
}

// ValidationError — некорректный ввод; никакие изменения не выполнялись
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation проверяет является ли ошибка ошибкой валидации
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
