package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acharya-rj/admissions/internal/model"
	"go.uber.org/zap"
)

// response — единый конверт ответа API
type response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: true, Message: message})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, response{Success: false, Message: message})
}

// respondError переводит доменную ошибку в HTTP-статус.
// Отказы и валидация — 400, отсутствие — 404, частые запросы — 429,
// всё прочее считается инфраструктурным сбоем.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var validation *model.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, response{
			Success: false,
			Message: "validation failed",
			Errors:  validation.Fields,
		})
		return
	}

	var refusal *model.Refusal
	if errors.As(err, &refusal) {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: refusal.Reason})
		return
	}

	switch {
	case errors.Is(err, model.ErrApplicationNotFound),
		errors.Is(err, model.ErrDecisionNotFound),
		errors.Is(err, model.ErrSchoolNotFound),
		errors.Is(err, model.ErrVerificationNotFound),
		errors.Is(err, model.ErrFeeBandNotFound):
		writeJSON(w, http.StatusNotFound, response{Success: false, Message: err.Error()})

	case errors.Is(err, model.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, response{Success: false, Message: "OTP already sent recently, please wait before requesting again"})

	case errors.Is(err, model.ErrInvalidCode),
		errors.Is(err, model.ErrCodeExpired),
		errors.Is(err, model.ErrTooManyAttempts),
		errors.Is(err, model.ErrVerificationRequired):
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})

	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: "internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
