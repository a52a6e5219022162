package controller

import (
	"net/http"

	"github.com/acharya-rj/admissions/internal/service"
	"go.uber.org/zap"
)

// VerificationHandler — запрос и подтверждение кода почты
type VerificationHandler struct {
	verifications *service.VerificationService
	logger        *zap.Logger
}

func NewVerificationHandler(verifications *service.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{verifications: verifications, logger: logger}
}

type requestCodeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *VerificationHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.verifications.RequestCode(r.Context(), req.Email, req.Name); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "OTP sent to your email address")
}

type confirmCodeRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *VerificationHandler) ConfirmCode(w http.ResponseWriter, r *http.Request) {
	var req confirmCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.verifications.VerifyCode(r.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"verification_token": token})
}
