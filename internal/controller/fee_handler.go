package controller

import (
	"net/http"

	"github.com/acharya-rj/admissions/internal/service"
	"go.uber.org/zap"
)

// FeeHandler — расчёт платы по заявлению
type FeeHandler struct {
	fees   *service.FeeService
	logger *zap.Logger
}

func NewFeeHandler(fees *service.FeeService, logger *zap.Logger) *FeeHandler {
	return &FeeHandler{fees: fees, logger: logger}
}

type calculateFeeRequest struct {
	ReferenceID string `json:"reference_id"`
}

func (h *FeeHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateFeeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ReferenceID == "" {
		respondBadRequest(w, "reference_id is required")
		return
	}

	quote, err := h.fees.QuoteForApplication(r.Context(), req.ReferenceID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, quote)
}
