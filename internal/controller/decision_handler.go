package controller

import (
	"net/http"
	"strconv"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/acharya-rj/admissions/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DecisionHandler — вердикты школ и переходы зачисления
type DecisionHandler struct {
	decisions *service.DecisionService
	logger    *zap.Logger
}

func NewDecisionHandler(decisions *service.DecisionService, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{decisions: decisions, logger: logger}
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Comments string `json:"comments"`
	Reviewer string `json:"reviewer"`
}

func (h *DecisionHandler) Review(w http.ResponseWriter, r *http.Request) {
	decisionID, ok := pathID(w, r, "decisionID")
	if !ok {
		return
	}

	var req reviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	decision, err := h.decisions.Review(r.Context(), decisionID, model.DecisionStatus(req.Decision), req.Comments, req.Reviewer)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, decision)
}

type enrollRequest struct {
	DecisionID       int64  `json:"decision_id"`
	PaymentReference string `json:"payment_reference"`
}

func (h *DecisionHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DecisionID == 0 {
		respondBadRequest(w, "decision_id is required")
		return
	}

	decision, err := h.decisions.Enroll(r.Context(), req.DecisionID, req.PaymentReference)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, decision)
}

type withdrawRequest struct {
	DecisionID int64  `json:"decision_id"`
	Reason     string `json:"reason"`
}

func (h *DecisionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DecisionID == 0 {
		respondBadRequest(w, "decision_id is required")
		return
	}

	decision, err := h.decisions.Withdraw(r.Context(), req.DecisionID, req.Reason)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, decision)
}

type chooseSchoolRequest struct {
	ReferenceID string `json:"reference_id"`
	DecisionID  int64  `json:"decision_id"`
}

func (h *DecisionHandler) ChooseSchool(w http.ResponseWriter, r *http.Request) {
	var req chooseSchoolRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ReferenceID == "" || req.DecisionID == 0 {
		respondBadRequest(w, "reference_id and decision_id are required")
		return
	}

	decision, err := h.decisions.ChooseAmongAccepted(r.Context(), req.ReferenceID, req.DecisionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, decision)
}

func (h *DecisionHandler) ListForSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := pathID(w, r, "schoolID")
	if !ok {
		return
	}

	apps, err := h.decisions.ListForSchool(r.Context(), schoolID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, apps)
}

func (h *DecisionHandler) AcceptedSchools(w http.ResponseWriter, r *http.Request) {
	referenceID := r.URL.Query().Get("reference_id")
	if referenceID == "" {
		respondBadRequest(w, "reference_id query parameter is required")
		return
	}

	accepted, err := h.decisions.AcceptedSchools(r.Context(), referenceID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, accepted)
}

// pathID читает числовой идентификатор из пути
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(w, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
