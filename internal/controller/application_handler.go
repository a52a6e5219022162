package controller

import (
	"net/http"
	"time"

	"github.com/acharya-rj/admissions/internal/service"
	"go.uber.org/zap"
)

// ApplicationHandler — подача и отслеживание заявлений
type ApplicationHandler struct {
	applications *service.ApplicationService
	logger       *zap.Logger
}

func NewApplicationHandler(applications *service.ApplicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

type submitRequest struct {
	ApplicantName     string   `json:"applicant_name"`
	DateOfBirth       string   `json:"date_of_birth"`
	Email             string   `json:"email"`
	PhoneNumber       string   `json:"phone_number"`
	Address           string   `json:"address"`
	Category          string   `json:"category"`
	CourseApplied     string   `json:"course_applied"`
	PreviousSchool    string   `json:"previous_school"`
	LastPercentage    *float64 `json:"last_percentage"`
	FirstPreference   *int64   `json:"first_preference_school_id"`
	SecondPreference  *int64   `json:"second_preference_school_id"`
	ThirdPreference   *int64   `json:"third_preference_school_id"`
	VerificationToken string   `json:"verification_token"`
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		respondBadRequest(w, "date_of_birth must be in YYYY-MM-DD format")
		return
	}

	app, err := h.applications.Submit(r.Context(), service.SubmitInput{
		ApplicantName:     req.ApplicantName,
		DateOfBirth:       dob,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		Category:          req.Category,
		CourseApplied:     req.CourseApplied,
		PreviousSchool:    req.PreviousSchool,
		LastPercentage:    req.LastPercentage,
		FirstPreference:   req.FirstPreference,
		SecondPreference:  req.SecondPreference,
		ThirdPreference:   req.ThirdPreference,
		VerificationToken: req.VerificationToken,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) Track(w http.ResponseWriter, r *http.Request) {
	referenceID := r.URL.Query().Get("reference_id")
	if referenceID == "" {
		respondBadRequest(w, "reference_id query parameter is required")
		return
	}

	app, err := h.applications.Track(r.Context(), referenceID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, app)
}
