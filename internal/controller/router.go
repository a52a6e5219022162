package controller

import (
	"net/http"

	"github.com/acharya-rj/admissions/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Services — зависимости HTTP-слоя
type Services struct {
	Verifications *service.VerificationService
	Applications  *service.ApplicationService
	Decisions     *service.DecisionService
	Fees          *service.FeeService
	Dashboard     *service.DashboardService
}

// NewRouter собирает маршруты API и цепочку middleware
func NewRouter(svc Services, logger *zap.Logger) http.Handler {
	verification := NewVerificationHandler(svc.Verifications, logger)
	application := NewApplicationHandler(svc.Applications, logger)
	decision := NewDecisionHandler(svc.Decisions, logger)
	fee := NewFeeHandler(svc.Fees, logger)
	dashboard := NewDashboardHandler(svc.Dashboard, logger)

	r := mux.NewRouter()
	r.Use(RequestID, Recover(logger), LogRequests(logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondMessage(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/admissions").Subrouter()

	api.HandleFunc("/verify-email/request", verification.RequestCode).Methods(http.MethodPost)
	api.HandleFunc("/verify-email/confirm", verification.ConfirmCode).Methods(http.MethodPost)

	api.HandleFunc("/applications", application.Submit).Methods(http.MethodPost)
	api.HandleFunc("/track", application.Track).Methods(http.MethodGet)
	api.HandleFunc("/accepted-schools", decision.AcceptedSchools).Methods(http.MethodGet)

	api.HandleFunc("/schools/{schoolID:[0-9]+}/applications", decision.ListForSchool).Methods(http.MethodGet)
	api.HandleFunc("/decisions/{decisionID:[0-9]+}", decision.Review).Methods(http.MethodPatch)
	api.HandleFunc("/enroll", decision.Enroll).Methods(http.MethodPost)
	api.HandleFunc("/withdraw", decision.Withdraw).Methods(http.MethodPost)
	api.HandleFunc("/choose-school", decision.ChooseSchool).Methods(http.MethodPost)

	api.HandleFunc("/calculate-fee", fee.Calculate).Methods(http.MethodPost)
	api.HandleFunc("/dashboard", dashboard.Stats).Methods(http.MethodGet)

	return r
}
