package service

import (
	"context"
	"fmt"

	"github.com/acharya-rj/admissions/internal/model"
	"go.uber.org/zap"
)

const (
	recentApplicationsLimit = 10
	pendingReviewsLimit     = 20
)

// DashboardStats — агрегированная сводка для панели администратора
type DashboardStats struct {
	Applications   *model.ApplicationStats     `json:"applications"`
	Decisions      *model.DecisionStats        `json:"decisions"`
	Recent         []*model.ApplicationSummary `json:"recent_applications"`
	PendingReviews []*model.PendingReview      `json:"pending_reviews"`
}

// DashboardService собирает сводные данные; только чтение
type DashboardService struct {
	applications ApplicationStore
	decisions    DecisionStore
	logger       *zap.Logger
}

func NewDashboardService(applications ApplicationStore, decisions DecisionStore, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		applications: applications,
		decisions:    decisions,
		logger:       logger,
	}
}

// Stats возвращает счётчики, последние заявления и очередь на рассмотрение
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	appStats, err := s.applications.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("application stats: %w", err)
	}

	decStats, err := s.decisions.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("decision stats: %w", err)
	}

	recent, err := s.recentSummaries(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.decisions.PendingReviews(ctx, pendingReviewsLimit)
	if err != nil {
		return nil, fmt.Errorf("pending reviews: %w", err)
	}

	return &DashboardStats{
		Applications:   appStats,
		Decisions:      decStats,
		Recent:         recent,
		PendingReviews: pending,
	}, nil
}

func (s *DashboardService) recentSummaries(ctx context.Context) ([]*model.ApplicationSummary, error) {
	apps, err := s.applications.Recent(ctx, recentApplicationsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}

	summaries := make([]*model.ApplicationSummary, 0, len(apps))
	for _, app := range apps {
		decisions, err := s.decisions.ListByApplication(ctx, app.ID)
		if err != nil {
			return nil, fmt.Errorf("list decisions for %s: %w", app.ReferenceID, err)
		}

		summary := &model.ApplicationSummary{
			ReferenceID:     app.ReferenceID,
			ApplicantName:   app.ApplicantName,
			Email:           app.Email,
			CourseApplied:   app.CourseApplied,
			ApplicationDate: app.ApplicationDate,
			Status:          app.Status,
		}

		summary.EnrollmentStatus = string(model.EnrollmentNotEnrolled)
		if active := model.ActiveEnrollment(decisions); active != nil {
			summary.EnrollmentStatus = string(model.EnrollmentEnrolled)
			summary.EnrolledSchool = active.SchoolName
		}
		for _, d := range decisions {
			if d.Decision == model.DecisionStatusAccepted {
				summary.AcceptedSchools++
			}
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}
