package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/acharya-rj/admissions/internal/model"
	"go.uber.org/zap"
)

// FeeBandStore — справочник тарифных вилок
type FeeBandStore interface {
	FindBand(ctx context.Context, class int, category model.FeeCategory) (*model.FeeBand, error)
}

// FeeService сопоставляет курс и категорию с тарифной вилкой.
// Не зависит от состояния зачисления: используется после принятия решения.
type FeeService struct {
	bands        FeeBandStore
	applications ApplicationStore
	decisions    DecisionStore
	logger       *zap.Logger
}

func NewFeeService(bands FeeBandStore, applications ApplicationStore, decisions DecisionStore, logger *zap.Logger) *FeeService {
	return &FeeService{
		bands:        bands,
		applications: applications,
		decisions:    decisions,
		logger:       logger,
	}
}

// FeeFor извлекает номер класса из описания курса и возвращает вилку
// для класса и категории. Если класс не извлекается или вилка не
// настроена — ErrFeeBandNotFound; запасной вариант выбирает вызывающий.
func (s *FeeService) FeeFor(ctx context.Context, course, category string) (*model.FeeBand, error) {
	class, ok := model.ParseClass(course)
	if !ok {
		return nil, model.ErrFeeBandNotFound
	}

	band, err := s.bands.FindBand(ctx, class, model.NormalizeCategory(category))
	if err != nil {
		return nil, fmt.Errorf("find fee band: %w", err)
	}
	if band == nil {
		return nil, model.ErrFeeBandNotFound
	}

	return band, nil
}

// FeeQuote — расчёт платы для заявления вместе с принятыми школами.
// TotalFee — нижняя граница вилки, она же сумма к отображению.
type FeeQuote struct {
	ReferenceID     string            `json:"reference_id"`
	ApplicantName   string            `json:"applicant_name"`
	CourseApplied   string            `json:"course_applied"`
	Category        string            `json:"category"`
	Band            *FeeBandView      `json:"fee_structure"`
	AcceptedSchools []*model.Decision `json:"accepted_schools"`
}

// FeeBandView — вилка в формате ответа API
type FeeBandView struct {
	ClassRange   string            `json:"class_range"`
	Category     model.FeeCategory `json:"category"`
	AnnualFeeMin float64           `json:"annual_fee_min"`
	AnnualFeeMax float64           `json:"annual_fee_max"`
	TotalFee     float64           `json:"total_fee"`
}

// QuoteForApplication резолвит вилку по заявлению и прикладывает список
// принявших школ
func (s *FeeService) QuoteForApplication(ctx context.Context, referenceID string) (*FeeQuote, error) {
	app, err := s.applications.GetByReferenceID(ctx, strings.ToUpper(strings.TrimSpace(referenceID)))
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, model.ErrApplicationNotFound
	}

	band, err := s.FeeFor(ctx, app.CourseApplied, app.Category)
	if err != nil {
		return nil, err
	}

	accepted, err := s.decisions.ListAcceptedByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list accepted decisions: %w", err)
	}

	return &FeeQuote{
		ReferenceID:     app.ReferenceID,
		ApplicantName:   app.ApplicantName,
		CourseApplied:   app.CourseApplied,
		Category:        app.Category,
		Band: &FeeBandView{
			ClassRange:   band.ClassRange(),
			Category:     band.Category,
			AnnualFeeMin: band.AnnualFeeMin,
			AnnualFeeMax: band.AnnualFeeMax,
			TotalFee:     band.AnnualFeeMin,
		},
		AcceptedSchools: accepted,
	}, nil
}
