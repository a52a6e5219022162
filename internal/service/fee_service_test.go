package service

import (
	"context"
	"testing"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memFeeBands отражает сидовые вилки миграций
type memFeeBands struct {
	bands []*model.FeeBand
}

func newMemFeeBands() *memFeeBands {
	return &memFeeBands{bands: []*model.FeeBand{
		{ID: 1, ClassMin: 1, ClassMax: 8, Category: model.FeeCategoryGeneral, AnnualFeeMin: 5000, AnnualFeeMax: 15000},
		{ID: 2, ClassMin: 1, ClassMax: 8, Category: model.FeeCategoryReserved, AnnualFeeMin: 2500, AnnualFeeMax: 7500},
		{ID: 3, ClassMin: 9, ClassMax: 10, Category: model.FeeCategoryGeneral, AnnualFeeMin: 8000, AnnualFeeMax: 20000},
		{ID: 4, ClassMin: 9, ClassMax: 10, Category: model.FeeCategoryReserved, AnnualFeeMin: 4000, AnnualFeeMax: 10000},
		{ID: 5, ClassMin: 11, ClassMax: 12, Category: model.FeeCategoryGeneral, AnnualFeeMin: 12000, AnnualFeeMax: 30000},
		{ID: 6, ClassMin: 11, ClassMax: 12, Category: model.FeeCategoryReserved, AnnualFeeMin: 6000, AnnualFeeMax: 15000},
	}}
}

func (m *memFeeBands) FindBand(_ context.Context, class int, category model.FeeCategory) (*model.FeeBand, error) {
	for _, b := range m.bands {
		if b.ClassMin <= class && class <= b.ClassMax && b.Category == category {
			out := *b
			return &out, nil
		}
	}
	return nil, nil
}

func TestFeeFor(t *testing.T) {
	svc := NewFeeService(newMemFeeBands(), newMemApplications(), newMemDecisions(nil), zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		course   string
		category string
		wantMin  float64
	}{
		{"Class 5", "general", 5000},
		{"Class 5", "SC", 2500},
		{"10th", "", 8000},
		{"10th", "obc", 4000},
		{"12th Science", "general", 12000},
	}

	for _, tt := range tests {
		band, err := svc.FeeFor(ctx, tt.course, tt.category)
		require.NoError(t, err, "%s/%s", tt.course, tt.category)
		assert.Equal(t, tt.wantMin, band.AnnualFeeMin, "%s/%s", tt.course, tt.category)
	}

	_, err := svc.FeeFor(ctx, "Nursery", "general")
	assert.ErrorIs(t, err, model.ErrFeeBandNotFound)
}

func TestQuoteForApplication(t *testing.T) {
	schools := newMemSchools(
		&model.School{ID: 1, Name: "School A", IsActive: true},
		&model.School{ID: 2, Name: "School B", IsActive: true},
	)
	applications := newMemApplications()
	decisions := newMemDecisions(schools.names())
	svc := NewFeeService(newMemFeeBands(), applications, decisions, zap.NewNop())
	ctx := context.Background()

	one := int64(1)
	two := int64(2)
	app := &model.Application{
		ReferenceID:      "ADM-2025-FEED01",
		ApplicantName:    "Asha Verma",
		Email:            "asha@example.com",
		Category:         "obc",
		CourseApplied:    "Class 9",
		FirstPrefSchool:  &one,
		SecondPrefSchool: &two,
		Status:           model.ApplicationStatusPending,
	}
	require.NoError(t, applications.Create(ctx, app))

	for _, sid := range []int64{1, 2} {
		status := model.DecisionStatusAccepted
		if sid == 2 {
			status = model.DecisionStatusPending
		}
		_, err := decisions.CreateIfAbsent(ctx, &model.Decision{
			ApplicationID:    app.ID,
			SchoolID:         sid,
			PreferenceOrder:  model.PreferenceFirst,
			Decision:         status,
			EnrollmentStatus: model.EnrollmentNotEnrolled,
			PaymentStatus:    model.PaymentPending,
		})
		require.NoError(t, err)
	}

	quote, err := svc.QuoteForApplication(ctx, " adm-2025-feed01 ")
	require.NoError(t, err)
	assert.Equal(t, "ADM-2025-FEED01", quote.ReferenceID)
	assert.Equal(t, "9-10", quote.Band.ClassRange)
	assert.Equal(t, model.FeeCategoryReserved, quote.Band.Category)
	assert.Equal(t, float64(4000), quote.Band.AnnualFeeMin)
	assert.Equal(t, quote.Band.AnnualFeeMin, quote.Band.TotalFee)

	// Только принятые школы попадают в расчёт
	require.Len(t, quote.AcceptedSchools, 1)
	assert.Equal(t, "School A", quote.AcceptedSchools[0].SchoolName)

	_, err = svc.QuoteForApplication(ctx, "ADM-2025-ZZZZZZ")
	assert.ErrorIs(t, err, model.ErrApplicationNotFound)

	app2 := &model.Application{
		ReferenceID:   "ADM-2025-FEED02",
		ApplicantName: "Ravi",
		Email:         "ravi@example.com",
		CourseApplied: "B.Sc",
		Status:        model.ApplicationStatusPending,
	}
	require.NoError(t, applications.Create(ctx, app2))

	_, err = svc.QuoteForApplication(ctx, "ADM-2025-FEED02")
	assert.ErrorIs(t, err, model.ErrFeeBandNotFound)
}
