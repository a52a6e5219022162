package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/acharya-rj/admissions/internal/model"
)

// In-memory реализации контрактов хранилища для тестов сервисов.
// Семантика как у БД: наружу отдаются копии, изменения видны только после Update.

type memVerifications struct {
	mu     sync.Mutex
	nextID int64
	rows   []*model.EmailVerification
}

func newMemVerifications() *memVerifications {
	return &memVerifications{nextID: 1}
}

func (m *memVerifications) Create(_ context.Context, email, otp string, createdAt, expiresAt time.Time) (*model.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := &model.EmailVerification{
		ID:        m.nextID,
		Email:     email,
		OTP:       otp,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	m.nextID++
	m.rows = append(m.rows, v)

	out := *v
	return &out, nil
}

func (m *memVerifications) HasRecent(_ context.Context, email string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.rows {
		if v.Email == email && !v.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memVerifications) LatestUnverified(_ context.Context, email string) (*model.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *model.EmailVerification
	for _, v := range m.rows {
		if v.Email != email || v.IsVerified {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, nil
	}

	out := *latest
	return &out, nil
}

func (m *memVerifications) LatestVerified(_ context.Context, email, otp string) (*model.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *model.EmailVerification
	for _, v := range m.rows {
		if v.Email != email || v.OTP != otp || !v.IsVerified {
			continue
		}
		if latest == nil || v.VerifiedAt.After(*latest.VerifiedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, nil
	}

	out := *latest
	return &out, nil
}

func (m *memVerifications) IncrementAttempts(_ context.Context, id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.rows {
		if v.ID == id {
			v.Attempts++
			return v.Attempts, nil
		}
	}
	return 0, model.ErrVerificationNotFound
}

func (m *memVerifications) MarkVerified(_ context.Context, id int64, verifiedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.rows {
		if v.ID == id && !v.IsVerified {
			v.IsVerified = true
			at := verifiedAt
			v.VerifiedAt = &at
			return nil
		}
	}
	return model.ErrInvalidCode
}

func (m *memVerifications) CountExpiredUnverified(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, v := range m.rows {
		if !v.IsVerified && v.ExpiresAt.Before(before) {
			count++
		}
	}
	return count, nil
}

func (m *memVerifications) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memApplications struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Application
	byRef  map[string]int64
}

func newMemApplications() *memApplications {
	return &memApplications{
		nextID: 1,
		rows:   make(map[int64]*model.Application),
		byRef:  make(map[string]int64),
	}
}

func (m *memApplications) Create(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byRef[app.ReferenceID]; exists {
		return model.ErrDuplicateReferenceID
	}

	app.ID = m.nextID
	if app.ApplicationDate.IsZero() {
		app.ApplicationDate = time.Now()
	}
	m.nextID++

	stored := *app
	m.rows[app.ID] = &stored
	m.byRef[app.ReferenceID] = app.ID
	return nil
}

func (m *memApplications) GetByID(_ context.Context, id int64) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	out := *app
	return &out, nil
}

func (m *memApplications) GetByReferenceID(_ context.Context, referenceID string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byRef[referenceID]
	if !ok {
		return nil, nil
	}
	out := *m.rows[id]
	return &out, nil
}

func (m *memApplications) Stats(_ context.Context) (*model.ApplicationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &model.ApplicationStats{}
	for _, app := range m.rows {
		stats.Total++
		switch app.Status {
		case model.ApplicationStatusPending:
			stats.Pending++
		case model.ApplicationStatusApproved:
			stats.Approved++
		case model.ApplicationStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (m *memApplications) Recent(_ context.Context, limit int) ([]*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	apps := make([]*model.Application, 0, len(m.rows))
	for _, app := range m.rows {
		out := *app
		apps = append(apps, &out)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ApplicationDate.After(apps[j].ApplicationDate) })
	if len(apps) > limit {
		apps = apps[:limit]
	}
	return apps, nil
}

type memDecisions struct {
	mu          sync.Mutex
	nextID      int64
	rows        map[int64]*model.Decision
	schoolNames map[int64]string
}

func newMemDecisions(schoolNames map[int64]string) *memDecisions {
	return &memDecisions{
		nextID:      1,
		rows:        make(map[int64]*model.Decision),
		schoolNames: schoolNames,
	}
}

func (m *memDecisions) copyOut(d *model.Decision) *model.Decision {
	out := *d
	out.SchoolName = m.schoolNames[d.SchoolID]
	return &out
}

func (m *memDecisions) CreateIfAbsent(_ context.Context, d *model.Decision) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.rows {
		if existing.ApplicationID == d.ApplicationID && existing.SchoolID == d.SchoolID {
			return false, nil
		}
	}

	stored := *d
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	m.nextID++
	m.rows[stored.ID] = &stored
	return true, nil
}

func (m *memDecisions) GetByID(_ context.Context, id int64) (*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return m.copyOut(d), nil
}

func (m *memDecisions) listByApplication(applicationID int64, filter func(*model.Decision) bool) []*model.Decision {
	var out []*model.Decision
	for _, d := range m.rows {
		if d.ApplicationID != applicationID {
			continue
		}
		if filter != nil && !filter(d) {
			continue
		}
		out = append(out, m.copyOut(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PreferenceOrder < out[j].PreferenceOrder })
	return out
}

func (m *memDecisions) ListByApplication(_ context.Context, applicationID int64) ([]*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listByApplication(applicationID, nil), nil
}

func (m *memDecisions) ListByApplicationForUpdate(_ context.Context, applicationID int64) ([]*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listByApplication(applicationID, nil), nil
}

func (m *memDecisions) ListAcceptedByApplication(_ context.Context, applicationID int64) ([]*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listByApplication(applicationID, func(d *model.Decision) bool {
		return d.Decision == model.DecisionStatusAccepted
	}), nil
}

func (m *memDecisions) ListBySchool(_ context.Context, schoolID int64) ([]*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Decision
	for _, d := range m.rows {
		if d.SchoolID == schoolID {
			out = append(out, m.copyOut(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDecisions) Update(_ context.Context, d *model.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[d.ID]; !ok {
		return model.ErrDecisionNotFound
	}
	stored := *d
	stored.SchoolName = ""
	m.rows[d.ID] = &stored
	return nil
}

func (m *memDecisions) ClearStudentChoice(_ context.Context, applicationID, exceptID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.rows {
		if d.ApplicationID == applicationID && d.ID != exceptID {
			d.IsStudentChoice = false
			d.StudentChoiceDate = nil
		}
	}
	return nil
}

func (m *memDecisions) Stats(_ context.Context) (*model.DecisionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &model.DecisionStats{}
	for _, d := range m.rows {
		stats.Total++
		if d.EnrollmentStatus == model.EnrollmentEnrolled {
			stats.Enrolled++
		}
		if d.EnrollmentStatus == model.EnrollmentWithdrawn {
			stats.Withdrawn++
		}
		if d.Decision == model.DecisionStatusAccepted {
			stats.Accepted++
		}
		if d.Decision == model.DecisionStatusPending {
			stats.Pending++
		}
	}
	return stats, nil
}

func (m *memDecisions) PendingReviews(_ context.Context, limit int) ([]*model.PendingReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.PendingReview
	for _, d := range m.rows {
		if d.Decision != model.DecisionStatusPending {
			continue
		}
		out = append(out, &model.PendingReview{
			SchoolName:      m.schoolNames[d.SchoolID],
			PreferenceOrder: d.PreferenceOrder,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memSchools struct {
	schools map[int64]*model.School
}

func newMemSchools(schools ...*model.School) *memSchools {
	m := &memSchools{schools: make(map[int64]*model.School)}
	for _, s := range schools {
		m.schools[s.ID] = s
	}
	return m
}

func (m *memSchools) GetByID(_ context.Context, id int64) (*model.School, error) {
	s, ok := m.schools[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (m *memSchools) ExistActive(_ context.Context, ids []int64) (bool, error) {
	for _, id := range ids {
		s, ok := m.schools[id]
		if !ok || !s.IsActive {
			return false, nil
		}
	}
	return true, nil
}

func (m *memSchools) names() map[int64]string {
	names := make(map[int64]string, len(m.schools))
	for id, s := range m.schools {
		names[id] = s.Name
	}
	return names
}

// memTx сериализует "транзакции" мьютексом: критические секции разных
// вызовов не перекрываются, как и строки под FOR UPDATE
type memTx struct {
	mu           sync.Mutex
	applications ApplicationStore
	decisions    DecisionStore
}

func (t *memTx) InTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx, TxStores{Applications: t.applications, Decisions: t.decisions})
}
