package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acharya-rj/admissions/internal/model"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Граница повторов при коллизии трек-номера. Пространство 36^6 в год,
// так что серия коллизий означает проблему генератора, а не невезение.
const referenceIDMaxRetries = 8

// ApplicationService владеет заявлением и связями с предпочтёнными школами
type ApplicationService struct {
	tx            Transactor
	applications  ApplicationStore
	decisions     DecisionStore
	verifications VerificationStore
	schools       SchoolDirectory
	notifier      Notifier
	logger        *zap.Logger
	now           func() time.Time
}

func NewApplicationService(
	tx Transactor,
	applications ApplicationStore,
	decisions DecisionStore,
	verifications VerificationStore,
	schools SchoolDirectory,
	notifier Notifier,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		tx:            tx,
		applications:  applications,
		decisions:     decisions,
		verifications: verifications,
		schools:       schools,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

// SubmitInput — данные формы подачи заявления
type SubmitInput struct {
	ApplicantName     string
	DateOfBirth       time.Time
	Email             string
	PhoneNumber       string
	Address           string
	Category          string
	CourseApplied     string
	PreviousSchool    string
	LastPercentage    *float64
	FirstPreference   *int64
	SecondPreference  *int64
	ThirdPreference   *int64
	VerificationToken string
}

// Submit создаёт заявление и по одному решению на каждую выбранную школу.
// Требует действующий токен подтверждения почты; трек-номер выделяется
// с ограниченным числом повторов под уникальным ограничением БД.
func (s *ApplicationService) Submit(ctx context.Context, input SubmitInput) (*model.Application, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	now := s.now()

	// Токен — это сам подтверждённый код; принимается не позднее часа
	// после подтверждения, иначе отказ без каких-либо записей
	verification, err := s.verifications.LatestVerified(ctx, input.Email, input.VerificationToken)
	if err != nil {
		return nil, fmt.Errorf("resolve verification token: %w", err)
	}
	if verification == nil || !verification.TokenUsableAt(now) {
		return nil, model.ErrVerificationRequired
	}

	app := &model.Application{
		ApplicantName:    strings.TrimSpace(input.ApplicantName),
		DateOfBirth:      input.DateOfBirth,
		Email:            input.Email,
		PhoneNumber:      strings.TrimSpace(input.PhoneNumber),
		Address:          strings.TrimSpace(input.Address),
		Category:         strings.ToLower(strings.TrimSpace(input.Category)),
		CourseApplied:    strings.TrimSpace(input.CourseApplied),
		PreviousSchool:   strings.TrimSpace(input.PreviousSchool),
		LastPercentage:   input.LastPercentage,
		FirstPrefSchool:  input.FirstPreference,
		SecondPrefSchool: input.SecondPreference,
		ThirdPrefSchool:  input.ThirdPreference,
		Status:           model.ApplicationStatusPending,
		VerificationID:   verification.ID,
	}

	backoff := retry.WithMaxRetries(referenceIDMaxRetries, retry.NewExponential(10*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		referenceID, err := generateReferenceID(now.Year())
		if err != nil {
			return err
		}
		app.ReferenceID = referenceID

		txErr := s.tx.InTx(ctx, func(ctx context.Context, stores TxStores) error {
			if err := stores.Applications.Create(ctx, app); err != nil {
				return err
			}
			return createDecisionsForPreferences(ctx, stores.Decisions, app)
		})
		if txErr != nil {
			if errors.Is(txErr, model.ErrDuplicateReferenceID) {
				return retry.RetryableError(txErr)
			}
			return txErr
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateReferenceID) {
			return nil, fmt.Errorf("%w: %w", model.ErrReferenceIDExhausted, err)
		}
		return nil, fmt.Errorf("submit application: %w", err)
	}

	s.logger.Info("Application submitted",
		zap.Int64("application_id", app.ID),
		zap.String("reference_id", app.ReferenceID),
		zap.String("email", app.Email),
		zap.Int("preferences", len(app.Preferences())),
	)

	// Подтверждение — best effort: заявление уже зафиксировано
	if err := s.notifier.SendSubmissionConfirmation(ctx, app); err != nil {
		s.logger.Warn("Failed to send submission confirmation",
			zap.String("reference_id", app.ReferenceID),
			zap.Error(err),
		)
	}

	return s.attachDecisions(ctx, app)
}

// Track возвращает заявление со всеми решениями по публичному трек-номеру
func (s *ApplicationService) Track(ctx context.Context, referenceID string) (*model.Application, error) {
	referenceID = strings.ToUpper(strings.TrimSpace(referenceID))
	if referenceID == "" {
		return nil, &model.ValidationError{Fields: map[string]string{"reference_id": "reference id is required"}}
	}

	app, err := s.applications.GetByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, fmt.Errorf("track application: %w", err)
	}
	if app == nil {
		return nil, model.ErrApplicationNotFound
	}

	return s.attachDecisions(ctx, app)
}

// EnsureDecisions страхующе досоздаёт отсутствующие решения для предпочтений
// заявления. Идемпотентно: существующие пары (заявление, школа) не трогаются.
func (s *ApplicationService) EnsureDecisions(ctx context.Context, applicationID int64) error {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return model.ErrApplicationNotFound
	}

	return createDecisionsForPreferences(ctx, s.decisions, app)
}

func createDecisionsForPreferences(ctx context.Context, decisions DecisionStore, app *model.Application) error {
	for _, pref := range app.Preferences() {
		_, err := decisions.CreateIfAbsent(ctx, &model.Decision{
			ApplicationID:    app.ID,
			SchoolID:         pref.SchoolID,
			PreferenceOrder:  pref.Order,
			Decision:         model.DecisionStatusPending,
			EnrollmentStatus: model.EnrollmentNotEnrolled,
			PaymentStatus:    model.PaymentPending,
		})
		if err != nil {
			return fmt.Errorf("create decision for school %d: %w", pref.SchoolID, err)
		}
	}
	return nil
}

func (s *ApplicationService) attachDecisions(ctx context.Context, app *model.Application) (*model.Application, error) {
	decisions, err := s.decisions.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	app.Decisions = decisions
	return app, nil
}

func (s *ApplicationService) validate(ctx context.Context, input *SubmitInput) error {
	fields := make(map[string]string)

	if strings.TrimSpace(input.ApplicantName) == "" {
		fields["applicant_name"] = "applicant name is required"
	}
	if err := validateEmail(input.Email); err != nil {
		fields["email"] = "a valid email address is required"
	}
	if input.DateOfBirth.IsZero() {
		fields["date_of_birth"] = "date of birth is required"
	}
	if strings.TrimSpace(input.CourseApplied) == "" {
		fields["course_applied"] = "course is required"
	}
	if input.VerificationToken == "" {
		fields["verification_token"] = "verification token is required"
	}

	prefs := collectPreferences(input)
	if len(prefs) == 0 {
		fields["first_preference"] = "at least one school preference is required"
	}
	if hasDuplicates(prefs) {
		fields["preferences"] = "a school may appear in at most one preference"
	}

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}

	ok, err := s.schools.ExistActive(ctx, prefs)
	if err != nil {
		return fmt.Errorf("check preference schools: %w", err)
	}
	if !ok {
		return &model.ValidationError{Fields: map[string]string{"preferences": "all preference schools must exist and be active"}}
	}

	return nil
}

func collectPreferences(input *SubmitInput) []int64 {
	var ids []int64
	for _, p := range []*int64{input.FirstPreference, input.SecondPreference, input.ThirdPreference} {
		if p != nil {
			ids = append(ids, *p)
		}
	}
	return ids
}

func hasDuplicates(ids []int64) bool {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
