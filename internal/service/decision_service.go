package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/acharya-rj/admissions/internal/model"
	"go.uber.org/zap"
)

// DecisionService — машина состояний решений и зачислений.
// Все переходы выполняются под блокировкой строк одного заявления:
// заявление — арена инварианта "не больше одного зачисления".
type DecisionService struct {
	tx           Transactor
	decisions    DecisionStore
	applications ApplicationStore
	schools      SchoolDirectory
	logger       *zap.Logger
	now          func() time.Time
}

func NewDecisionService(tx Transactor, decisions DecisionStore, applications ApplicationStore, schools SchoolDirectory, logger *zap.Logger) *DecisionService {
	return &DecisionService{
		tx:           tx,
		decisions:    decisions,
		applications: applications,
		schools:      schools,
		logger:       logger,
		now:          time.Now,
	}
}

// Review записывает вердикт школы.
// Отклонить зачисленного абитуриента нельзя: сперва отзыв зачисления.
func (s *DecisionService) Review(ctx context.Context, decisionID int64, next model.DecisionStatus, comments, reviewer string) (*model.Decision, error) {
	if !model.ValidDecisionStatus(next) {
		return nil, &model.ValidationError{Fields: map[string]string{
			"decision": "decision must be pending, under_review, accepted, rejected, or waitlisted",
		}}
	}

	updated, err := s.mutate(ctx, decisionID, func(target *model.Decision, _ []*model.Decision) error {
		if err := target.CheckReview(next); err != nil {
			return err
		}
		target.ApplyReview(next, strings.TrimSpace(comments), reviewer, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Decision reviewed",
		zap.Int64("decision_id", updated.ID),
		zap.Int64("application_id", updated.ApplicationID),
		zap.String("decision", string(updated.Decision)),
		zap.String("reviewed_by", reviewer),
	)

	return updated, nil
}

// Enroll зачисляет абитуриента по решению.
// Проверка "ни одна другая строка заявления не enrolled" и запись нового
// состояния происходят в одной транзакции под FOR UPDATE, иначе два
// конкурентных вызова по разным предпочтениям могли бы пройти проверку
// одновременно.
func (s *DecisionService) Enroll(ctx context.Context, decisionID int64, paymentReference string) (*model.Decision, error) {
	updated, err := s.mutate(ctx, decisionID, func(target *model.Decision, siblings []*model.Decision) error {
		if err := target.CheckEnroll(siblings); err != nil {
			return err
		}
		target.ApplyEnrollment(s.now(), strings.TrimSpace(paymentReference))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Applicant enrolled",
		zap.Int64("decision_id", updated.ID),
		zap.Int64("application_id", updated.ApplicationID),
		zap.String("school", updated.SchoolName),
		zap.Bool("payment_completed", updated.PaymentStatus == model.PaymentCompleted),
	)

	return updated, nil
}

// Withdraw отзывает активное зачисление, освобождая место для зачисления
// в другую школу
func (s *DecisionService) Withdraw(ctx context.Context, decisionID int64, reason string) (*model.Decision, error) {
	updated, err := s.mutate(ctx, decisionID, func(target *model.Decision, _ []*model.Decision) error {
		if err := target.CheckWithdraw(); err != nil {
			return err
		}
		target.ApplyWithdrawal(s.now(), strings.TrimSpace(reason))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Enrollment withdrawn",
		zap.Int64("decision_id", updated.ID),
		zap.Int64("application_id", updated.ApplicationID),
		zap.String("school", updated.SchoolName),
	)

	return updated, nil
}

// ChooseAmongAccepted отмечает одно из принятых решений как предпочтение
// абитуриента. Метка совещательная и не заменяет зачисление; у заявления
// она может стоять только на одной строке.
func (s *DecisionService) ChooseAmongAccepted(ctx context.Context, referenceID string, decisionID int64) (*model.Decision, error) {
	app, err := s.applications.GetByReferenceID(ctx, strings.ToUpper(strings.TrimSpace(referenceID)))
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, model.ErrApplicationNotFound
	}

	var chosen *model.Decision
	err = s.tx.InTx(ctx, func(ctx context.Context, stores TxStores) error {
		locked, err := stores.Decisions.ListByApplicationForUpdate(ctx, app.ID)
		if err != nil {
			return err
		}

		target := findDecision(locked, decisionID)
		if target == nil {
			return model.ErrDecisionNotFound
		}
		if target.Decision != model.DecisionStatusAccepted {
			return model.Refuse("only an accepted decision can be chosen")
		}

		if err := stores.Decisions.ClearStudentChoice(ctx, app.ID, target.ID); err != nil {
			return err
		}

		now := s.now()
		target.IsStudentChoice = true
		target.StudentChoiceDate = &now
		chosen = target

		return stores.Decisions.Update(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student choice recorded",
		zap.Int64("decision_id", chosen.ID),
		zap.String("reference_id", app.ReferenceID),
		zap.String("school", chosen.SchoolName),
	)

	return chosen, nil
}

// ListForSchool возвращает очередь рассмотрения школы: заявления, в которых
// у школы есть строка решения, вместе со всеми их решениями. Порядок — по
// свежести строки решения у этой школы
func (s *DecisionService) ListForSchool(ctx context.Context, schoolID int64) ([]*model.Application, error) {
	school, err := s.schools.GetByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("get school: %w", err)
	}
	if school == nil {
		return nil, model.ErrSchoolNotFound
	}

	rows, err := s.decisions.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("list school decisions: %w", err)
	}

	apps := make([]*model.Application, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ApplicationID]; ok {
			continue
		}
		seen[row.ApplicationID] = struct{}{}

		app, err := s.applications.GetByID(ctx, row.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("get application: %w", err)
		}
		if app == nil {
			continue
		}

		decisions, err := s.decisions.ListByApplication(ctx, app.ID)
		if err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}
		app.Decisions = decisions
		apps = append(apps, app)
	}

	return apps, nil
}

// AcceptedSchools возвращает принятые решения заявления
func (s *DecisionService) AcceptedSchools(ctx context.Context, referenceID string) ([]*model.Decision, error) {
	app, err := s.applications.GetByReferenceID(ctx, strings.ToUpper(strings.TrimSpace(referenceID)))
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, model.ErrApplicationNotFound
	}

	accepted, err := s.decisions.ListAcceptedByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list accepted decisions: %w", err)
	}

	return accepted, nil
}

// mutate выполняет переход над решением под блокировкой всех строк заявления
func (s *DecisionService) mutate(ctx context.Context, decisionID int64, apply func(target *model.Decision, siblings []*model.Decision) error) (*model.Decision, error) {
	// Сначала узнаём заявление, затем перечитываем строки уже под блокировкой
	current, err := s.decisions.GetByID(ctx, decisionID)
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	if current == nil {
		return nil, model.ErrDecisionNotFound
	}

	var updated *model.Decision
	err = s.tx.InTx(ctx, func(ctx context.Context, stores TxStores) error {
		locked, err := stores.Decisions.ListByApplicationForUpdate(ctx, current.ApplicationID)
		if err != nil {
			return err
		}

		target := findDecision(locked, decisionID)
		if target == nil {
			return model.ErrDecisionNotFound
		}

		if err := apply(target, locked); err != nil {
			return err
		}

		updated = target
		return stores.Decisions.Update(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func findDecision(decisions []*model.Decision, id int64) *model.Decision {
	for _, d := range decisions {
		if d.ID == id {
			return d
		}
	}
	return nil
}
