package model

import (
	"fmt"
	"time"
)

type DecisionStatus string

const (
	DecisionStatusPending     DecisionStatus = "pending"      // Ожидает решения школы
	DecisionStatusUnderReview DecisionStatus = "under_review" // На рассмотрении
	DecisionStatusAccepted    DecisionStatus = "accepted"     // Принято
	DecisionStatusRejected    DecisionStatus = "rejected"     // Отклонено
	DecisionStatusWaitlisted  DecisionStatus = "waitlisted"   // Лист ожидания
)

// ValidDecisionStatus проверяет допустимость значения решения
func ValidDecisionStatus(s DecisionStatus) bool {
	switch s {
	case DecisionStatusPending, DecisionStatusUnderReview, DecisionStatusAccepted,
		DecisionStatusRejected, DecisionStatusWaitlisted:
		return true
	default:
		return false
	}
}

type EnrollmentStatus string

const (
	EnrollmentNotEnrolled EnrollmentStatus = "not_enrolled" // Не зачислен
	EnrollmentEnrolled    EnrollmentStatus = "enrolled"     // Зачислен
	EnrollmentWithdrawn   EnrollmentStatus = "withdrawn"    // Отозван
)

type PreferenceOrder string

const (
	PreferenceFirst  PreferenceOrder = "1st"
	PreferenceSecond PreferenceOrder = "2nd"
	PreferenceThird  PreferenceOrder = "3rd"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Decision — вердикт одной школы по одному заявлению.
// Две ортогональные оси состояния: решение школы и зачисление абитуриента.
// Пара (application_id, school_id) уникальна, записи никогда не удаляются.
type Decision struct {
	ID                int64            `json:"id"`
	ApplicationID     int64            `json:"application_id"`
	SchoolID          int64            `json:"school_id"`
	PreferenceOrder   PreferenceOrder  `json:"preference_order"`
	Decision          DecisionStatus   `json:"decision"`
	DecisionDate      *time.Time       `json:"decision_date,omitempty"`
	ReviewComments    string           `json:"review_comments,omitempty"`
	ReviewedBy        string           `json:"reviewed_by,omitempty"`
	EnrollmentStatus  EnrollmentStatus `json:"enrollment_status"`
	EnrollmentDate    *time.Time       `json:"enrollment_date,omitempty"`
	WithdrawalDate    *time.Time       `json:"withdrawal_date,omitempty"`
	WithdrawalReason  string           `json:"withdrawal_reason,omitempty"`
	IsStudentChoice   bool             `json:"is_student_choice"`
	StudentChoiceDate *time.Time       `json:"student_choice_date,omitempty"`
	PaymentStatus     PaymentStatus    `json:"payment_status"`
	PaymentReference  string           `json:"payment_reference,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	SchoolName string `json:"school_name,omitempty"`
}

// schoolLabel возвращает имя школы для сообщений об отказе
func (d *Decision) schoolLabel() string {
	if d.SchoolName != "" {
		return d.SchoolName
	}
	return fmt.Sprintf("school #%d", d.SchoolID)
}

// CheckEnroll проверяет можно ли зачислиться по этому решению.
// siblings — все решения того же заявления (включая само d или без него).
// Правила в порядке проверки:
//  1. решение школы accepted или pending (pending будет повышено до accepted);
//  2. по этой строке ещё нет активного зачисления;
//  3. ни одна другая строка заявления не находится в состоянии enrolled;
//  4. после отзыва повторное зачисление в ту же школу разрешено, пока
//     выполняется правило 3.
func (d *Decision) CheckEnroll(siblings []*Decision) error {
	if d.Decision != DecisionStatusAccepted && d.Decision != DecisionStatusPending {
		return Refuse("application %s", d.Decision)
	}
	if d.EnrollmentStatus == EnrollmentEnrolled {
		return Refuse("already enrolled or withdrawn")
	}
	for _, other := range siblings {
		if other.ID == d.ID {
			continue
		}
		if other.EnrollmentStatus == EnrollmentEnrolled {
			return Refuse("already enrolled at %s", other.schoolLabel())
		}
	}
	return nil
}

// CanEnroll — предикат для UI и серверной проверки; единственный путь логики
func (d *Decision) CanEnroll(siblings []*Decision) bool {
	return d.CheckEnroll(siblings) == nil
}

// CheckWithdraw проверяет можно ли отозвать зачисление
func (d *Decision) CheckWithdraw() error {
	if d.EnrollmentStatus != EnrollmentEnrolled {
		return Refuse("not currently enrolled")
	}
	return nil
}

// CanWithdraw — предикат для UI и серверной проверки
func (d *Decision) CanWithdraw() bool {
	return d.CheckWithdraw() == nil
}

// CheckReview проверяет допустим ли переход решения школы.
// Зачисленного абитуриента нельзя отклонить: сначала отзыв зачисления.
func (d *Decision) CheckReview(next DecisionStatus) error {
	if d.EnrollmentStatus == EnrollmentEnrolled && next == DecisionStatusRejected {
		return Refuse("cannot reject an enrolled applicant; withdraw the enrollment first")
	}
	return nil
}

// ApplyEnrollment переводит строку в состояние enrolled.
// Вызывается только после успешного CheckEnroll под блокировкой строк заявления.
func (d *Decision) ApplyEnrollment(now time.Time, paymentRef string) {
	if d.Decision == DecisionStatusPending {
		d.Decision = DecisionStatusAccepted
		d.DecisionDate = &now
	}
	d.EnrollmentStatus = EnrollmentEnrolled
	if d.EnrollmentDate == nil {
		d.EnrollmentDate = &now
	}
	d.IsStudentChoice = true
	d.StudentChoiceDate = &now
	if paymentRef != "" {
		d.PaymentStatus = PaymentCompleted
		d.PaymentReference = paymentRef
	}
}

// ApplyWithdrawal переводит строку в состояние withdrawn.
// Дата отзыва не может предшествовать дате зачисления: обе проставляются
// монотонно под одной блокировкой.
func (d *Decision) ApplyWithdrawal(now time.Time, reason string) {
	d.EnrollmentStatus = EnrollmentWithdrawn
	d.WithdrawalDate = &now
	d.WithdrawalReason = reason
	d.IsStudentChoice = false
}

// ApplyReview записывает решение школы.
// decision_date обновляется только если не было проставлено или решение
// фактически изменилось.
func (d *Decision) ApplyReview(next DecisionStatus, comments, reviewer string, now time.Time) {
	if d.DecisionDate == nil || d.Decision != next {
		d.DecisionDate = &now
	}
	d.Decision = next
	d.ReviewComments = comments
	d.ReviewedBy = reviewer
}

// ActiveEnrollment возвращает зачисленную строку заявления, если есть.
// Инвариант системы: таких строк не больше одной.
func ActiveEnrollment(decisions []*Decision) *Decision {
	for _, d := range decisions {
		if d.EnrollmentStatus == EnrollmentEnrolled {
			return d
		}
	}
	return nil
}
