package model

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"      // Подано, ещё не рассматривалось
	ApplicationStatusUnderReview ApplicationStatus = "under_review" // На рассмотрении
	ApplicationStatusApproved    ApplicationStatus = "approved"     // Одобрено
	ApplicationStatusRejected    ApplicationStatus = "rejected"     // Отклонено
)

// Application — заявление абитуриента с тремя ранжированными школами.
// Создаётся один раз при подаче, reference_id неизменен и глобально уникален.
type Application struct {
	ID               int64             `json:"id"`
	ReferenceID      string            `json:"reference_id"`
	ApplicantName    string            `json:"applicant_name"`
	DateOfBirth      time.Time         `json:"date_of_birth"`
	Email            string            `json:"email"`
	PhoneNumber      string            `json:"phone_number"`
	Address          string            `json:"address"`
	Category         string            `json:"category"`
	CourseApplied    string            `json:"course_applied"`
	PreviousSchool   string            `json:"previous_school,omitempty"`
	LastPercentage   *float64          `json:"last_percentage,omitempty"`
	FirstPrefSchool  *int64            `json:"first_preference_school_id,omitempty"`
	SecondPrefSchool *int64            `json:"second_preference_school_id,omitempty"`
	ThirdPrefSchool  *int64            `json:"third_preference_school_id,omitempty"`
	Status           ApplicationStatus `json:"status"`
	ApplicationDate  time.Time         `json:"application_date"`
	VerificationID   int64             `json:"-"`

	// Дополнительные поля для удобства (не из БД)
	Decisions []*Decision `json:"school_decisions,omitempty"`
}

// Preferences возвращает выбранные школы в порядке приоритета
func (a *Application) Preferences() []Preference {
	var prefs []Preference
	if a.FirstPrefSchool != nil {
		prefs = append(prefs, Preference{SchoolID: *a.FirstPrefSchool, Order: PreferenceFirst})
	}
	if a.SecondPrefSchool != nil {
		prefs = append(prefs, Preference{SchoolID: *a.SecondPrefSchool, Order: PreferenceSecond})
	}
	if a.ThirdPrefSchool != nil {
		prefs = append(prefs, Preference{SchoolID: *a.ThirdPrefSchool, Order: PreferenceThird})
	}
	return prefs
}

type Preference struct {
	SchoolID int64
	Order    PreferenceOrder
}
