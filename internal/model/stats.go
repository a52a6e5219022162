package model

import "time"

// ApplicationStats — сводка по заявлениям для панели администратора
type ApplicationStats struct {
	Total    int64 `json:"total_applications"`
	Pending  int64 `json:"pending_applications"`
	Approved int64 `json:"approved_applications"`
	Rejected int64 `json:"rejected_applications"`
}

// DecisionStats — сводка по решениям школ
type DecisionStats struct {
	Total     int64 `json:"total_decisions"`
	Enrolled  int64 `json:"enrolled_students"`
	Withdrawn int64 `json:"withdrawn_students"`
	Accepted  int64 `json:"accepted_decisions"`
	Pending   int64 `json:"pending_decisions"`
}

// ApplicationSummary — краткая строка недавнего заявления с итогом зачисления
type ApplicationSummary struct {
	ReferenceID      string            `json:"reference_id"`
	ApplicantName    string            `json:"applicant_name"`
	Email            string            `json:"email"`
	CourseApplied    string            `json:"course_applied"`
	ApplicationDate  time.Time         `json:"application_date"`
	Status           ApplicationStatus `json:"status"`
	EnrollmentStatus string            `json:"enrollment_status"`
	EnrolledSchool   string            `json:"enrolled_school,omitempty"`
	AcceptedSchools  int               `json:"accepted_schools_count"`
}

// PendingReview — решение, ожидающее вердикта школы
type PendingReview struct {
	ReferenceID     string          `json:"reference_id"`
	ApplicantName   string          `json:"applicant_name"`
	SchoolName      string          `json:"school_name"`
	PreferenceOrder PreferenceOrder `json:"preference_order"`
	ApplicationDate time.Time       `json:"application_date"`
	CourseApplied   string          `json:"course_applied"`
}
