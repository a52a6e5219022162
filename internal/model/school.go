package model

import "time"

type School struct {
	ID           int64     `json:"id"`
	Name         string    `json:"school_name"`
	Code         string    `json:"school_code"`
	District     string    `json:"district"`
	Block        string    `json:"block"`
	Village      string    `json:"village"`
	ContactEmail string    `json:"contact_email,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
