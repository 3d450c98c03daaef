package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is the hacker profile attached to a user account.
type Attendee struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	School    string    `json:"school,omitempty"`
	Github    string    `json:"github,omitempty"`
	Linkedin  string    `json:"linkedin,omitempty"`
	CVKey     string    `json:"-"`
	HasCV     bool      `json:"has_cv"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttendeeListItem is an attendee row joined with its user, as listed on the dashboard.
type AttendeeListItem struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	School    string         `json:"school,omitempty"`
	Status    AttendeeStatus `json:"status,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
