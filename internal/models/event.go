package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a hackathon edition attendees register to.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	BeginsAt    time.Time  `json:"begins_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	IsCurrent   bool       `json:"is_current"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Attendees []AttendeeRegistration `json:"attendees,omitempty"`
}

// Registration returns the registration of attendeeID, or nil when the attendee is not on the event.
func (e *Event) Registration(attendeeID uuid.UUID) *AttendeeRegistration {
	for i := range e.Attendees {
		if e.Attendees[i].AttendeeID == attendeeID {
			return &e.Attendees[i]
		}
	}
	return nil
}
