package models

import (
	"errors"

	"github.com/google/uuid"
)

// AttendeeStatus is the single status label derived from an attendee's registration on an event.
type AttendeeStatus string

const (
	StatusNotRegistered AttendeeStatus = "not-registered"
	StatusRegistered    AttendeeStatus = "registered"
	StatusSelected      AttendeeStatus = "selected"
	StatusConfirmed     AttendeeStatus = "confirmed"
	StatusDeclined      AttendeeStatus = "declined"
)

// ErrRegistrationNotSelected is returned by Confirm when the registration has not been selected yet.
var ErrRegistrationNotSelected = errors.New("attendee not selected")

// AttendeeRegistration is one attendee's entry on an event. The three flags are stored independently;
// transitions go through Select and Confirm so confirmed and declined never hold together.
type AttendeeRegistration struct {
	EventID    uuid.UUID `json:"event_id"`
	AttendeeID uuid.UUID `json:"attendee_id"`
	Selected   bool      `json:"selected"`
	Confirmed  bool      `json:"confirmed"`
	Declined   bool      `json:"declined"`
	Position   int64     `json:"-"`
}

// Status resolves the registration to one label. Precedence: confirmed > declined > selected > registered.
func (r *AttendeeRegistration) Status() AttendeeStatus {
	switch {
	case r == nil:
		return StatusNotRegistered
	case r.Confirmed:
		return StatusConfirmed
	case r.Declined:
		return StatusDeclined
	case r.Selected:
		return StatusSelected
	default:
		return StatusRegistered
	}
}

// Select marks the registration as selected. Confirmed and declined are left untouched.
func (r *AttendeeRegistration) Select() {
	r.Selected = true
}

// Confirm records the attendee's answer to a selection. Only selected registrations can confirm or decline.
func (r *AttendeeRegistration) Confirm(attending bool) error {
	if !r.Selected {
		return ErrRegistrationNotSelected
	}
	r.Confirmed = attending
	r.Declined = !attending
	return nil
}

// StatusOf resolves a possibly missing registration.
func StatusOf(r *AttendeeRegistration) AttendeeStatus {
	return r.Status()
}
