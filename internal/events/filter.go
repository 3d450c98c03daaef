package events

import (
	"strings"

	"github.com/google/uuid"

	"github.com/polyhx/hackatown-backend/internal/models"
)

// StatusMatch records which status keywords a free-text search term matches.
type StatusMatch struct {
	Registered bool
	Selected   bool
	Confirmed  bool
	Declined   bool
}

// MatchStatusSearch matches term as a case-insensitive substring of each status keyword.
func MatchStatusSearch(term string) StatusMatch {
	t := strings.ToLower(strings.TrimSpace(term))
	return StatusMatch{
		Registered: strings.Contains(string(models.StatusRegistered), t),
		Selected:   strings.Contains(string(models.StatusSelected), t),
		Confirmed:  strings.Contains(string(models.StatusConfirmed), t),
		Declined:   strings.Contains(string(models.StatusDeclined), t),
	}
}

// Any reports whether the term matched at least one keyword.
func (m StatusMatch) Any() bool {
	return m.Registered || m.Selected || m.Confirmed || m.Declined
}

// Includes reports whether a registration belongs in the candidate set.
// The registered branch needs every flag clear; the selected branch only needs confirmed and declined clear.
func (m StatusMatch) Includes(reg models.AttendeeRegistration) bool {
	if !m.Any() {
		return true
	}
	switch {
	case m.Registered && !reg.Selected && !reg.Confirmed && !reg.Declined:
		return true
	case m.Selected && reg.Selected && !reg.Confirmed && !reg.Declined:
		return true
	case m.Confirmed && reg.Confirmed:
		return true
	case m.Declined && reg.Declined:
		return true
	}
	return false
}

// Candidates returns the attendee ids of regs that pass the match, in list order.
func (m StatusMatch) Candidates(regs []models.AttendeeRegistration) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(regs))
	for _, reg := range regs {
		if m.Includes(reg) {
			ids = append(ids, reg.AttendeeID)
		}
	}
	return ids
}
