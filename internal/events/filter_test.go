package events

import (
	"testing"

	"github.com/google/uuid"

	"github.com/polyhx/hackatown-backend/internal/models"
)

func TestMatchStatusSearch(t *testing.T) {
	tests := []struct {
		term string
		want StatusMatch
	}{
		{term: "confirmed", want: StatusMatch{Confirmed: true}},
		{term: "CONF", want: StatusMatch{Confirmed: true}},
		{term: "sel", want: StatusMatch{Selected: true}},
		{term: "decl", want: StatusMatch{Declined: true}},
		{term: "regis", want: StatusMatch{Registered: true}},
		{term: "ed", want: StatusMatch{Registered: true, Selected: true, Confirmed: true, Declined: true}},
		{term: "", want: StatusMatch{Registered: true, Selected: true, Confirmed: true, Declined: true}},
		{term: "polytechnique", want: StatusMatch{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := MatchStatusSearch(tt.term); got != tt.want {
				t.Fatalf("MatchStatusSearch(%q) = %+v, want %+v", tt.term, got, tt.want)
			}
		})
	}
}

func TestStatusMatchIncludes(t *testing.T) {
	reg := func(s, c, d bool) models.AttendeeRegistration {
		return models.AttendeeRegistration{AttendeeID: uuid.New(), Selected: s, Confirmed: c, Declined: d}
	}
	tests := []struct {
		name  string
		match StatusMatch
		reg   models.AttendeeRegistration
		want  bool
	}{
		{"no keyword passes everyone", StatusMatch{}, reg(true, true, false), true},
		{"registered needs all flags clear", StatusMatch{Registered: true}, reg(false, false, false), true},
		{"registered rejects selected", StatusMatch{Registered: true}, reg(true, false, false), false},
		{"registered rejects stray declined", StatusMatch{Registered: true}, reg(false, false, true), false},
		{"selected plain", StatusMatch{Selected: true}, reg(true, false, false), true},
		{"selected rejects confirmed", StatusMatch{Selected: true}, reg(true, true, false), false},
		{"selected rejects declined", StatusMatch{Selected: true}, reg(true, false, true), false},
		{"selected rejects unselected", StatusMatch{Selected: true}, reg(false, false, false), false},
		{"confirmed ignores selected flag", StatusMatch{Confirmed: true}, reg(false, true, false), true},
		{"confirmed rejects declined only", StatusMatch{Confirmed: true}, reg(true, false, true), false},
		{"declined", StatusMatch{Declined: true}, reg(true, false, true), true},
		{"declined with stray confirmed", StatusMatch{Declined: true}, reg(true, true, true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.match.Includes(tt.reg); got != tt.want {
				t.Fatalf("Includes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandidatesKeepsListOrder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	regs := []models.AttendeeRegistration{
		{AttendeeID: a, Selected: true, Confirmed: true},
		{AttendeeID: b},
		{AttendeeID: c, Selected: true, Confirmed: true},
	}
	got := MatchStatusSearch("confirmed").Candidates(regs)
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Fatalf("Candidates = %v, want [%s %s]", got, a, c)
	}
}
