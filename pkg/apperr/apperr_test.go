package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("confirm: %w", PreconditionFailed(CodeAttendeeNotSelected, "attendee abc is not selected"))
	if !errors.Is(err, ErrAttendeeNotSelected) {
		t.Fatal("expected wrapped error to match ErrAttendeeNotSelected")
	}
	if errors.Is(err, ErrUserNotAttendee) {
		t.Fatal("did not expect match on a different code")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "plain", err: errors.New("boom"), want: KindInternal},
		{name: "not found", err: NotFound(CodeEventNotFound, "event not found"), want: KindNotFound},
		{name: "wrapped bad request", err: fmt.Errorf("x: %w", ErrInvalidAnswer), want: KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(KindInternal, CodeValidatorUnavailable, "validator unreachable", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if got := err.Error(); got != "validator unreachable: dial tcp: refused" {
		t.Fatalf("unexpected message %q", got)
	}
}
