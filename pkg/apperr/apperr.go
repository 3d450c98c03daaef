// Package apperr defines the typed errors services return and handlers map to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindPreconditionFailed
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Stable error codes exposed to API clients.
const (
	CodeUserNotAttendee           = "USER_NOT_ATTENDEE"
	CodeAttendeeNotSelected       = "ATTENDEE_NOT_SELECTED"
	CodeAttendeeAlreadyRegistered = "ATTENDEE_ALREADY_REGISTERED"
	CodeAttendeeAlreadyExists     = "ATTENDEE_ALREADY_EXISTS"
	CodeEventNotFound             = "EVENT_NOT_FOUND"
	CodeQuestionNotFound          = "QUESTION_NOT_FOUND"
	CodeInvalidAnswer             = "INVALID_ANSWER"
	CodeInvalidJSONAnswer         = "INVALID_JSON_ANSWER"
	CodeInvalidValidationType     = "INVALID_VALIDATION_TYPE"
	CodeValidatorUnavailable      = "VALIDATOR_UNAVAILABLE"
	CodeTemplateNotFound          = "TEMPLATE_NOT_FOUND"
	CodeTemplateInvalid           = "TEMPLATE_INVALID"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New returns an error of the given kind.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap returns an error of the given kind wrapping cause.
func Wrap(kind Kind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: cause}
}

func NotFound(code, msg string) *Error           { return New(KindNotFound, code, msg) }
func PreconditionFailed(code, msg string) *Error { return New(KindPreconditionFailed, code, msg) }
func BadRequest(code, msg string) *Error         { return New(KindBadRequest, code, msg) }

// KindOf returns the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Domain errors shared across services.
var (
	ErrUserNotAttendee           = PreconditionFailed(CodeUserNotAttendee, "user is not an attendee")
	ErrAttendeeNotSelected       = PreconditionFailed(CodeAttendeeNotSelected, "attendee is not selected")
	ErrAttendeeAlreadyRegistered = PreconditionFailed(CodeAttendeeAlreadyRegistered, "attendee already registered")
	ErrAttendeeAlreadyExists     = PreconditionFailed(CodeAttendeeAlreadyExists, "attendee profile already exists")
	ErrInvalidAnswer             = BadRequest(CodeInvalidAnswer, "Invalid answer")
)
