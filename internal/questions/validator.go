package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/apperr"
)

var (
	// ErrQuestionNotFound is the client-facing error for a missing question.
	ErrQuestionNotFound = apperr.NotFound(apperr.CodeQuestionNotFound, "No question found")
	// ErrInvalidJSONAnswer is returned when a function-validated answer is not JSON.
	ErrInvalidJSONAnswer = apperr.BadRequest(apperr.CodeInvalidJSONAnswer,
		"Custom function validation requires the answer to be a valid JSON object.")
	// ErrInvalidValidationType is returned for questions with an unknown validation type.
	ErrInvalidValidationType = apperr.BadRequest(apperr.CodeInvalidValidationType, "Invalid validation type")
)

// QuestionGetter loads a question.
type QuestionGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
}

// Checker calls a remote validation endpoint.
type Checker interface {
	Check(ctx context.Context, endpoint string, payload json.RawMessage) error
}

// Validator scores answers against questions.
type Validator struct {
	questions QuestionGetter
	remote    Checker
	logger    *zap.Logger
}

// NewValidator creates an answer validator.
func NewValidator(questions QuestionGetter, remote Checker, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{questions: questions, remote: remote, logger: logger}
}

// ValidateAnswer returns the question's score when answer is correct.
// A wrong answer is a BadRequest; it never yields a partial score.
func (v *Validator) ValidateAnswer(ctx context.Context, answer string, questionID uuid.UUID) (int, error) {
	q, err := v.questions.GetByID(ctx, questionID)
	if errors.Is(err, ErrNotFound) {
		return 0, ErrQuestionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get question: %w", err)
	}

	switch q.ValidationType {
	case models.ValidationString:
		if answer != q.Answer {
			return 0, apperr.ErrInvalidAnswer
		}
	case models.ValidationRegex:
		ok, err := MatchFull(q.Answer, answer)
		if err != nil {
			v.logger.Error("question has invalid pattern", zap.String("question_id", q.ID.String()), zap.Error(err))
			return 0, fmt.Errorf("compile pattern: %w", err)
		}
		if !ok {
			return 0, apperr.ErrInvalidAnswer
		}
	case models.ValidationFunction:
		if err := v.checkRemote(ctx, q, answer); err != nil {
			return 0, err
		}
	default:
		return 0, ErrInvalidValidationType
	}
	return q.Score, nil
}

func (v *Validator) checkRemote(ctx context.Context, q *models.Question, answer string) error {
	payload := json.RawMessage(answer)
	if !json.Valid(payload) {
		return ErrInvalidJSONAnswer
	}
	if isEmptyJSON(payload) {
		return apperr.BadRequest(apperr.CodeInvalidJSONAnswer, "Problem with JSON answer.")
	}
	err := v.remote.Check(ctx, q.Answer, payload)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRejected):
		return apperr.Wrap(apperr.KindBadRequest, apperr.CodeInvalidAnswer, "Invalid answer", err)
	default:
		v.logger.Error("remote validator unavailable", zap.String("question_id", q.ID.String()), zap.Error(err))
		return apperr.Wrap(apperr.KindInternal, apperr.CodeValidatorUnavailable, "Custom validation endpoint does not respond.", err)
	}
}

// isEmptyJSON reports JSON values that carry no answer: null, false, 0 and "".
func isEmptyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "null", "false", "0", `""`:
		return true
	}
	return false
}

// MatchFull reports whether the whole of s matches pattern.
func MatchFull(pattern, s string) (bool, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}
