package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuestionType is the puzzle category shown to players.
type QuestionType string

const (
	QuestionTypeCrypto    QuestionType = "crypto"
	QuestionTypeGaming    QuestionType = "gaming"
	QuestionTypeScavenger QuestionType = "scavenger"
	QuestionTypeSponsor   QuestionType = "sponsor"
)

// ValidationType selects how an answer is checked.
type ValidationType string

const (
	ValidationString   ValidationType = "string"
	ValidationRegex    ValidationType = "regex"
	ValidationFunction ValidationType = "function"
)

// Question is a puzzle. Answer holds a literal, a regex pattern or a validator URL depending on ValidationType.
type Question struct {
	ID             uuid.UUID       `json:"id"`
	Label          string          `json:"label"`
	Description    json.RawMessage `json:"description"`
	Type           QuestionType    `json:"type"`
	ValidationType ValidationType  `json:"validation_type"`
	Answer         string          `json:"answer,omitempty"`
	Score          int             `json:"score"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
