package models

import (
	"time"

	"github.com/google/uuid"
)

// Email is a send request accepted by the mail service.
type Email struct {
	From      string            `json:"from"`
	To        []string          `json:"to"`
	Subject   string            `json:"subject"`
	Text      string            `json:"text,omitempty"`
	HTML      string            `json:"html,omitempty"`
	Template  string            `json:"template,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

// EmailTemplate is a stored template rendered by name.
type EmailTemplate struct {
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records every message handed to the mail service.
type EmailLog struct {
	ID           uuid.UUID  `json:"id"`
	Template     string     `json:"template,omitempty"`
	Sender       string     `json:"sender"`
	Recipients   []string   `json:"recipients"`
	Subject      string     `json:"subject"`
	HTML         string     `json:"-"`
	Text         string     `json:"-"`
	Status       string     `json:"status"`
	Attempts     int        `json:"attempts"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
