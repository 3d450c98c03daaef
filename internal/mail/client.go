// Package mail holds the mail service: its HTTP client used by the API, template rendering,
// the send endpoint and SMTP delivery.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/polyhx/hackatown-backend/internal/middleware"
	"github.com/polyhx/hackatown-backend/internal/models"
)

// Client talks to the mail service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a mail service client. baseURL has no trailing slash.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, http: &http.Client{Timeout: timeout}}
}

// Send asks the mail service to deliver email. Any non-2xx answer is an error.
func (c *Client) Send(ctx context.Context, email models.Email) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAPIKey, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	var envelope struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		return fmt.Errorf("mail service: status %d: %s", resp.StatusCode, envelope.Error)
	}
	return fmt.Errorf("mail service: status %d", resp.StatusCode)
}
