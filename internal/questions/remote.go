package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// HeaderSecret carries the shared secret to remote validators.
const HeaderSecret = "Secret"

var (
	// ErrRejected means the validator answered with a status other than 200, or could not be reached.
	ErrRejected = errors.New("answer rejected by validator")
	// ErrNoResponse means the validator closed the connection without answering, or is misconfigured.
	ErrNoResponse = errors.New("validator did not respond")
)

// RemoteValidator posts JSON answers to per-question validation endpoints.
type RemoteValidator struct {
	client *http.Client
	secret string
	logger *zap.Logger
}

// NewRemoteValidator creates a validator client with a bounded per-call timeout.
func NewRemoteValidator(secret string, timeout time.Duration, logger *zap.Logger) *RemoteValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteValidator{
		client: &http.Client{Timeout: timeout},
		secret: secret,
		logger: logger,
	}
}

// Check posts payload to endpoint. A nil error means the validator returned 200.
func (v *RemoteValidator) Check(ctx context.Context, endpoint string, payload json.RawMessage) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: invalid endpoint %q", ErrNoResponse, endpoint)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSecret, v.secret)

	resp, err := v.client.Do(req)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %v", ErrNoResponse, err)
		}
		v.logger.Info("validator call failed", zap.String("endpoint", u.Host), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
