package emaillogs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyhx/hackatown-backend/internal/models"
)

// ErrNotFound is returned when no email log matches.
var ErrNotFound = errors.New("email log not found")

const columns = `id, template, sender, recipients, subject, html, text, status, attempts, sent_at, error_message, created_at`

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanLog(row pgx.Row) (*models.EmailLog, error) {
	var el models.EmailLog
	var template, errMsg *string
	err := row.Scan(&el.ID, &template, &el.Sender, &el.Recipients, &el.Subject, &el.HTML, &el.Text,
		&el.Status, &el.Attempts, &el.SentAt, &errMsg, &el.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if template != nil {
		el.Template = *template
	}
	if errMsg != nil {
		el.ErrorMessage = *errMsg
	}
	return &el, nil
}

// Create inserts a pending log holding the rendered message.
func (r *Repository) Create(ctx context.Context, el *models.EmailLog) error {
	var template *string
	if el.Template != "" {
		template = &el.Template
	}
	el.Status = models.EmailLogStatusPending
	const q = `INSERT INTO email_logs (template, sender, recipients, subject, html, text, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, template, el.Sender, el.Recipients, el.Subject, el.HTML, el.Text, el.Status).
		Scan(&el.ID, &el.CreatedAt)
}

// GetByID returns a log by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EmailLog, error) {
	return scanLog(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM email_logs WHERE id = $1`, id))
}

// ListRecent returns the newest logs, optionally restricted to one status.
func (r *Repository) ListRecent(ctx context.Context, status string, limit int) ([]models.EmailLog, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM email_logs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		el, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *el)
	}
	return list, rows.Err()
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE email_logs
		SET status = 'sent', attempts = attempts + 1, sent_at = NOW(), error_message = NULL
		WHERE id = $1`, id)
}

// MarkFailed records a failed attempt. final marks the log failed; otherwise it stays pending for a retry.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, final bool) error {
	status := models.EmailLogStatusPending
	if final {
		status = models.EmailLogStatusFailed
	}
	return r.exec(ctx, `UPDATE email_logs
		SET status = $2, attempts = attempts + 1, error_message = $3
		WHERE id = $1`, id, status, reason)
}

// Requeue resets a log to pending so it can be delivered again.
func (r *Repository) Requeue(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE email_logs SET status = 'pending', error_message = NULL WHERE id = $1`, id)
}

func (r *Repository) exec(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
