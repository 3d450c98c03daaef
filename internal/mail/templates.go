package mail

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyhx/hackatown-backend/internal/models"
)

// ErrTemplateNotFound is returned when no template has the requested name.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepository reads stored email templates.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a template repository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// GetByName returns the template called name.
func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	err := r.pool.QueryRow(ctx, `SELECT name, subject, html, text, created_at, updated_at
		FROM email_templates WHERE name = $1`, name).
		Scan(&t.Name, &t.Subject, &t.HTML, &t.Text, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
