package questions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyhx/hackatown-backend/internal/models"
)

// ErrNotFound is returned when no question matches.
var ErrNotFound = errors.New("question not found")

const columns = `id, label, description, type, validation_type, answer, score, created_at, updated_at`

// Repository handles question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.Label, &q.Description, &q.Type, &q.ValidationType, &q.Answer, &q.Score, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a new question.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	const query = `INSERT INTO questions (label, description, type, validation_type, answer, score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, q.Label, q.Description, q.Type, q.ValidationType, q.Answer, q.Score).
		Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM questions WHERE id = $1`, id))
}

// List returns every question, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM questions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *q)
	}
	return list, rows.Err()
}

// Update overwrites every editable field of q.
func (r *Repository) Update(ctx context.Context, q *models.Question) error {
	const query = `UPDATE questions
		SET label = $2, description = $3, type = $4, validation_type = $5, answer = $6, score = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, q.ID, q.Label, q.Description, q.Type, q.ValidationType, q.Answer, q.Score).
		Scan(&q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a question.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
