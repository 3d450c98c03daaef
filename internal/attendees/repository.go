package attendees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/pagination"
)

var (
	// ErrNotFound is returned when no attendee matches.
	ErrNotFound = errors.New("attendee not found")
	// ErrExists is returned when the user already has an attendee profile.
	ErrExists = errors.New("attendee already exists")
)

const attendeeColumns = `id, user_id, COALESCE(school,''), COALESCE(github,''), COALESCE(linkedin,''), COALESCE(cv_key,''), created_at, updated_at`

// sortColumns whitelists the dashboard sort keys.
var sortColumns = map[string]string{
	"created_at": "a.created_at",
	"email":      "u.username",
	"first_name": "u.first_name",
	"last_name":  "u.last_name",
	"school":     "a.school",
}

// Repository handles attendee persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendees repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAttendee(row pgx.Row) (*models.Attendee, error) {
	var a models.Attendee
	err := row.Scan(&a.ID, &a.UserID, &a.School, &a.Github, &a.Linkedin, &a.CVKey, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.HasCV = a.CVKey != ""
	return &a, nil
}

// Create inserts the attendee profile of a user.
func (r *Repository) Create(ctx context.Context, a *models.Attendee) error {
	const q = `INSERT INTO attendees (user_id, school, github, linkedin)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''))
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, a.UserID, a.School, a.Github, a.Linkedin).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrExists
	}
	return err
}

// GetByID returns an attendee by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	return scanAttendee(r.pool.QueryRow(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, id))
}

// GetByUserID returns the attendee owned by a user.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Attendee, error) {
	return scanAttendee(r.pool.QueryRow(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE user_id = $1`, userID))
}

// ListByUserIDs returns the attendees owned by any of userIDs.
func (r *Repository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.Attendee, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// SetCV records the storage key of the attendee's CV.
func (r *Repository) SetCV(ctx context.Context, id uuid.UUID, key string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE attendees SET cv_key = $2, updated_at = NOW() WHERE id = $1`, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FilterFrom lists the attendees among ids matching the free-text search (email, names, school),
// sorted and windowed by p.
func (r *Repository) FilterFrom(ctx context.Context, ids []uuid.UUID, p pagination.Params) (pagination.Page[models.AttendeeListItem], error) {
	if len(ids) == 0 {
		return pagination.NewPage[models.AttendeeListItem](nil, 0, p), nil
	}
	order, err := p.SafeOrderClause(sortColumns, "created_at")
	if err != nil {
		return pagination.Page[models.AttendeeListItem]{}, err
	}
	const where = `FROM attendees a JOIN users u ON u.id = a.user_id
		WHERE a.id = ANY($1)
		AND ($2 = '' OR u.username ILIKE $2 OR u.first_name ILIKE $2 OR u.last_name ILIKE $2 OR a.school ILIKE $2)`
	pattern := likePattern(p.Search)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+where, ids, pattern).Scan(&total); err != nil {
		return pagination.Page[models.AttendeeListItem]{}, fmt.Errorf("count attendees: %w", err)
	}

	q := `SELECT a.id, a.user_id, u.username, u.first_name, u.last_name, COALESCE(a.school,''), a.created_at ` +
		where + ` ` + order + ` LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, q, ids, pattern, p.Limit(), p.Offset())
	if err != nil {
		return pagination.Page[models.AttendeeListItem]{}, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()
	var list []models.AttendeeListItem
	for rows.Next() {
		var it models.AttendeeListItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.Email, &it.FirstName, &it.LastName, &it.School, &it.CreatedAt); err != nil {
			return pagination.Page[models.AttendeeListItem]{}, err
		}
		list = append(list, it)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[models.AttendeeListItem]{}, err
	}
	return pagination.NewPage(list, total, p), nil
}

// likePattern turns a search term into an ILIKE substring pattern; "" stays "" to disable the filter.
func likePattern(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
