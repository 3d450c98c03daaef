package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyhx/hackatown-backend/internal/models"
)

var (
	// ErrNotFound is returned when no event matches.
	ErrNotFound = errors.New("event not found")
	// ErrRegistrationNotFound is returned when the attendee has no registration on the event.
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrAlreadyRegistered is returned when adding an attendee twice.
	ErrAlreadyRegistered = errors.New("attendee already registered")
)

const eventColumns = `id, code, name, description, begins_at, ends_at, is_current, created_by, created_at, updated_at`

// Repository handles event and registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Description, &e.BeginsAt, &e.EndsAt, &e.IsCurrent, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event. Marking it current unmarks every other event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if e.IsCurrent {
			if _, err := tx.Exec(ctx, `UPDATE events SET is_current = FALSE, updated_at = NOW() WHERE is_current`); err != nil {
				return fmt.Errorf("unset current event: %w", err)
			}
		}
		const q = `INSERT INTO events (code, name, description, begins_at, ends_at, is_current, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at`
		return tx.QueryRow(ctx, q, e.Code, e.Name, e.Description, e.BeginsAt, e.EndsAt, e.IsCurrent, e.CreatedBy).
			Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	})
}

// GetByID returns an event without its registrations.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// List returns all events, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY begins_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// ListRegistrations returns the event's registrations in list order.
func (r *Repository) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.AttendeeRegistration, error) {
	rows, err := r.pool.Query(ctx, `SELECT event_id, attendee_id, selected, confirmed, declined, position
		FROM event_attendees WHERE event_id = $1 ORDER BY position`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AttendeeRegistration
	for rows.Next() {
		var reg models.AttendeeRegistration
		if err := rows.Scan(&reg.EventID, &reg.AttendeeID, &reg.Selected, &reg.Confirmed, &reg.Declined, &reg.Position); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// GetRegistration returns one attendee's registration on an event.
func (r *Repository) GetRegistration(ctx context.Context, eventID, attendeeID uuid.UUID) (*models.AttendeeRegistration, error) {
	var reg models.AttendeeRegistration
	err := r.pool.QueryRow(ctx, `SELECT event_id, attendee_id, selected, confirmed, declined, position
		FROM event_attendees WHERE event_id = $1 AND attendee_id = $2`, eventID, attendeeID).
		Scan(&reg.EventID, &reg.AttendeeID, &reg.Selected, &reg.Confirmed, &reg.Declined, &reg.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// AddRegistration appends an attendee to the event with every flag cleared.
func (r *Repository) AddRegistration(ctx context.Context, eventID, attendeeID uuid.UUID) (*models.AttendeeRegistration, error) {
	reg := models.AttendeeRegistration{EventID: eventID, AttendeeID: attendeeID}
	err := r.pool.QueryRow(ctx, `INSERT INTO event_attendees (event_id, attendee_id) VALUES ($1, $2) RETURNING position`,
		eventID, attendeeID).Scan(&reg.Position)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return nil, ErrAlreadyRegistered
		case "23503":
			return nil, ErrNotFound
		}
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateRegistration applies fn to the registration under a row lock and writes the result back,
// moving the entry to the end of the event's list. An error from fn aborts without writing.
func (r *Repository) UpdateRegistration(ctx context.Context, eventID, attendeeID uuid.UUID, fn func(*models.AttendeeRegistration) error) (*models.AttendeeRegistration, error) {
	var reg models.AttendeeRegistration
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT event_id, attendee_id, selected, confirmed, declined, position
			FROM event_attendees WHERE event_id = $1 AND attendee_id = $2 FOR UPDATE`, eventID, attendeeID).
			Scan(&reg.EventID, &reg.AttendeeID, &reg.Selected, &reg.Confirmed, &reg.Declined, &reg.Position)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&reg); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `UPDATE event_attendees
			SET selected = $3, confirmed = $4, declined = $5,
				position = nextval('event_attendees_position_seq'), updated_at = NOW()
			WHERE event_id = $1 AND attendee_id = $2
			RETURNING position`, eventID, attendeeID, reg.Selected, reg.Confirmed, reg.Declined).Scan(&reg.Position)
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// MarkSelected sets selected on the registrations of attendeeIDs without touching other flags.
// Attendees not registered on the event are ignored. Returns the updated registrations.
func (r *Repository) MarkSelected(ctx context.Context, eventID uuid.UUID, attendeeIDs []uuid.UUID) ([]models.AttendeeRegistration, error) {
	if len(attendeeIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `UPDATE event_attendees SET selected = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND attendee_id = ANY($2)
		RETURNING event_id, attendee_id, selected, confirmed, declined, position`, eventID, attendeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AttendeeRegistration
	for rows.Next() {
		var reg models.AttendeeRegistration
		if err := rows.Scan(&reg.EventID, &reg.AttendeeID, &reg.Selected, &reg.Confirmed, &reg.Declined, &reg.Position); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}
