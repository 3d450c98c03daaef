package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/attendees"
	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/apperr"
	"github.com/polyhx/hackatown-backend/pkg/pagination"
)

// ErrEventNotFound is the client-facing error for a missing event.
var ErrEventNotFound = apperr.NotFound(apperr.CodeEventNotFound, "event not found")

// Store is the event persistence used by Service.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.AttendeeRegistration, error)
	GetRegistration(ctx context.Context, eventID, attendeeID uuid.UUID) (*models.AttendeeRegistration, error)
	AddRegistration(ctx context.Context, eventID, attendeeID uuid.UUID) (*models.AttendeeRegistration, error)
	UpdateRegistration(ctx context.Context, eventID, attendeeID uuid.UUID, fn func(*models.AttendeeRegistration) error) (*models.AttendeeRegistration, error)
	MarkSelected(ctx context.Context, eventID uuid.UUID, attendeeIDs []uuid.UUID) ([]models.AttendeeRegistration, error)
}

// AttendeeStore resolves attendee profiles and runs the paginated attendee search.
type AttendeeStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Attendee, error)
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.Attendee, error)
	FilterFrom(ctx context.Context, ids []uuid.UUID, p pagination.Params) (pagination.Page[models.AttendeeListItem], error)
}

// UserResolver loads user accounts by id.
type UserResolver interface {
	ResolveUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, email models.Email) error
}

// StatusPublisher pushes status changes to live dashboards.
type StatusPublisher interface {
	PublishAttendeeStatus(eventID, attendeeID uuid.UUID, status models.AttendeeStatus)
}

// SelectionEmail configures the notification sent to selected users.
type SelectionEmail struct {
	From     string
	Subject  string
	Template string
}

// SelectionResult reports what happened to one requested user during selection.
type SelectionResult struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Notified bool      `json:"notified"`
	Selected bool      `json:"selected"`
	Error    string    `json:"error,omitempty"`
}

// Service implements the event attendee workflows.
type Service struct {
	store     Store
	attendees AttendeeStore
	users     UserResolver
	mailer    Mailer
	publisher StatusPublisher
	selection SelectionEmail
	logger    *zap.Logger
}

// NewService creates the events service. publisher may be nil.
func NewService(store Store, attendeeStore AttendeeStore, users UserResolver, mailer Mailer, publisher StatusPublisher, selection SelectionEmail, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		attendees: attendeeStore,
		users:     users,
		mailer:    mailer,
		publisher: publisher,
		selection: selection,
		logger:    logger,
	}
}

func (s *Service) publish(reg *models.AttendeeRegistration) {
	if s.publisher != nil && reg != nil {
		s.publisher.PublishAttendeeStatus(reg.EventID, reg.AttendeeID, reg.Status())
	}
}

func (s *Service) getEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *Service) attendeeForUser(ctx context.Context, userID uuid.UUID) (*models.Attendee, error) {
	a, err := s.attendees.GetByUserID(ctx, userID)
	if errors.Is(err, attendees.ErrNotFound) {
		return nil, apperr.ErrUserNotAttendee
	}
	if err != nil {
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	return a, nil
}

// CreateEvent stores a new event.
func (s *Service) CreateEvent(ctx context.Context, e *models.Event) error {
	if err := s.store.Create(ctx, e); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// ListEvents returns every event.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.store.List(ctx)
}

// GetEvent returns an event, with its registrations when withAttendees is set.
func (s *Service) GetEvent(ctx context.Context, id uuid.UUID, withAttendees bool) (*models.Event, error) {
	e, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if withAttendees {
		regs, err := s.store.ListRegistrations(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		e.Attendees = regs
	}
	return e, nil
}

// AddAttendee registers the user's attendee profile on the event.
func (s *Service) AddAttendee(ctx context.Context, eventID, userID uuid.UUID) (*models.AttendeeRegistration, error) {
	a, err := s.attendeeForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	reg, err := s.store.AddRegistration(ctx, eventID, a.ID)
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		return nil, apperr.ErrAttendeeAlreadyRegistered
	case errors.Is(err, ErrNotFound):
		return nil, ErrEventNotFound
	case err != nil:
		return nil, fmt.Errorf("add registration: %w", err)
	}
	s.publish(reg)
	return reg, nil
}

// ConfirmAttendee records whether a selected attendee will attend. The registration moves to the end of the list.
func (s *Service) ConfirmAttendee(ctx context.Context, eventID, userID uuid.UUID, attending bool) (*models.AttendeeRegistration, error) {
	a, err := s.attendeeForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	reg, err := s.store.UpdateRegistration(ctx, eventID, a.ID, func(r *models.AttendeeRegistration) error {
		if err := r.Confirm(attending); err != nil {
			return apperr.Wrap(apperr.KindPreconditionFailed, apperr.CodeAttendeeNotSelected, "attendee is not selected", err)
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrRegistrationNotFound):
		return nil, apperr.ErrUserNotAttendee
	case apperr.KindOf(err) != apperr.KindInternal:
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("update registration: %w", err)
	}
	s.logger.Info("attendee answered selection",
		zap.String("event_id", eventID.String()),
		zap.String("attendee_id", a.ID.String()),
		zap.Bool("attending", attending))
	s.publish(reg)
	return reg, nil
}

// HasAttendeeForUser reports whether the user's attendee profile is registered on the event.
func (s *Service) HasAttendeeForUser(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	a, err := s.attendees.GetByUserID(ctx, userID)
	if errors.Is(err, attendees.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get attendee: %w", err)
	}
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return false, err
	}
	_, err = s.store.GetRegistration(ctx, eventID, a.ID)
	if errors.Is(err, ErrRegistrationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get registration: %w", err)
	}
	return true, nil
}

// AttendeeStatus resolves the attendee's status on the event.
func (s *Service) AttendeeStatus(ctx context.Context, eventID, attendeeID uuid.UUID) (models.AttendeeStatus, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return "", err
	}
	reg, err := s.store.GetRegistration(ctx, eventID, attendeeID)
	if errors.Is(err, ErrRegistrationNotFound) {
		return models.StatusNotRegistered, nil
	}
	if err != nil {
		return "", fmt.Errorf("get registration: %w", err)
	}
	return reg.Status(), nil
}

// AttendeeStatusForUser resolves the status of the user's attendee profile on the event.
func (s *Service) AttendeeStatusForUser(ctx context.Context, eventID, userID uuid.UUID) (models.AttendeeStatus, error) {
	a, err := s.attendeeForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.AttendeeStatus(ctx, eventID, a.ID)
}

// FilteredAttendees lists the event's attendees. A search term matching a status keyword filters on
// status and is not passed on as text search. Every returned item carries its status.
func (s *Service) FilteredAttendees(ctx context.Context, eventID uuid.UUID, p pagination.Params) (pagination.Page[models.AttendeeListItem], error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return pagination.Page[models.AttendeeListItem]{}, err
	}
	regs, err := s.store.ListRegistrations(ctx, eventID)
	if err != nil {
		return pagination.Page[models.AttendeeListItem]{}, fmt.Errorf("list registrations: %w", err)
	}

	match := MatchStatusSearch(p.Search)
	ids := match.Candidates(regs)
	if match.Any() {
		p.Search = ""
	}

	page, err := s.attendees.FilterFrom(ctx, ids, p)
	if err != nil {
		return pagination.Page[models.AttendeeListItem]{}, fmt.Errorf("filter attendees: %w", err)
	}

	byAttendee := make(map[uuid.UUID]*models.AttendeeRegistration, len(regs))
	for i := range regs {
		byAttendee[regs[i].AttendeeID] = &regs[i]
	}
	for i := range page.Data {
		page.Data[i].Status = models.StatusOf(byAttendee[page.Data[i].ID])
	}
	return page, nil
}

// SelectAttendees marks the users' registrations as selected and emails each of them.
// A failed email is logged and reported in the result; it never stops the batch.
func (s *Service) SelectAttendees(ctx context.Context, eventID uuid.UUID, userIDs []uuid.UUID) ([]SelectionResult, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	ids := dedupe(userIDs)
	results := make([]SelectionResult, len(ids))
	index := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		results[i] = SelectionResult{UserID: id}
		index[id] = i
	}

	users, err := s.users.ResolveUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	found := make(map[uuid.UUID]bool, len(users))
	for _, u := range users {
		i, ok := index[u.ID]
		if !ok {
			continue
		}
		found[u.ID] = true
		results[i].Username = u.Username
		if err := s.mailer.Send(ctx, s.selectionEmail(u)); err != nil {
			s.logger.Warn("selection email failed",
				zap.String("event_id", eventID.String()),
				zap.String("user_id", u.ID.String()),
				zap.Error(err))
			results[i].Error = err.Error()
			continue
		}
		results[i].Notified = true
	}
	for i := range results {
		if !found[results[i].UserID] {
			results[i].Error = "user not found"
		}
	}

	profiles, err := s.attendees.ListByUserIDs(ctx, ids)
	if err != nil {
		return results, fmt.Errorf("list attendees: %w", err)
	}
	userOf := make(map[uuid.UUID]uuid.UUID, len(profiles))
	attendeeIDs := make([]uuid.UUID, 0, len(profiles))
	for _, a := range profiles {
		userOf[a.ID] = a.UserID
		attendeeIDs = append(attendeeIDs, a.ID)
	}
	updated, err := s.store.MarkSelected(ctx, eventID, attendeeIDs)
	if err != nil {
		return results, fmt.Errorf("mark selected: %w", err)
	}
	for i := range updated {
		if j, ok := index[userOf[updated[i].AttendeeID]]; ok {
			results[j].Selected = true
		}
		s.publish(&updated[i])
	}

	s.logger.Info("attendees selected",
		zap.String("event_id", eventID.String()),
		zap.Int("requested", len(ids)),
		zap.Int("selected", len(updated)))
	return results, nil
}

func (s *Service) selectionEmail(u models.User) models.Email {
	return models.Email{
		From:     s.selection.From,
		To:       []string{u.Username},
		Subject:  s.selection.Subject,
		Template: s.selection.Template,
		Variables: map[string]string{
			"name": u.FirstName,
		},
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
