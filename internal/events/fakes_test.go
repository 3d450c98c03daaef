package events

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/polyhx/hackatown-backend/internal/attendees"
	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/pagination"
)

type memStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event
	regs   map[uuid.UUID][]models.AttendeeRegistration
	seq    int64
}

func newMemStore() *memStore {
	return &memStore{events: map[uuid.UUID]*models.Event{}, regs: map[uuid.UUID][]models.AttendeeRegistration{}}
}

func (s *memStore) addEvent() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.events[id] = &models.Event{ID: id, Code: "hackatown", Name: "Hackatown"}
	return id
}

// put stores a registration with explicit flags, bypassing transitions.
func (s *memStore) put(eventID uuid.UUID, reg models.AttendeeRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	reg.EventID = eventID
	reg.Position = s.seq
	s.regs[eventID] = append(s.regs[eventID], reg)
}

func (s *memStore) Create(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.New()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) List(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.events {
		out = append(out, *e)
	}
	return out, nil
}

func (s *memStore) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.AttendeeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.AttendeeRegistration(nil), s.regs[eventID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *memStore) GetRegistration(ctx context.Context, eventID, attendeeID uuid.UUID) (*models.AttendeeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs[eventID] {
		if r.AttendeeID == attendeeID {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrRegistrationNotFound
}

func (s *memStore) AddRegistration(ctx context.Context, eventID, attendeeID uuid.UUID) (*models.AttendeeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return nil, ErrNotFound
	}
	for _, r := range s.regs[eventID] {
		if r.AttendeeID == attendeeID {
			return nil, ErrAlreadyRegistered
		}
	}
	s.seq++
	reg := models.AttendeeRegistration{EventID: eventID, AttendeeID: attendeeID, Position: s.seq}
	s.regs[eventID] = append(s.regs[eventID], reg)
	return &reg, nil
}

func (s *memStore) UpdateRegistration(ctx context.Context, eventID, attendeeID uuid.UUID, fn func(*models.AttendeeRegistration) error) (*models.AttendeeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.regs[eventID]
	for i := range list {
		if list[i].AttendeeID != attendeeID {
			continue
		}
		reg := list[i]
		if err := fn(&reg); err != nil {
			return nil, err
		}
		s.seq++
		reg.Position = s.seq
		list[i] = reg
		return &reg, nil
	}
	return nil, ErrRegistrationNotFound
}

func (s *memStore) MarkSelected(ctx context.Context, eventID uuid.UUID, attendeeIDs []uuid.UUID) ([]models.AttendeeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range attendeeIDs {
		want[id] = true
	}
	var out []models.AttendeeRegistration
	list := s.regs[eventID]
	for i := range list {
		if want[list[i].AttendeeID] {
			list[i].Select()
			out = append(out, list[i])
		}
	}
	return out, nil
}

type memAttendees struct {
	byUser map[uuid.UUID]models.Attendee

	filterIDs    []uuid.UUID
	filterParams pagination.Params
}

func newMemAttendees() *memAttendees {
	return &memAttendees{byUser: map[uuid.UUID]models.Attendee{}}
}

func (m *memAttendees) add(userID uuid.UUID) models.Attendee {
	a := models.Attendee{ID: uuid.New(), UserID: userID}
	m.byUser[userID] = a
	return a
}

func (m *memAttendees) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Attendee, error) {
	a, ok := m.byUser[userID]
	if !ok {
		return nil, attendees.ErrNotFound
	}
	return &a, nil
}

func (m *memAttendees) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.Attendee, error) {
	var out []models.Attendee
	for _, id := range userIDs {
		if a, ok := m.byUser[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAttendees) FilterFrom(ctx context.Context, ids []uuid.UUID, p pagination.Params) (pagination.Page[models.AttendeeListItem], error) {
	m.filterIDs = ids
	m.filterParams = p
	items := make([]models.AttendeeListItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, models.AttendeeListItem{ID: id})
	}
	return pagination.NewPage(items, int64(len(items)), p), nil
}

type memUsers struct {
	users map[uuid.UUID]models.User
	err   error
}

func (m *memUsers) ResolveUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type recordingMailer struct {
	mu     sync.Mutex
	sent   []models.Email
	failTo map[string]bool
}

var errSMTPDown = errors.New("mail service unavailable")

func (m *recordingMailer) Send(ctx context.Context, email models.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(email.To) > 0 && m.failTo[email.To[0]] {
		return errSMTPDown
	}
	m.sent = append(m.sent, email)
	return nil
}

type publishedStatus struct {
	EventID    uuid.UUID
	AttendeeID uuid.UUID
	Status     models.AttendeeStatus
}

type recordingPublisher struct {
	events []publishedStatus
}

func (p *recordingPublisher) PublishAttendeeStatus(eventID, attendeeID uuid.UUID, status models.AttendeeStatus) {
	p.events = append(p.events, publishedStatus{eventID, attendeeID, status})
}

type fixture struct {
	store     *memStore
	attendees *memAttendees
	users     *memUsers
	mailer    *recordingMailer
	publisher *recordingPublisher
	svc       *Service
	eventID   uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		store:     newMemStore(),
		attendees: newMemAttendees(),
		users:     &memUsers{users: map[uuid.UUID]models.User{}},
		mailer:    &recordingMailer{failTo: map[string]bool{}},
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(f.store, f.attendees, f.users, f.mailer, f.publisher, SelectionEmail{
		From:     "PolyHx <info@polyhx.io>",
		Subject:  "Hackatown 2018 - Selection",
		Template: "hackatown2018-selection",
	}, nil)
	f.eventID = f.store.addEvent()
	return f
}

// newUser creates a user with an attendee profile.
func (f *fixture) newUser(email, firstName string) (models.User, models.Attendee) {
	u := models.User{ID: uuid.New(), Username: email, FirstName: firstName, Role: models.RoleAttendee}
	f.users.users[u.ID] = u
	return u, f.attendees.add(u.ID)
}

// registered creates a user whose attendee is registered on the fixture event with the given flags.
func (f *fixture) registered(selected, confirmed, declined bool) (models.User, models.Attendee) {
	u, a := f.newUser(uuid.NewString()+"@example.com", "Test")
	f.store.put(f.eventID, models.AttendeeRegistration{AttendeeID: a.ID, Selected: selected, Confirmed: confirmed, Declined: declined})
	return u, a
}
