package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/models"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	// EventAttendeeStatus is sent when an attendee's status on an event changes.
	EventAttendeeStatus = "attendee_status"
)

// Publisher publishes an event message to every API instance.
type Publisher interface {
	PublishEventMessage(eventID uuid.UUID, kind string, payload []byte) error
}

// Subscriber subscribes to an event channel and invokes handler for incoming messages.
type Subscriber interface {
	SubscribeEvent(eventID uuid.UUID, handler func(kind string, payload []byte)) (cancel func(), err error)
}

// AttendeeStatusMessage is the payload of EventAttendeeStatus.
type AttendeeStatusMessage struct {
	EventID    uuid.UUID             `json:"event_id"`
	AttendeeID uuid.UUID             `json:"attendee_id"`
	Status     models.AttendeeStatus `json:"status"`
}

// Hub maintains event_id -> set of dashboard connections and fans out messages.
// With Redis configured, messages go through pub/sub so every instance delivers them once.
type Hub struct {
	rooms  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func()
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a hub. pub and sub may be nil for a single-instance deployment.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to an event room, subscribing to the event channel for the first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.EventID] == nil {
		h.rooms[c.EventID] = make(map[string]*Client)
		if h.sub != nil {
			eventID := c.EventID
			cancel, err := h.sub.SubscribeEvent(eventID, func(kind string, payload []byte) {
				h.broadcastLocal(eventID, kind, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("subscribe event channel failed", zap.String("event_id", eventID.String()), zap.Error(err))
			} else {
				h.subs[eventID] = cancel
			}
		}
	}
	h.rooms[c.EventID][c.ID] = c
	h.logger.Debug("dashboard client joined", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// Unregister removes a client, cancelling the channel subscription when the room empties.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.EventID]
	if !ok {
		return
	}
	if _, ok := room[c.ID]; !ok {
		return
	}
	delete(room, c.ID)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.EventID)
		if cancel, ok := h.subs[c.EventID]; ok {
			cancel()
			delete(h.subs, c.EventID)
		}
	}
	h.logger.Debug("dashboard client left", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// ClientCount returns the number of connected clients on an event.
func (h *Hub) ClientCount(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}

// Publish delivers a message to every client watching eventID, across instances when Redis is configured.
func (h *Hub) Publish(eventID uuid.UUID, kind string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal realtime payload", zap.String("kind", kind), zap.Error(err))
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishEventMessage(eventID, kind, data); err != nil {
			h.logger.Warn("publish realtime message", zap.String("event_id", eventID.String()), zap.Error(err))
		}
		return
	}
	h.broadcastLocal(eventID, kind, json.RawMessage(data))
}

// PublishAttendeeStatus announces an attendee's new status on an event.
func (h *Hub) PublishAttendeeStatus(eventID, attendeeID uuid.UUID, status models.AttendeeStatus) {
	h.Publish(eventID, EventAttendeeStatus, AttendeeStatusMessage{EventID: eventID, AttendeeID: attendeeID, Status: status})
}

func (h *Hub) broadcastLocal(eventID uuid.UUID, kind string, data json.RawMessage) {
	msg := Message{Kind: kind, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[eventID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("client buffer full, dropping message", zap.String("client_id", c.ID))
		}
	}
}
