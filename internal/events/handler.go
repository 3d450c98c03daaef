package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/middleware"
	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/pagination"
	"github.com/polyhx/hackatown-backend/pkg/response"
)

// CreateEventRequest is the body for POST /events.
type CreateEventRequest struct {
	Code        string     `json:"code" binding:"required,max=64"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	BeginsAt    time.Time  `json:"begins_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	IsCurrent   bool       `json:"is_current"`
}

// ConfirmRequest is the body for PUT /events/:id/attendees/me/confirm.
type ConfirmRequest struct {
	Attending *bool `json:"attending" binding:"required"`
}

// SelectionRequest is the body for PUT /events/:id/selection.
type SelectionRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required,min=1"`
}

// Handler handles event endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func parseEventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

func isStaff(c *gin.Context) bool {
	role := models.Role(c.GetString(middleware.ContextUserRole))
	return role == models.RoleAdmin || role == models.RoleOrganizer
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.BeginsAt) {
		response.BadRequest(c, "ends_at must be after begins_at")
		return
	}
	e := &models.Event{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		BeginsAt:    req.BeginsAt,
		EndsAt:      req.EndsAt,
		IsCurrent:   req.IsCurrent,
		CreatedBy:   userID,
	}
	if err := h.svc.CreateEvent(c.Request.Context(), e); err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.ListEvents(c.Request.Context())
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	response.OK(c, list)
}

// Get handles GET /events/:id. Registrations are included for staff only.
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	e, err := h.svc.GetEvent(c.Request.Context(), id, isStaff(c))
	if err != nil {
		response.Error(c, err, "failed to load event")
		return
	}
	response.OK(c, e)
}

// Register handles POST /events/:id/attendees.
func (h *Handler) Register(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	reg, err := h.svc.AddAttendee(c.Request.Context(), id, userID)
	if err != nil {
		h.logError("register attendee failed", err)
		response.Error(c, err, "failed to register attendee")
		return
	}
	response.Created(c, gin.H{"attendee_id": reg.AttendeeID, "status": reg.Status()})
}

// Confirm handles PUT /events/:id/attendees/me/confirm.
func (h *Handler) Confirm(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID, _ := middleware.UserID(c)
	reg, err := h.svc.ConfirmAttendee(c.Request.Context(), id, userID, *req.Attending)
	if err != nil {
		h.logError("confirm attendee failed", err)
		response.Error(c, err, "failed to confirm attendee")
		return
	}
	response.OK(c, gin.H{"attendee_id": reg.AttendeeID, "status": reg.Status()})
}

// MyStatus handles GET /events/:id/attendees/me/status.
func (h *Handler) MyStatus(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	status, err := h.svc.AttendeeStatusForUser(c.Request.Context(), id, userID)
	if err != nil {
		h.logError("attendee status failed", err)
		response.Error(c, err, "failed to resolve status")
		return
	}
	response.OK(c, gin.H{"status": status})
}

// IsRegistered handles GET /events/:id/attendees/me.
func (h *Handler) IsRegistered(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	registered, err := h.svc.HasAttendeeForUser(c.Request.Context(), id, userID)
	if err != nil {
		h.logError("registration lookup failed", err)
		response.Error(c, err, "failed to check registration")
		return
	}
	response.OK(c, gin.H{"registered": registered})
}

// AttendeeStatus handles GET /events/:id/attendees/:attendeeId/status.
func (h *Handler) AttendeeStatus(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	attendeeID, err := uuid.Parse(c.Param("attendeeId"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	status, err := h.svc.AttendeeStatus(c.Request.Context(), id, attendeeID)
	if err != nil {
		h.logError("attendee status failed", err)
		response.Error(c, err, "failed to resolve status")
		return
	}
	response.OK(c, gin.H{"attendee_id": attendeeID, "status": status})
}

// ListAttendees handles GET /events/:id/attendees?search=&page=&per_page=&sort_by=&order=.
func (h *Handler) ListAttendees(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	p := pagination.Parse(c, "created_at", "desc", pagination.DefaultOpts)
	page, err := h.svc.FilteredAttendees(c.Request.Context(), id, p)
	if err != nil {
		h.logError("list attendees failed", err)
		response.Error(c, err, "failed to list attendees")
		return
	}
	response.OK(c, page)
}

// Select handles PUT /events/:id/selection.
func (h *Handler) Select(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	results, err := h.svc.SelectAttendees(c.Request.Context(), id, req.UserIDs)
	if err != nil {
		h.logError("select attendees failed", err)
		response.Error(c, err, "failed to select attendees")
		return
	}
	response.OK(c, results)
}

func (h *Handler) logError(msg string, err error) {
	if response.IsServerError(err) {
		h.logger.Error(msg, zap.Error(err))
	}
}
