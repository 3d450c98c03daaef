package emaillogs

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/queue"
	"github.com/polyhx/hackatown-backend/pkg/response"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Store is the log persistence used by the handler.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmailLog, error)
	ListRecent(ctx context.Context, status string, limit int) ([]models.EmailLog, error)
	Requeue(ctx context.Context, id uuid.UUID) error
}

// Enqueuer schedules delivery jobs.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler handles email log HTTP endpoints on the mail service.
type Handler struct {
	repo   Store
	queue  Enqueuer
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo Store, q Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, queue: q, logger: logger}
}

// List handles GET /emails?status=&limit=. Returns the newest logs first.
func (h *Handler) List(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", models.EmailLogStatusPending, models.EmailLogStatusSent, models.EmailLogStatusFailed:
	default:
		response.BadRequest(c, "invalid status")
		return
	}
	limit := defaultListLimit
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	logs, err := h.repo.ListRecent(c.Request.Context(), status, limit)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "failed to load email logs")
		return
	}
	if logs == nil {
		logs = []models.EmailLog{}
	}
	response.OK(c, logs)
}

// Resend handles POST /emails/:id/resend. Only failed messages can be resent.
func (h *Handler) Resend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid email id")
		return
	}
	el, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "email not found")
			return
		}
		response.Internal(c, "failed to load email")
		return
	}
	if el.Status != models.EmailLogStatusFailed {
		response.Conflict(c, "only failed emails can be resent")
		return
	}
	if err := h.repo.Requeue(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to reset email")
		return
	}
	if err := h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{EmailLogID: id}); err != nil {
		h.logger.Error("enqueue resend failed", zap.Error(err), zap.String("email_log_id", id.String()))
		response.ServiceUnavailable(c, "failed to queue email")
		return
	}
	response.Accepted(c, gin.H{"id": id, "status": models.EmailLogStatusPending})
}
