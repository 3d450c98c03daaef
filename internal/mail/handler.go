package mail

import (
	"context"
	"errors"
	"net/mail"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/apperr"
	"github.com/polyhx/hackatown-backend/pkg/queue"
	"github.com/polyhx/hackatown-backend/pkg/response"
)

// SendRequest is the body for POST /email.
type SendRequest struct {
	From      string            `json:"from" binding:"required"`
	To        []string          `json:"to" binding:"required,min=1,dive,required"`
	Subject   string            `json:"subject"`
	Text      string            `json:"text"`
	HTML      string            `json:"html"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables"`
}

// TemplateStore looks templates up by name.
type TemplateStore interface {
	GetByName(ctx context.Context, name string) (*models.EmailTemplate, error)
}

// LogStore records outgoing messages.
type LogStore interface {
	Create(ctx context.Context, el *models.EmailLog) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, final bool) error
}

// Enqueuer schedules delivery jobs.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler serves the mail service send endpoint.
type Handler struct {
	templates TemplateStore
	logs      LogStore
	queue     Enqueuer
	logger    *zap.Logger
}

// NewHandler creates the send handler.
func NewHandler(templates TemplateStore, logs LogStore, q Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{templates: templates, logs: logs, queue: q, logger: logger}
}

// Send handles POST /email: renders the template when one is named, records a pending log and queues delivery.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := mail.ParseAddress(req.From); err != nil {
		response.BadRequest(c, "invalid from address")
		return
	}
	for _, to := range req.To {
		if _, err := mail.ParseAddress(to); err != nil {
			response.BadRequest(c, "invalid recipient: "+to)
			return
		}
	}

	el := &models.EmailLog{
		Template:   req.Template,
		Sender:     req.From,
		Recipients: req.To,
		Subject:    req.Subject,
		HTML:       req.HTML,
		Text:       req.Text,
	}
	if req.Template != "" {
		if err := h.render(c.Request.Context(), req, el); err != nil {
			response.Error(c, err, "failed to render template")
			return
		}
	}
	if el.HTML == "" && el.Text == "" {
		response.BadRequest(c, "html, text or template required")
		return
	}
	if el.Subject == "" {
		response.BadRequest(c, "subject required")
		return
	}

	ctx := c.Request.Context()
	if err := h.logs.Create(ctx, el); err != nil {
		h.logger.Error("create email log failed", zap.Error(err))
		response.Internal(c, "failed to record email")
		return
	}
	if err := h.queue.EnqueueEmail(ctx, queue.EmailPayload{EmailLogID: el.ID}); err != nil {
		h.logger.Error("enqueue email failed", zap.Error(err), zap.String("email_log_id", el.ID.String()))
		if mErr := h.logs.MarkFailed(ctx, el.ID, "enqueue: "+err.Error(), true); mErr != nil {
			h.logger.Error("mark email failed", zap.Error(mErr))
		}
		response.ServiceUnavailable(c, "failed to queue email")
		return
	}
	h.logger.Info("email queued",
		zap.String("email_log_id", el.ID.String()),
		zap.String("template", el.Template),
		zap.Int("recipients", len(el.Recipients)))
	response.Accepted(c, gin.H{"id": el.ID, "status": el.Status})
}

// render fills el from the named template. An explicit subject in the request wins over the template's.
func (h *Handler) render(ctx context.Context, req SendRequest, el *models.EmailLog) error {
	t, err := h.templates.GetByName(ctx, req.Template)
	if errors.Is(err, ErrTemplateNotFound) {
		return apperr.NotFound(apperr.CodeTemplateNotFound, "template not found: "+req.Template)
	}
	if err != nil {
		h.logger.Error("load template failed", zap.Error(err), zap.String("template", req.Template))
		return err
	}
	out, err := Render(t, req.Variables)
	if err != nil {
		return apperr.Wrap(apperr.KindBadRequest, apperr.CodeTemplateInvalid, "template cannot be rendered", err)
	}
	el.HTML, el.Text = out.HTML, out.Text
	if el.Subject == "" {
		el.Subject = out.Subject
	}
	return nil
}
