package attendees

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/middleware"
	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/apperr"
	"github.com/polyhx/hackatown-backend/pkg/response"
	"github.com/polyhx/hackatown-backend/pkg/storage"
)

// CreateRequest is the body for POST /attendees.
type CreateRequest struct {
	School   string `json:"school"`
	Github   string `json:"github" binding:"omitempty,url"`
	Linkedin string `json:"linkedin" binding:"omitempty,url"`
}

// Store is the attendee persistence used by the handler.
type Store interface {
	Create(ctx context.Context, a *models.Attendee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Attendee, error)
	SetCV(ctx context.Context, id uuid.UUID, key string) error
}

// CVStorage stores CV documents.
type CVStorage interface {
	UploadCV(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error
	CVDownloadURL(ctx context.Context, key string) (string, error)
}

// Handler handles attendee profile endpoints.
type Handler struct {
	repo    Store
	storage CVStorage
	logger  *zap.Logger
}

// NewHandler creates an attendees handler. storage may be nil, which disables CV endpoints.
func NewHandler(repo Store, cvStorage CVStorage, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, storage: cvStorage, logger: logger}
}

// Create handles POST /attendees: the caller creates their own attendee profile.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a := &models.Attendee{UserID: userID, School: req.School, Github: req.Github, Linkedin: req.Linkedin}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		if errors.Is(err, ErrExists) {
			response.Error(c, apperr.ErrAttendeeAlreadyExists, "")
			return
		}
		h.logger.Error("create attendee failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to create attendee")
		return
	}
	response.Created(c, a)
}

// Me handles GET /attendees/me.
func (h *Handler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	a, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "attendee not found")
			return
		}
		response.Internal(c, "failed to load attendee")
		return
	}
	response.OK(c, a)
}

// UploadCV handles PUT /attendees/me/cv (multipart field "file", PDF only).
func (h *Handler) UploadCV(c *gin.Context) {
	if h.storage == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}
	userID, _ := middleware.UserID(c)
	a, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "attendee not found")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxCVFileSize+1024*1024)
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file required")
		return
	}
	if fh.Size > storage.MaxCVFileSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !storage.ValidateCVType(contentType) {
		response.BadRequest(c, "cv must be a PDF")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "unreadable file")
		return
	}
	defer f.Close()

	key := storage.CVKey(a.ID.String())
	if err := h.storage.UploadCV(c.Request.Context(), key, "application/pdf", f, fh.Size); err != nil {
		h.logger.Error("cv upload failed", zap.Error(err), zap.String("attendee_id", a.ID.String()))
		response.Internal(c, "failed to upload cv")
		return
	}
	if err := h.repo.SetCV(c.Request.Context(), a.ID, key); err != nil {
		response.Internal(c, "failed to save cv")
		return
	}
	response.OK(c, gin.H{"attendee_id": a.ID, "has_cv": true})
}

// CVURL handles GET /attendees/:id/cv, returning a short-lived download URL.
func (h *Handler) CVURL(c *gin.Context) {
	if h.storage == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "attendee not found")
		return
	}
	if a.CVKey == "" {
		response.NotFound(c, "attendee has no cv")
		return
	}
	url, err := h.storage.CVDownloadURL(c.Request.Context(), a.CVKey)
	if err != nil {
		h.logger.Error("presign cv failed", zap.Error(err))
		response.Internal(c, "failed to generate download url")
		return
	}
	response.OK(c, gin.H{"url": url})
}
