package questions

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/response"
)

// CreateRequest is the body for POST /questions and PUT /questions/:id.
type CreateRequest struct {
	Label          string                `json:"label" binding:"required"`
	Description    json.RawMessage       `json:"description" binding:"required"`
	Type           models.QuestionType   `json:"type" binding:"required,oneof=crypto gaming scavenger sponsor"`
	ValidationType models.ValidationType `json:"validation_type" binding:"required,oneof=string regex function"`
	Answer         string                `json:"answer" binding:"required"`
	Score          *int                  `json:"score" binding:"required,min=0"`
}

// ValidateRequest is the body for POST /questions/:id/validate.
type ValidateRequest struct {
	Answer string `json:"answer"`
}

// Store is the question persistence used by the handler.
type Store interface {
	QuestionGetter
	Create(ctx context.Context, q *models.Question) error
	List(ctx context.Context) ([]models.Question, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler handles question endpoints.
type Handler struct {
	repo      Store
	validator *Validator
	logger    *zap.Logger
}

// NewHandler creates a questions handler.
func NewHandler(repo Store, validator *Validator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, validator: validator, logger: logger}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return uuid.Nil, false
	}
	return id, true
}

func (req *CreateRequest) toModel() (*models.Question, error) {
	if req.ValidationType == models.ValidationRegex {
		if _, err := MatchFull(req.Answer, ""); err != nil {
			return nil, err
		}
	}
	return &models.Question{
		Label:          req.Label,
		Description:    req.Description,
		Type:           req.Type,
		ValidationType: req.ValidationType,
		Answer:         req.Answer,
		Score:          *req.Score,
	}, nil
}

// Create handles POST /questions.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	q, err := req.toModel()
	if err != nil {
		response.BadRequest(c, "invalid answer pattern: "+err.Error())
		return
	}
	if err := h.repo.Create(c.Request.Context(), q); err != nil {
		h.logger.Error("create question failed", zap.Error(err))
		response.Internal(c, "failed to create question")
		return
	}
	response.Created(c, q)
}

// List handles GET /questions.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list questions failed", zap.Error(err))
		response.Internal(c, "failed to list questions")
		return
	}
	if list == nil {
		list = []models.Question{}
	}
	response.OK(c, list)
}

// Get handles GET /questions/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	q, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, ErrQuestionNotFound, "")
			return
		}
		response.Internal(c, "failed to load question")
		return
	}
	response.OK(c, q)
}

// Update handles PUT /questions/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	q, err := req.toModel()
	if err != nil {
		response.BadRequest(c, "invalid answer pattern: "+err.Error())
		return
	}
	q.ID = id
	if err := h.repo.Update(c.Request.Context(), q); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, ErrQuestionNotFound, "")
			return
		}
		h.logger.Error("update question failed", zap.Error(err))
		response.Internal(c, "failed to update question")
		return
	}
	response.OK(c, q)
}

// Delete handles DELETE /questions/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, ErrQuestionNotFound, "")
			return
		}
		response.Internal(c, "failed to delete question")
		return
	}
	response.NoContent(c)
}

// Validate handles POST /questions/:id/validate.
func (h *Handler) Validate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	score, err := h.validator.ValidateAnswer(c.Request.Context(), req.Answer, id)
	if err != nil {
		if response.IsServerError(err) {
			h.logger.Error("validate answer failed", zap.String("question_id", id.String()), zap.Error(err))
		}
		response.Error(c, err, "failed to validate answer")
		return
	}
	response.OK(c, gin.H{"score": score})
}
