package categories

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/pkg/response"
)

// Lister lists categories.
type Lister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// Handler handles category HTTP endpoints.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates a categories handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/categories.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories", zap.Error(err))
		response.Internal(c, "failed to load categories")
		return
	}
	response.OK(c, list)
}
