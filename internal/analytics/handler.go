package analytics

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/pkg/response"
)

// StatsSource provides dashboard aggregates.
type StatsSource interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// Handler handles GET /api/stats.
type Handler struct {
	repo   StatsSource
	logger *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(repo StatsSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(c *gin.Context) {
	s, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("load stats", zap.Error(err))
		response.Internal(c, "failed to load stats")
		return
	}
	response.OK(c, s)
}
