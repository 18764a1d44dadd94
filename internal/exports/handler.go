package exports

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/pkg/response"
	"github.com/charity-events/backend/pkg/storage"
	"github.com/charity-events/backend/pkg/validation"
)

// ActivityChecker reports whether an activity exists.
type ActivityChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// RegistrationLister loads the rows to export.
type RegistrationLister interface {
	ListForActivity(ctx context.Context, activityID int64) ([]models.Registration, error)
}

// ObjectStore keeps export files and signs download links.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// Result is the body returned for a finished export.
type Result struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler handles registration exports.
type Handler struct {
	activities ActivityChecker
	regs       RegistrationLister
	store      ObjectStore
	logger     *zap.Logger
}

// NewHandler creates an exports handler. A nil store disables exports.
func NewHandler(activities ActivityChecker, regs RegistrationLister, store ObjectStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{activities: activities, regs: regs, store: store, logger: logger}
}

// ExportRegistrations handles POST /api/activities/:id/registrations/export.
// It uploads the activity's registrations as CSV and returns a pre-signed download URL.
func (h *Handler) ExportRegistrations(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	if h.store == nil {
		response.ServiceUnavailable(c, "export storage is not configured")
		return
	}
	ctx := c.Request.Context()
	ok, err := h.activities.Exists(ctx, id)
	if err != nil {
		h.logger.Error("check activity", zap.Int64("activity_id", id), zap.Error(err))
		response.Internal(c, "failed to export registrations")
		return
	}
	if !ok {
		response.NotFound(c, "activity not found")
		return
	}
	regs, err := h.regs.ListForActivity(ctx, id)
	if err != nil {
		h.logger.Error("list registrations for export", zap.Int64("activity_id", id), zap.Error(err))
		response.Internal(c, "failed to export registrations")
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, regs); err != nil {
		h.logger.Error("render export", zap.Int64("activity_id", id), zap.Error(err))
		response.Internal(c, "failed to export registrations")
		return
	}
	key := storage.ExportKey(id, uuid.New().String())
	if err := h.store.Upload(ctx, key, storage.ContentTypeCSV, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		h.logger.Error("upload export", zap.String("key", key), zap.Error(err))
		response.Internal(c, "failed to upload export")
		return
	}
	url, expiresAt, err := h.store.PresignGet(ctx, key)
	if err != nil {
		h.logger.Error("presign export", zap.String("key", key), zap.Error(err))
		if derr := h.store.DeleteObject(context.WithoutCancel(ctx), key); derr != nil {
			h.logger.Warn("remove unsigned export", zap.String("key", key), zap.Error(derr))
		}
		response.Internal(c, "failed to upload export")
		return
	}
	h.logger.Info("registrations exported", zap.Int64("activity_id", id), zap.Int("rows", len(regs)), zap.String("key", key))
	response.OK(c, Result{URL: url, Key: key, ExpiresAt: expiresAt})
}
