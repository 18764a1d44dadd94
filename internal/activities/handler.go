package activities

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/internal/realtime"
	"github.com/charity-events/backend/pkg/response"
	"github.com/charity-events/backend/pkg/validation"
)

// Store is the activity persistence used by Handler.
type Store interface {
	List(ctx context.Context) ([]models.Activity, error)
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	Create(ctx context.Context, a *models.Activity) error
	Update(ctx context.Context, a *models.Activity) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// RegistrationLister loads the registrations shown on the detail page.
type RegistrationLister interface {
	ListForActivity(ctx context.Context, activityID int64) ([]models.Registration, error)
}

// Notifier receives change events after successful writes.
type Notifier interface {
	Notify(ctx context.Context, activityID int64, event string, payload interface{})
}

// Request is the body for POST /api/activities and PUT /api/activities/:id.
// Text fields are stored trimmed. The date is stored and echoed back in
// models.DateLayout: a value without seconds gains ":00" and any zone offset
// is dropped, so "2025-11-15T09:00" reads back as "2025-11-15T09:00:00".
// category_id may be a JSON number or a numeric string.
type Request struct {
	Title       string           `json:"title" binding:"required,notblank"`
	Description string           `json:"description" binding:"required,notblank"`
	Date        string           `json:"date" binding:"required,notblank"`
	Location    string           `json:"location" binding:"required,notblank"`
	CategoryID  models.NumericID `json:"category_id" binding:"required,min=1"`
}

// Handler handles activity HTTP endpoints.
type Handler struct {
	store    Store
	regs     RegistrationLister
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates an activity handler. notifier may be nil.
func NewHandler(store Store, regs RegistrationLister, notifier Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, regs: regs, notifier: notifier, logger: logger}
}

// List handles GET /api/activities.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list activities", zap.Error(err))
		response.Internal(c, "failed to list activities")
		return
	}
	response.OK(c, list)
}

// Get handles GET /api/activities/:id and returns the activity with its registrations.
func (h *Handler) Get(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	a, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "activity not found")
			return
		}
		h.logger.Error("get activity", zap.Int64("activity_id", id), zap.Error(err))
		response.Internal(c, "failed to load activity")
		return
	}
	regs, err := h.regs.ListForActivity(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list activity registrations", zap.Int64("activity_id", id), zap.Error(err))
		response.Internal(c, "failed to load activity")
		return
	}
	if regs == nil {
		regs = []models.Registration{}
	}
	response.OK(c, models.ActivityDetail{Activity: a, Registrations: regs})
}

// bind validates the body into an Activity with a normalized date.
func bind(c *gin.Context) (*models.Activity, bool) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return nil, false
	}
	date, err := models.ParseActivityDate(req.Date)
	if err != nil {
		response.BadRequest(c, "invalid date")
		return nil, false
	}
	return &models.Activity{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        models.FormatActivityDate(date),
		Location:    strings.TrimSpace(req.Location),
		CategoryID:  int64(req.CategoryID),
	}, true
}

// Create handles POST /api/activities.
func (h *Handler) Create(c *gin.Context) {
	a, ok := bind(c)
	if !ok {
		return
	}
	if err := h.store.Create(c.Request.Context(), a); err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			response.BadRequest(c, "unknown category")
			return
		}
		h.logger.Error("create activity", zap.Error(err))
		response.Internal(c, "failed to create activity")
		return
	}
	h.notify(c, a.ID, realtime.EventActivityCreated, a)
	response.Created(c, a)
}

// Update handles PUT /api/activities/:id. Every field is replaced.
func (h *Handler) Update(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	a, ok := bind(c)
	if !ok {
		return
	}
	a.ID = id
	n, err := h.store.Update(c.Request.Context(), a)
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			response.BadRequest(c, "unknown category")
			return
		}
		h.logger.Error("update activity", zap.Int64("activity_id", id), zap.Error(err))
		response.Internal(c, "failed to update activity")
		return
	}
	if n == 0 {
		response.NotFound(c, "activity not found")
		return
	}
	h.notify(c, id, realtime.EventActivityUpdated, a)
	response.OK(c, a)
}

// Delete handles DELETE /api/activities/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	n, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete activity", zap.Int64("activity_id", id), zap.Error(err))
		response.Internal(c, "failed to delete activity")
		return
	}
	if n == 0 {
		response.NotFound(c, "activity not found")
		return
	}
	h.notify(c, id, realtime.EventActivityDeleted, gin.H{"id": id})
	response.Success(c, "Activity deleted successfully")
}

func (h *Handler) notify(c *gin.Context, activityID int64, event string, payload interface{}) {
	if h.notifier != nil {
		h.notifier.Notify(c.Request.Context(), activityID, event, payload)
	}
}
