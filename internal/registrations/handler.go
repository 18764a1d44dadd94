package registrations

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/internal/realtime"
	"github.com/charity-events/backend/pkg/queue"
	"github.com/charity-events/backend/pkg/response"
	"github.com/charity-events/backend/pkg/validation"
)

// Store is the registration persistence used by Handler.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context, activityID *int64) ([]models.RegistrationWithActivity, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Enqueuer schedules confirmation emails.
type Enqueuer interface {
	EnqueueRegistrationConfirmation(ctx context.Context, payload queue.RegistrationConfirmationPayload) error
}

// Notifier receives change events after successful writes.
type Notifier interface {
	Notify(ctx context.Context, activityID int64, event string, payload interface{})
}

// CreateRequest is the body for POST /api/registrations.
type CreateRequest struct {
	ActivityID     int64   `json:"activity_id" binding:"required,min=1"`
	UserName       string  `json:"user_name" binding:"required,notblank"`
	UserEmail      string  `json:"user_email" binding:"required,notblank"`
	Phone          *string `json:"phone"`
	TicketQuantity int     `json:"ticket_quantity" binding:"required,min=1"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	store    Store
	queue    Enqueuer
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a registrations handler. queue and notifier may be nil.
func NewHandler(store Store, q Enqueuer, notifier Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, queue: q, notifier: notifier, logger: logger}
}

// NormalizeEmail trims and lowercases an address so duplicates differing only in case collide.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create handles POST /api/registrations.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}
	reg := &models.Registration{
		ActivityID:     req.ActivityID,
		UserName:       strings.TrimSpace(req.UserName),
		UserEmail:      NormalizeEmail(req.UserEmail),
		TicketQuantity: req.TicketQuantity,
	}
	if req.Phone != nil {
		if p := strings.TrimSpace(*req.Phone); p != "" {
			reg.Phone = &p
		}
	}

	ctx := c.Request.Context()
	if err := h.store.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateRegistration):
			response.BadRequest(c, "You have already registered for this activity")
		case errors.Is(err, ErrActivityNotFound):
			response.NotFound(c, "activity not found")
		default:
			h.logger.Error("create registration failed", zap.Error(err), zap.Int64("activity_id", reg.ActivityID))
			response.Internal(c, "failed to register")
		}
		return
	}

	if h.queue != nil {
		err := h.queue.EnqueueRegistrationConfirmation(ctx, queue.RegistrationConfirmationPayload{
			RegistrationID: reg.ID,
			ActivityID:     reg.ActivityID,
			UserName:       reg.UserName,
			UserEmail:      reg.UserEmail,
			TicketQuantity: reg.TicketQuantity,
		})
		if err != nil {
			h.logger.Warn("enqueue confirmation failed", zap.Error(err), zap.Int64("registration_id", reg.ID))
		}
	}
	if h.notifier != nil {
		h.notifier.Notify(ctx, reg.ActivityID, realtime.EventRegistrationCreated, reg)
	}
	response.Success(c, "Registration successful")
}

// List handles GET /api/registrations. Query ?activity_id=N narrows to one activity.
func (h *Handler) List(c *gin.Context) {
	var activityID *int64
	if raw, ok := c.GetQuery("activity_id"); ok {
		id, err := validation.ParseID(raw)
		if err != nil {
			response.BadRequest(c, "invalid activity id")
			return
		}
		activityID = &id
	}
	list, err := h.store.List(c.Request.Context(), activityID)
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err))
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, list)
}

// Delete handles DELETE /api/registrations/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	activityID, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("delete registration failed", zap.Error(err), zap.Int64("registration_id", id))
		response.Internal(c, "failed to delete registration")
		return
	}
	if h.notifier != nil {
		h.notifier.Notify(c.Request.Context(), activityID, realtime.EventRegistrationDeleted, gin.H{"id": id, "activity_id": activityID})
	}
	response.Success(c, "Registration deleted successfully")
}
