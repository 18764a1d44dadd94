package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/activities"
	"github.com/charity-events/backend/internal/mailer"
	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/pkg/queue"
)

// JobSource yields queued jobs and takes failed ones back.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ActivityLookup loads the activity a confirmation refers to.
type ActivityLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
}

// Sender delivers emails.
type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// ConfirmationProcessor processes registration confirmation jobs: load activity, render, send.
type ConfirmationProcessor struct {
	queue      JobSource
	activities ActivityLookup
	mailer     Sender
	logger     *zap.Logger
	backoff    time.Duration
}

// NewConfirmationProcessor creates a confirmation email processor.
func NewConfirmationProcessor(q JobSource, acts ActivityLookup, m Sender, logger *zap.Logger) *ConfirmationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationProcessor{queue: q, activities: acts, mailer: m, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one job.
func (p *ConfirmationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeRegistrationConfirmation {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.RegistrationConfirmationPayload
	if err := job.Decode(&payload); err != nil {
		return err
	}

	a, err := p.activities.GetByID(ctx, payload.ActivityID)
	if err != nil {
		if errors.Is(err, activities.ErrNotFound) {
			p.logger.Info("activity gone, skipping confirmation",
				zap.Int64("activity_id", payload.ActivityID),
				zap.Int64("registration_id", payload.RegistrationID))
			return nil
		}
		return fmt.Errorf("load activity: %w", err)
	}

	msg := mailer.RenderConfirmation(payload.UserEmail, payload.UserName, payload.TicketQuantity, a)
	if err := p.mailer.Send(ctx, msg); err != nil {
		return err
	}
	p.logger.Info("confirmation sent", zap.Int64("registration_id", payload.RegistrationID), zap.String("job_id", job.ID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is done.
func (p *ConfirmationProcessor) Run(ctx context.Context) error {
	p.logger.Info("confirmation worker started")
	for {
		if ctx.Err() != nil {
			p.logger.Info("confirmation worker stopping")
			return nil
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ConfirmationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
