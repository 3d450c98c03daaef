package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polyhx/hackatown-backend/internal/emaillogs"
	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/pkg/queue"
)

// JobQueue is the job source the processor drains.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) (bool, error)
}

// LogStore tracks delivery state of email logs.
type LogStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmailLog, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, final bool) error
}

// Deliverer sends one message.
type Deliverer interface {
	Deliver(ctx context.Context, el *models.EmailLog) error
}

// DeliveryProcessor processes email jobs: load the log, deliver it, record the outcome.
type DeliveryProcessor struct {
	logs    LogStore
	sender  Deliverer
	queue   JobQueue
	backoff time.Duration
	logger  *zap.Logger
}

// NewDeliveryProcessor creates an email delivery processor.
func NewDeliveryProcessor(logs LogStore, sender Deliverer, q JobQueue, logger *zap.Logger) *DeliveryProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryProcessor{logs: logs, sender: sender, queue: q, backoff: queue.RetryBackoff, logger: logger}
}

func decodePayload(job *queue.Job) (queue.EmailPayload, error) {
	var payload queue.EmailPayload
	if job.Type != queue.JobTypeEmail {
		return payload, fmt.Errorf("unknown job type: %s", job.Type)
	}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal payload: %w", err)
	}
	return payload, nil
}

// Process executes one email job. Jobs pointing at missing or already sent logs are dropped.
func (p *DeliveryProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := decodePayload(job)
	if err != nil {
		return err
	}
	el, err := p.logs.GetByID(ctx, payload.EmailLogID)
	if errors.Is(err, emaillogs.ErrNotFound) {
		p.logger.Warn("email log not found, dropping job", zap.String("job_id", job.ID), zap.String("email_log_id", payload.EmailLogID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load email log: %w", err)
	}
	if el.Status == models.EmailLogStatusSent {
		p.logger.Info("email already sent", zap.String("email_log_id", el.ID.String()))
		return nil
	}

	if err := p.sender.Deliver(ctx, el); err != nil {
		return err
	}
	if err := p.logs.MarkSent(ctx, el.ID); err != nil {
		p.logger.Error("mark email sent failed", zap.Error(err), zap.String("email_log_id", el.ID.String()))
		return nil
	}
	p.logger.Info("email delivered", zap.String("email_log_id", el.ID.String()), zap.Int("recipients", len(el.Recipients)))
	return nil
}

// fail records a failed attempt and schedules a retry, or dead-letters the job after MaxRetries.
func (p *DeliveryProcessor) fail(ctx context.Context, job *queue.Job, cause error) {
	payload, decodeErr := decodePayload(job)
	dead, err := p.queue.Retry(ctx, job)
	if err != nil {
		p.logger.Error("retry enqueue failed", zap.Error(err), zap.String("job_id", job.ID))
	}
	if decodeErr != nil {
		return
	}
	if err := p.logs.MarkFailed(ctx, payload.EmailLogID, cause.Error(), dead); err != nil && !errors.Is(err, emaillogs.ErrNotFound) {
		p.logger.Error("mark email failed failed", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
	}
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is done.
func (p *DeliveryProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.wait(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.Int("attempt", job.Attempt))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			p.fail(ctx, job, err)
			p.wait(ctx)
		}
	}
}

func (p *DeliveryProcessor) wait(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
