package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/mailer"
	"github.com/eventhub/backend/pkg/queue"
)

// JobQueue is the part of the queue the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context, key string) (*queue.Job, error)
	Retry(ctx context.Context, key string, job *queue.Job) error
}

// DeliveryLog records the outcome of each send attempt.
type DeliveryLog interface {
	RecordEmail(ctx context.Context, l *models.EmailLog) error
}

// EmailProcessor delivers queued email jobs.
type EmailProcessor struct {
	sender  mailer.Sender
	queue   JobQueue
	log     DeliveryLog
	backoff time.Duration
	logger  *zap.Logger
}

// NewEmailProcessor creates an email processor. log may be nil.
func NewEmailProcessor(sender mailer.Sender, q JobQueue, log DeliveryLog, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{sender: sender, queue: q, log: log, backoff: queue.RetryBackoff, logger: logger}
}

// Process sends one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.RecipientEmail == "" {
		p.logger.Warn("email job without recipient, dropping", zap.String("job_id", job.ID), zap.String("template", payload.Template))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.sender.Send(mailer.Message{
		To:      payload.RecipientEmail,
		ToName:  payload.RecipientName,
		Subject: payload.Subject,
		Body:    payload.Body,
	})
	p.record(ctx, job, payload, err)
	if err != nil {
		return fmt.Errorf("send %s: %w", payload.Template, err)
	}
	p.logger.Info("email job completed",
		zap.String("job_id", job.ID),
		zap.String("template", payload.Template),
		zap.String("recipient_id", payload.RecipientID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, queue.QueueEmails)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
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
			if reErr := p.queue.Retry(context.WithoutCancel(ctx), queue.QueueEmails, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *EmailProcessor) record(ctx context.Context, job *queue.Job, payload queue.EmailPayload, sendErr error) {
	if p.log == nil {
		return
	}
	entry := &models.EmailLog{
		JobID:          job.ID,
		Template:       payload.Template,
		RecipientID:    payload.RecipientID,
		RecipientEmail: payload.RecipientEmail,
		RecipientName:  payload.RecipientName,
		Subject:        payload.Subject,
		Body:           payload.Body,
		Status:         models.EmailSent,
		Attempt:        job.Attempt,
	}
	if sendErr != nil {
		entry.Status = models.EmailFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := p.log.RecordEmail(context.WithoutCancel(ctx), entry); err != nil {
		p.logger.Warn("record email log failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (p *EmailProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
