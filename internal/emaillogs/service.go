// Package emaillogs exposes the worker's delivery log to the chief
// coordinator and re-queues failed emails.
package emaillogs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/queue"
)

// MaxListLimit caps a single listing.
const MaxListLimit = 500

var errQueueDisabled = errors.New("email queue is not configured")

// Service reads the delivery log.
type Service struct {
	store  Store
	emails notify.EmailQueue
	logger *zap.Logger
}

// NewService creates an email log service. emails may be nil, which
// disables Resend.
func NewService(store Store, emails notify.EmailQueue, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, emails: emails, logger: logger}
}

// List returns delivery attempts, optionally only those with status.
func (s *Service) List(ctx context.Context, status string, limit int) ([]models.EmailLog, error) {
	f := models.EmailLogFilter{Limit: limit}
	if status != "" {
		st := models.EmailStatus(status)
		if !st.Valid() {
			return nil, apperr.Validation("status must be sent or failed")
		}
		f.Status = &st
	}
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return s.store.ListEmailLogs(ctx, f)
}

// Resend queues a failed email again.
func (s *Service) Resend(ctx context.Context, id uuid.UUID) error {
	l, err := s.store.GetEmailLog(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != models.EmailFailed {
		return apperr.InvalidState("only failed emails can be resent")
	}
	if s.emails == nil {
		return apperr.Upstream(errQueueDisabled)
	}
	err = s.emails.EnqueueEmail(ctx, queue.EmailPayload{
		Template:       l.Template,
		RecipientID:    l.RecipientID,
		RecipientEmail: l.RecipientEmail,
		RecipientName:  l.RecipientName,
		Subject:        l.Subject,
		Body:           l.Body,
	})
	if err != nil {
		return apperr.Upstream(err)
	}
	s.logger.Info("email resend queued", zap.String("log_id", id.String()), zap.String("template", l.Template))
	return nil
}
