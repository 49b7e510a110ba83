// Package notify dispatches fire-and-forget notifications: emails through the
// job queue and in-app pushes through the realtime hub.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/queue"
)

// Push event names.
const (
	EventCreated          = "event_created"
	EventApproved         = "event_approved"
	EventStatusChanged    = "event_status_changed"
	EventManagerAssigned  = "event_manager_assigned"
	ModificationProposed  = "modification_proposed"
	ModificationResolved  = "modification_resolved"
	SponsorshipOffered    = "sponsorship_offered"
	SponsorshipAnswered   = "sponsorship_answered"
	AssignmentCreated     = "assignment_created"
	AssignmentAnswered    = "assignment_answered"
	MasterRequestReviewed = "master_request_reviewed"
	VerificationChanged   = "verification_changed"
)

// Email templates understood by the worker.
const (
	TemplateEventConfirmation = "event_confirmation"
	TemplateApprovalNotice    = "approval_notice"
)

// Notifier sends best-effort notifications. Implementations must not block
// the caller and never report failures back.
type Notifier interface {
	EventConfirmation(recipient models.Profile, event models.Event)
	ApprovalNotice(recipient models.Profile)
	Push(userID uuid.UUID, event string, payload any)
}

// EmailQueue accepts email jobs.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Pusher delivers in-app notifications.
type Pusher interface {
	Push(userID uuid.UUID, event string, payload interface{}) error
}

// Dispatcher runs every send on its own goroutine bounded by a timeout.
type Dispatcher struct {
	emails  EmailQueue
	pusher  Pusher
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Either channel may be nil to disable it.
func NewDispatcher(emails EmailQueue, pusher Pusher, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{emails: emails, pusher: pusher, timeout: timeout, logger: logger}
}

// EventConfirmation emails the client a summary of the event they requested.
func (d *Dispatcher) EventConfirmation(recipient models.Profile, event models.Event) {
	d.email(queue.EmailPayload{
		Template:       TemplateEventConfirmation,
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
		RecipientName:  recipient.FullName,
		Subject:        "We received your event request: " + event.Title,
		Body: fmt.Sprintf("Hello %s,\n\nYour event %q on %s is now under consideration. "+
			"We will let you know once a manager approves it.\n", recipient.FullName, event.Title, event.EventDate),
	})
	d.Push(recipient.ID, EventCreated, event)
}

// ApprovalNotice emails a user that their account was verified.
func (d *Dispatcher) ApprovalNotice(recipient models.Profile) {
	d.email(queue.EmailPayload{
		Template:       TemplateApprovalNotice,
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
		RecipientName:  recipient.FullName,
		Subject:        "Your account has been approved",
		Body:           fmt.Sprintf("Hello %s,\n\nYour account has been verified. You can now sign in and start working.\n", recipient.FullName),
	})
}

// Push sends an in-app notification.
func (d *Dispatcher) Push(userID uuid.UUID, event string, payload any) {
	if d.pusher == nil {
		return
	}
	d.dispatch(event, func(context.Context) error {
		return d.pusher.Push(userID, event, payload)
	})
}

func (d *Dispatcher) email(p queue.EmailPayload) {
	if d.emails == nil {
		d.logger.Debug("email disabled, dropping", zap.String("template", p.Template), zap.String("to", p.RecipientEmail))
		return
	}
	if p.RecipientEmail == "" {
		d.logger.Warn("email skipped: recipient has no address", zap.String("template", p.Template), zap.String("user_id", p.RecipientID.String()))
		return
	}
	d.dispatch(p.Template, func(ctx context.Context) error {
		return d.emails.EnqueueEmail(ctx, p)
	})
}

func (d *Dispatcher) dispatch(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification panicked", zap.String("notification", name), zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			d.logger.Warn("notification failed", zap.String("notification", name), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight notifications finish. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Nop discards every notification.
type Nop struct{}

func (Nop) EventConfirmation(models.Profile, models.Event) {}
func (Nop) ApprovalNotice(models.Profile)                  {}
func (Nop) Push(uuid.UUID, string, any)                    {}
