// Package notifytest provides a Notifier that records calls for assertions.
package notifytest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
)

// Push is a recorded in-app notification.
type Push struct {
	UserID  uuid.UUID
	Event   string
	Payload any
}

// Recorder implements notify.Notifier synchronously.
type Recorder struct {
	mu            sync.Mutex
	Confirmations []models.Event
	Approvals     []models.Profile
	Pushes        []Push
}

func (r *Recorder) EventConfirmation(_ models.Profile, event models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Confirmations = append(r.Confirmations, event)
}

func (r *Recorder) ApprovalNotice(recipient models.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Approvals = append(r.Approvals, recipient)
}

func (r *Recorder) Push(userID uuid.UUID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pushes = append(r.Pushes, Push{UserID: userID, Event: event, Payload: payload})
}

// PushesTo returns the event names pushed to userID in order.
func (r *Recorder) PushesTo(userID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.Pushes {
		if p.UserID == userID {
			out = append(out, p.Event)
		}
	}
	return out
}
