package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/queue"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []queue.EmailPayload
	err  error
	hold chan struct{}
}

func (q *fakeQueue) EnqueueEmail(ctx context.Context, p queue.EmailPayload) error {
	if q.hold != nil {
		select {
		case <-q.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, p)
	return q.err
}

type fakePusher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePusher) Push(_ uuid.UUID, event string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return errors.New("no connection")
}

func client() models.Profile {
	return models.Profile{ID: uuid.New(), Email: "ana@example.com", FullName: "Ana", Role: models.RoleClient}
}

func TestEventConfirmationEnqueuesEmailAndPush(t *testing.T) {
	q := &fakeQueue{}
	p := &fakePusher{}
	d := NewDispatcher(q, p, time.Second, nil)

	d.EventConfirmation(client(), models.Event{Title: "Gala", EventDate: models.MustDate("2025-06-01")})
	d.Wait()

	require.Len(t, q.jobs, 1)
	assert.Equal(t, TemplateEventConfirmation, q.jobs[0].Template)
	assert.Equal(t, "ana@example.com", q.jobs[0].RecipientEmail)
	assert.Contains(t, q.jobs[0].Body, "2025-06-01")
	assert.Equal(t, []string{EventCreated}, p.events)
}

func TestDispatchDoesNotBlockCaller(t *testing.T) {
	q := &fakeQueue{hold: make(chan struct{})}
	d := NewDispatcher(q, nil, time.Second, nil)

	done := make(chan struct{})
	go func() {
		d.ApprovalNotice(client())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ApprovalNotice blocked on the queue")
	}
	close(q.hold)
	d.Wait()
	assert.Len(t, q.jobs, 1)
}

func TestFailuresAreSwallowed(t *testing.T) {
	q := &fakeQueue{err: errors.New("redis down")}
	d := NewDispatcher(q, &fakePusher{}, 50*time.Millisecond, nil)
	assert.NotPanics(t, func() {
		d.ApprovalNotice(client())
		d.Push(uuid.New(), EventApproved, nil)
		d.Wait()
	})
}

func TestEmailSkippedWithoutAddress(t *testing.T) {
	q := &fakeQueue{}
	d := NewDispatcher(q, nil, time.Second, nil)
	p := client()
	p.Email = ""
	d.ApprovalNotice(p)
	d.Wait()
	assert.Empty(t, q.jobs)
}
