package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/memstore"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/mailer"
	"github.com/eventhub/backend/pkg/queue"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(m mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []*queue.Job
	cancel  context.CancelFunc
}

func (q *fakeQueue) Dequeue(ctx context.Context, key string) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		q.cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, nil
}

func (q *fakeQueue) Retry(_ context.Context, key string, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	q.retried = append(q.retried, job)
	return nil
}

func emailJob(t *testing.T, to string) *queue.Job {
	t.Helper()
	job, err := queue.NewJob(queue.JobTypeEmail, queue.EmailPayload{
		Template:       "approval_notice",
		RecipientID:    uuid.New(),
		RecipientEmail: to,
		RecipientName:  "Ann",
		Subject:        "Your account has been approved",
		Body:           "Hello Ann",
	})
	require.NoError(t, err)
	return job
}

func TestProcessSendsEmail(t *testing.T) {
	s := &fakeSender{}
	p := NewEmailProcessor(s, nil, nil, nil)

	require.NoError(t, p.Process(context.Background(), emailJob(t, "ann@test")))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "ann@test", s.sent[0].To)
	assert.Equal(t, "Ann", s.sent[0].ToName)
	assert.Equal(t, "Your account has been approved", s.sent[0].Subject)
}

func TestProcessRejectsUnknownJob(t *testing.T) {
	p := NewEmailProcessor(&fakeSender{}, nil, nil, nil)
	err := p.Process(context.Background(), &queue.Job{ID: "1", Type: "thumbnail"})
	assert.ErrorContains(t, err, "unknown job type")
}

func TestProcessDropsJobWithoutRecipient(t *testing.T) {
	s := &fakeSender{}
	p := NewEmailProcessor(s, nil, nil, nil)
	assert.NoError(t, p.Process(context.Background(), emailJob(t, "")))
	assert.Empty(t, s.sent)
}

func TestRunRetriesFailedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := memstore.New()
	s := &fakeSender{err: errors.New("relay down")}
	q := &fakeQueue{jobs: []*queue.Job{emailJob(t, "ann@test")}, cancel: cancel}
	p := NewEmailProcessor(s, q, st, nil)
	p.backoff = time.Millisecond

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	require.Len(t, q.retried, 1)
	assert.Equal(t, 1, q.retried[0].Attempt)

	logs, err := st.ListEmailLogs(context.Background(), models.EmailLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.EmailFailed, logs[0].Status)
	assert.Equal(t, 0, logs[0].Attempt)
	assert.Equal(t, "relay down", logs[0].ErrorMessage)
}

func TestRunDeliversQueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := memstore.New()
	s := &fakeSender{}
	q := &fakeQueue{jobs: []*queue.Job{emailJob(t, "a@test"), emailJob(t, "b@test")}, cancel: cancel}
	p := NewEmailProcessor(s, q, st, nil)

	p.Run(ctx)
	require.Len(t, s.sent, 2)
	assert.Equal(t, "b@test", s.sent[1].To)
	assert.Empty(t, q.retried)

	sent := models.EmailSent
	logs, err := st.ListEmailLogs(context.Background(), models.EmailLogFilter{Status: &sent})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
