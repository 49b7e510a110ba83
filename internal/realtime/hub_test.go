package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopback is an in-process Publisher and Subscriber.
type loopback struct {
	handlers  map[uuid.UUID]func(event string, payload []byte)
	published int
	cancelled int
}

func newLoopback() *loopback {
	return &loopback{handlers: map[uuid.UUID]func(string, []byte){}}
}

func (l *loopback) PublishUserEvent(userID uuid.UUID, event string, payload []byte) error {
	l.published++
	if h, ok := l.handlers[userID]; ok {
		h(event, payload)
	}
	return nil
}

func (l *loopback) SubscribeUser(userID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	l.handlers[userID] = handler
	return func() {
		l.cancelled++
		delete(l.handlers, userID)
	}, nil
}

func newTestClient(h *Hub, userID uuid.UUID) *Client {
	return &Client{ID: uuid.NewString(), UserID: userID, hub: h, send: make(chan WSMessage, 4)}
}

func TestPushDeliversOnlyToTargetUser(t *testing.T) {
	h := NewHub(nil, nil, nil)
	alice, bob := uuid.New(), uuid.New()
	ca, cb := newTestClient(h, alice), newTestClient(h, bob)
	h.Register(ca)
	h.Register(cb)

	require.NoError(t, h.Push(alice, "event_approved", map[string]string{"title": "Gala"}))

	require.Len(t, ca.send, 1)
	assert.Empty(t, cb.send)
	msg := <-ca.send
	assert.Equal(t, "event_approved", msg.Event)
	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &body))
	assert.Equal(t, "Gala", body["title"])
}

func TestPushThroughRedisDeliversOnce(t *testing.T) {
	lb := newLoopback()
	h := NewHub(nil, lb, lb)
	user := uuid.New()
	c1, c2 := newTestClient(h, user), newTestClient(h, user)
	h.Register(c1)
	h.Register(c2)
	assert.Equal(t, 2, h.Connections(user))

	require.NoError(t, h.Push(user, "ping", nil))
	assert.Equal(t, 1, lb.published)
	assert.Len(t, c1.send, 1)
	assert.Len(t, c2.send, 1)

	h.Unregister(c1)
	assert.Equal(t, 0, lb.cancelled)
	h.Unregister(c2)
	assert.Equal(t, 1, lb.cancelled)
	assert.Equal(t, 0, h.Connections(user))
}

func TestDeliverSkipsFullBuffer(t *testing.T) {
	h := NewHub(nil, nil, nil)
	user := uuid.New()
	c := newTestClient(h, user)
	h.Register(c)
	for i := 0; i < cap(c.send)+2; i++ {
		h.Deliver(user, "n", i)
	}
	assert.Len(t, c.send, cap(c.send))
}
