package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "notify:user:"
	publishTimeout = 5 * time.Second
)

// envelope is a WSMessage plus the publish time, as carried on Redis.
type envelope struct {
	WSMessage
	SentAt time.Time `json:"sent_at"`
}

// RedisPubSub fans user notifications out across instances. One pattern
// subscription per instance serves every locally connected user; incoming
// messages are routed by the user id in the channel name.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[uuid.UUID]func(event string, payload []byte)

	startOnce sync.Once
	startErr  error
	stop      context.CancelFunc
	done      chan struct{}
}

// NewRedisPubSub creates the bridge. The subscription starts with the first
// SubscribeUser call.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{
		client:   client,
		logger:   logger.Named("pubsub"),
		handlers: make(map[uuid.UUID]func(string, []byte)),
	}
}

func userChannel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

func channelUser(channel string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	return id, err == nil
}

// PublishUserEvent publishes a notification on the user's channel.
func (r *RedisPubSub) PublishUserEvent(userID uuid.UUID, event string, payload []byte) error {
	body, err := json.Marshal(envelope{WSMessage: WSMessage{Event: event, Data: payload}, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, userChannel(userID), body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// SubscribeUser routes the user's notifications to handler until cancel is called.
// A later call for the same user replaces the handler.
func (r *RedisPubSub) SubscribeUser(userID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error) {
	if err := r.start(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.handlers[userID] = handler
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.handlers, userID)
		r.mu.Unlock()
	}, nil
}

func (r *RedisPubSub) start() error {
	r.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		ps := r.client.PSubscribe(ctx, channelPrefix+"*")
		if _, err := ps.Receive(ctx); err != nil {
			cancel()
			_ = ps.Close()
			r.startErr = fmt.Errorf("psubscribe %s*: %w", channelPrefix, err)
			return
		}
		r.stop = cancel
		r.done = make(chan struct{})
		go r.listen(ctx, ps)
	})
	return r.startErr
}

func (r *RedisPubSub) listen(ctx context.Context, ps *redis.PubSub) {
	defer close(r.done)
	defer ps.Close()
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.dispatch(msg.Channel, msg.Payload)
		}
	}
}

// dispatch hands one Redis message to the handler of the user it targets.
// Messages for users without a local connection are dropped.
func (r *RedisPubSub) dispatch(channel, payload string) {
	userID, ok := channelUser(channel)
	if !ok {
		r.logger.Warn("unexpected channel", zap.String("channel", channel))
		return
	}
	r.mu.RLock()
	handler := r.handlers[userID]
	r.mu.RUnlock()
	if handler == nil {
		return
	}
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.logger.Warn("invalid notification payload", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	r.logger.Debug("notification received",
		zap.String("user_id", userID.String()),
		zap.String("event", env.Event),
		zap.Duration("lag", time.Since(env.SentAt)))
	handler(env.Event, env.Data)
}

// Close stops the subscription and waits for the listener to exit.
func (r *RedisPubSub) Close() {
	if r.stop == nil {
		return
	}
	r.stop()
	<-r.done
}
