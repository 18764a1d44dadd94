package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	liveChannel = "charity:live"
	eventTTL    = 5 * time.Second
)

// RedisPubSub implements Publisher and Subscriber using Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for live events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{client: client, logger: logger}
}

// Publish publishes msg to the live channel. The caller's cancellation is ignored
// so an event raised at the end of a request is not lost when the client disconnects.
func (r *RedisPubSub) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTTL)
	defer cancel()
	return r.client.Publish(ctx, liveChannel, body).Err()
}

// Subscribe blocks, calling handler for each message, until ctx is done.
func (r *RedisPubSub) Subscribe(ctx context.Context, handler func(Message)) error {
	pubsub := r.client.Subscribe(ctx, liveChannel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				r.logger.Warn("invalid live payload", zap.Error(err))
				continue
			}
			handler(msg)
		}
	}
}
