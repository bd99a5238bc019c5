package redis

import (
	"context"

	"github.com/finzen-app/finzen-engine/internal/infrastructure/messaging"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUB/SUB ADAPTER
// ══════════════════════════════════════════════════════════════════════════════

// PubSubAdapter adapts the Cache client to the messaging.RedisClient
// interface so the Redis event bus can share events across instances.
type PubSubAdapter struct {
	cache *Cache
}

// NewPubSubAdapter creates a new PubSubAdapter.
func NewPubSubAdapter(cache *Cache) *PubSubAdapter {
	return &PubSubAdapter{cache: cache}
}

// Publish publishes a message to a channel.
func (a *PubSubAdapter) Publish(ctx context.Context, channel string, message interface{}) error {
	return a.cache.Client().Publish(ctx, channel, message).Err()
}

// Subscribe subscribes to channels and bridges messages into the bus.
// The returned channel closes when ctx is cancelled.
func (a *PubSubAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	sub := a.cache.Client().Subscribe(ctx, channels...)

	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan messaging.RedisMessage)
	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- messaging.RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close closes the underlying Redis connection.
func (a *PubSubAdapter) Close() error {
	return a.cache.Close()
}
