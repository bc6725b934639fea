// Package notifications fans board change events out to WebSocket clients
// through Redis pub/sub, so every API instance sees every event.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"boardapi/internal/cache"
	"boardapi/internal/middleware"
	"boardapi/internal/models"
	"boardapi/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes board events to Redis and subscribes to them.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every call into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishBoardEvent encodes ev and publishes it on the board events channel.
func (n *Notifier) PublishBoardEvent(ctx context.Context, ev models.BoardEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal board event: %w", err)
	}
	if err := n.rdb.Publish(ctx, cache.BoardEventsChannel, payload).Err(); err != nil {
		return err
	}
	observability.BoardEventsPublished.WithLabelValues(ev.Type).Inc()
	return nil
}

// StartBoardSubscriber subscribes to the board events channel and calls
// onMessage for every payload until ctx is cancelled. The subscription is
// confirmed before it returns.
func (n *Notifier) StartBoardSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, cache.BoardEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", cache.BoardEventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in board subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
