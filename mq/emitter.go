// Package mq fans storage events out to every instance over Redis pub/sub,
// standing in for the browser's cross-tab storage event.
package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"calufestas/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const Channel = "cart-storage-events"

type Emitter struct {
	conn    *redis.Client
	channel string
	log     *zap.Logger
}

func NewEmitter(conn *redis.Client, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{conn: conn, channel: Channel, log: log}
}

// Publish sends ev to every subscribed instance.
func (e *Emitter) Publish(ctx context.Context, ev storage.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal storage event: %w", err)
	}
	if err := e.conn.Publish(ctx, e.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.channel, err)
	}
	e.log.Debug("storage event published", zap.String("key", ev.Key))
	return nil
}

// Listen delivers events until ctx is done. ready, if set, is closed once
// the subscription is active.
func (e *Emitter) Listen(ctx context.Context, ready chan<- struct{}, handle func(context.Context, storage.Event)) error {
	sub := e.conn.Subscribe(ctx, e.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", e.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	e.log.Info("listening for storage events", zap.String("channel", e.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev storage.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				e.log.Warn("failed to parse storage event", zap.Error(err))
				continue
			}
			handle(ctx, ev)
		}
	}
}
