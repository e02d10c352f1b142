package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisFeed fans events out through Redis PUBLISH/SUBSCRIBE so that every
// server instance sees writes made by the others. Subscribers of a table
// share one pub/sub connection.
type RedisFeed struct {
	client *redis.Client
	fan    *fanout
}

// NewRedis wraps an existing client. The caller owns the client.
func NewRedis(client *redis.Client) *RedisFeed {
	f := &RedisFeed{client: client}
	f.fan = newFanout(f.listenTable)
	return f
}

var _ Feed = (*RedisFeed)(nil)

func redisChannel(table string) string {
	return "changes:" + table
}

// Publish sends ev on the table's channel.
func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("changefeed: marshal event: %w", err)
	}
	if err := f.client.Publish(ctx, redisChannel(ev.Table), payload).Err(); err != nil {
		return fmt.Errorf("changefeed: redis publish: %w", err)
	}
	return nil
}

// Subscribe registers fn on the table's shared pub/sub connection.
func (f *RedisFeed) Subscribe(ctx context.Context, table string, mask Mask, fn Handler) (Subscription, error) {
	return f.fan.subscribe(ctx, table, mask, fn)
}

func (f *RedisFeed) listenTable(ctx context.Context, table string, deliver Handler) (func(), error) {
	ps := f.client.Subscribe(ctx, redisChannel(table))
	// Wait for the subscription confirmation so no event published after
	// Subscribe returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("changefeed: redis subscribe: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("changefeed: dropping malformed redis event", "channel", msg.Channel, "error", err)
				continue
			}
			deliver(ev)
		}
	}()
	return func() {
		_ = ps.Close()
		<-done
	}, nil
}
