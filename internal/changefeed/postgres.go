package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reconnectDelay is how long a listener waits before re-acquiring a
// connection after the previous one failed.
const reconnectDelay = time.Second

// PostgresFeed uses pg_notify / LISTEN. All subscribers of a table share
// one pooled LISTEN connection, held while the table has subscribers.
type PostgresFeed struct {
	pool *pgxpool.Pool
	fan  *fanout
}

// NewPostgres creates a feed on pool. The caller owns the pool.
func NewPostgres(pool *pgxpool.Pool) *PostgresFeed {
	f := &PostgresFeed{pool: pool}
	f.fan = newFanout(f.listenTable)
	return f
}

var _ Feed = (*PostgresFeed)(nil)

func pgChannel(table string) string {
	return "changes_" + table
}

// Publish sends ev with pg_notify.
func (f *PostgresFeed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("changefeed: marshal event: %w", err)
	}
	if _, err := f.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, pgChannel(ev.Table), string(payload)); err != nil {
		return fmt.Errorf("changefeed: pg_notify: %w", err)
	}
	return nil
}

// Subscribe registers fn on the table's shared listener. The first
// subscriber's LISTEN happens before Subscribe returns; later reconnects
// emit an OpResync event.
func (f *PostgresFeed) Subscribe(ctx context.Context, table string, mask Mask, fn Handler) (Subscription, error) {
	return f.fan.subscribe(ctx, table, mask, fn)
}

// listenTable runs the LISTEN loop for table until stop is called.
func (f *PostgresFeed) listenTable(ctx context.Context, table string, deliver Handler) (func(), error) {
	channel := pgChannel(table)
	conn, err := f.listen(ctx, channel)
	if err != nil {
		return nil, err
	}

	lctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			f.drain(lctx, conn, table, deliver)
			if lctx.Err() != nil {
				return
			}
			// The connection broke; wait and listen again.
			for {
				select {
				case <-lctx.Done():
					return
				case <-time.After(reconnectDelay):
				}
				conn, err = f.listen(lctx, channel)
				if err == nil {
					break
				}
				slog.Warn("changefeed: relisten failed", "channel", channel, "error", err)
			}
			deliver(Event{Table: table, Op: OpResync, At: time.Now().UTC()})
		}
	}()
	return func() {
		cancel()
		<-done
	}, nil
}

func (f *PostgresFeed) listen(ctx context.Context, channel string) (*pgxpool.Conn, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("changefeed: acquire listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("changefeed: listen %s: %w", channel, err)
	}
	return conn, nil
}

// drain delivers notifications until ctx is cancelled or the connection
// fails, then releases the connection.
func (f *PostgresFeed) drain(ctx context.Context, conn *pgxpool.Conn, table string, deliver Handler) {
	defer func() {
		if !conn.Conn().IsClosed() {
			_, _ = conn.Exec(context.Background(), "UNLISTEN *")
		}
		conn.Release()
	}()
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("changefeed: listener connection lost", "table", table, "error", err)
			}
			return
		}
		var ev Event
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			slog.Warn("changefeed: dropping malformed notification", "channel", n.Channel, "error", err)
			continue
		}
		deliver(ev)
	}
}
