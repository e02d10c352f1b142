// Package remotestore is a small table-oriented client over database/sql.
// It performs row CRUD addressed by table name and id, and publishes a
// change event for every write so that subscribers can react to it.
package remotestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/momentumgaming/backend/internal/changefeed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Supported database/sql driver names. The pgx driver is registered here;
// callers using sqlite import modernc.org/sqlite themselves.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// ErrNoFeed is returned by SubscribeToChanges when the client has no feed.
var ErrNoFeed = errors.New("remotestore: no change feed configured")

// Row is the scanning side of a result row.
type Row interface {
	Scan(dest ...any) error
}

// Query describes a Select.
type Query struct {
	Table   string
	Columns []string
	// Where is optional; nil selects every row.
	Where   sq.Sqlizer
	OrderBy []string
	Limit   uint64
}

// Client is the remote store client.
type Client struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	feed    changefeed.Feed
	newID   func() string
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithFeed publishes write events to feed and enables SubscribeToChanges.
func WithFeed(feed changefeed.Feed) Option {
	return func(c *Client) { c.feed = feed }
}

// WithIDGenerator overrides the id assigned on Insert.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

// WithClock overrides the timestamp stamped on change events.
func WithClock(fn func() time.Time) Option {
	return func(c *Client) { c.now = fn }
}

// Open connects to dsn with the named driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Client, error) {
	wrapMsg := "unable to open the remote store"

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if driver == DriverSQLite {
		// In-memory databases exist per connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}
	return New(db, driver, opts...)
}

// New wraps an existing *sql.DB.
func New(db *sql.DB, driver string, opts ...Option) (*Client, error) {
	var format sq.PlaceholderFormat
	switch driver {
	case DriverPostgres:
		format = sq.Dollar
	case DriverSQLite:
		format = sq.Question
	default:
		return nil, fmt.Errorf("remotestore: unsupported driver %q", driver)
	}

	c := &Client{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DB exposes the underlying handle, mainly for schema setup.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (c *Client) Close() error {
	return c.db.Close()
}

// Select runs q and calls each for every row, in order.
func (c *Client) Select(ctx context.Context, q Query, each func(Row) error) error {
	wrapMsg := fmt.Sprintf("unable to select from %s", q.Table)

	builder := c.builder.Select(q.Columns...).From(q.Table)
	if q.Where != nil {
		builder = builder.Where(q.Where)
	}
	if len(q.OrderBy) > 0 {
		builder = builder.OrderBy(q.OrderBy...)
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return errors.Wrap(err, wrapMsg)
		}
	}
	return errors.Wrap(rows.Err(), wrapMsg)
}

// Count returns the number of rows in table matching where (nil = all).
func (c *Client) Count(ctx context.Context, table string, where sq.Sqlizer) (int64, error) {
	wrapMsg := fmt.Sprintf("unable to count rows in %s", table)

	builder := c.builder.Select("count(*)").From(table)
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	var total int64
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	return total, nil
}

// Insert adds a row and returns its id. An "id" entry in values is
// overwritten with a freshly generated one.
func (c *Client) Insert(ctx context.Context, table string, values map[string]any) (string, error) {
	wrapMsg := fmt.Sprintf("unable to insert into %s", table)

	id := c.newID()
	row := make(map[string]any, len(values)+1)
	for k, v := range values {
		row[k] = v
	}
	row["id"] = id

	query, args, err := c.builder.Insert(table).SetMap(row).ToSql()
	if err != nil {
		return "", errors.Wrap(err, wrapMsg)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return "", errors.Wrap(err, wrapMsg)
	}

	c.publish(ctx, table, changefeed.OpInsert, id)
	return id, nil
}

// Update applies patch to the row with the given id and returns the number
// of rows affected.
func (c *Client) Update(ctx context.Context, table, id string, patch map[string]any) (int64, error) {
	wrapMsg := fmt.Sprintf("unable to update %s %s", table, id)

	query, args, err := c.builder.Update(table).SetMap(patch).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	if affected > 0 {
		c.publish(ctx, table, changefeed.OpUpdate, id)
	}
	return affected, nil
}

// Delete removes the row with the given id. Deleting an absent id is not an
// error; it reports zero rows affected.
func (c *Client) Delete(ctx context.Context, table, id string) (int64, error) {
	wrapMsg := fmt.Sprintf("unable to delete %s %s", table, id)

	query, args, err := c.builder.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	if affected > 0 {
		c.publish(ctx, table, changefeed.OpDelete, id)
	}
	return affected, nil
}

// SubscribeToChanges registers fn for changes on table.
func (c *Client) SubscribeToChanges(ctx context.Context, table string, mask changefeed.Mask, fn changefeed.Handler) (changefeed.Subscription, error) {
	if c.feed == nil {
		return nil, ErrNoFeed
	}
	sub, err := c.feed.Subscribe(ctx, table, mask, fn)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to subscribe to %s", table)
	}
	return sub, nil
}

// Unsubscribe releases sub. A nil sub is ignored.
func (c *Client) Unsubscribe(sub changefeed.Subscription) {
	if sub != nil {
		sub.Unsubscribe()
	}
}

// publish reports a committed write. A failure here does not undo the
// write, so it is only logged.
func (c *Client) publish(ctx context.Context, table string, op changefeed.Op, id string) {
	if c.feed == nil {
		return
	}
	ev := changefeed.Event{Table: table, Op: op, ID: id, At: c.now().UTC()}
	if err := c.feed.Publish(ctx, ev); err != nil {
		slog.Warn("remotestore: change event not published", "table", table, "op", op, "id", id, "error", err)
	}
}
