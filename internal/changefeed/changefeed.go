// Package changefeed carries row-change notifications for store tables to
// interested subscribers. Backends: an in-process hub, Redis pub/sub and
// PostgreSQL LISTEN/NOTIFY.
package changefeed

import (
	"context"
	"time"
)

// Op is the kind of change an Event describes.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
	// OpResync is emitted by a backend after it reconnected and may have
	// missed events. Every subscriber receives it regardless of mask.
	OpResync Op = "RESYNC"
)

// Mask selects which operations a subscriber is interested in.
type Mask uint8

const (
	Insert Mask = 1 << iota
	Update
	Delete

	All = Insert | Update | Delete
)

// Has reports whether op passes the mask.
func (m Mask) Has(op Op) bool {
	switch op {
	case OpInsert:
		return m&Insert != 0
	case OpUpdate:
		return m&Update != 0
	case OpDelete:
		return m&Delete != 0
	case OpResync:
		return true
	}
	return false
}

// Event is a single row change.
type Event struct {
	Table string    `json:"table"`
	Op    Op        `json:"op"`
	ID    string    `json:"id,omitempty"`
	At    time.Time `json:"at"`
}

// Handler receives events. Handlers must not block; they may be invoked from
// the publishing goroutine.
type Handler func(Event)

// Subscription is a live registration. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Feed publishes and delivers change events.
type Feed interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe registers fn for events on table whose Op passes mask.
	// ctx bounds the setup only; the subscription lives until Unsubscribe.
	Subscribe(ctx context.Context, table string, mask Mask, fn Handler) (Subscription, error)
}
