package changefeed

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when publishing to or subscribing on a closed hub.
var ErrClosed = errors.New("changefeed: closed")

// Hub is an in-process Feed. Events are delivered synchronously on the
// publisher's goroutine, after the hub lock is released.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*hubSubscription
	closed bool
}

type hubSubscription struct {
	hub   *Hub
	id    int
	table string
	mask  Mask
	fn    Handler
	once  sync.Once
}

// NewHub creates an empty in-process feed.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*hubSubscription)}
}

var _ Feed = (*Hub)(nil)

// Publish delivers ev to every matching subscriber.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrClosed
	}
	targets := make([]*hubSubscription, 0, len(h.subs))
	for _, s := range h.subs {
		if s.table == ev.Table && s.mask.Has(ev.Op) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.fn(ev)
	}
	return nil
}

// Subscribe registers fn for table.
func (h *Hub) Subscribe(_ context.Context, table string, mask Mask, fn Handler) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	h.nextID++
	s := &hubSubscription{hub: h, id: h.nextID, table: table, mask: mask, fn: fn}
	h.subs[s.id] = s
	return s, nil
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops all subscriptions and rejects further use.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.subs = make(map[int]*hubSubscription)
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
	})
}
