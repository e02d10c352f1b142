package inbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/momentumgaming/backend/internal/changefeed"
)

// UnreadBadge keeps the unread count in step with the change feed. Every
// change triggers a fresh count; bursts of changes are coalesced so that at
// most one count is queued behind the one in flight.
type UnreadBadge struct {
	src  UnreadSource
	opts options

	// countMu serializes count queries so results apply in start order.
	countMu sync.Mutex

	mu        sync.Mutex
	count     int64
	known     bool
	listeners map[int]func(int64)
	nextID    int
	active    bool
	sub       changefeed.Subscription
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewUnreadBadge creates an inactive badge.
func NewUnreadBadge(src UnreadSource, opts ...Option) *UnreadBadge {
	return newUnreadBadge(src, buildOptions(opts))
}

func newUnreadBadge(src UnreadSource, o options) *UnreadBadge {
	return &UnreadBadge{src: src, opts: o, listeners: make(map[int]func(int64))}
}

// Activate subscribes to submission changes and loads the first count.
// Calling it on an active badge does nothing. A subscription failure is
// returned, but the badge still holds the initial count.
func (b *UnreadBadge) Activate(ctx context.Context) error {
	b.mu.Lock()
	if b.active {
		b.mu.Unlock()
		return nil
	}
	b.active = true
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	signal := make(chan struct{}, 1)
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done
	b.mu.Unlock()

	go b.worker(wctx, signal, done)

	poke := func(changefeed.Event) {
		select {
		case signal <- struct{}{}:
		default:
		}
	}
	sub, subErr := b.src.Subscribe(ctx, changefeed.All, poke)
	if subErr != nil {
		b.opts.logger.Warn("inbox: unread subscription failed", "error", subErr)
	} else {
		b.mu.Lock()
		keep := b.active && b.done == done
		if keep {
			b.sub = sub
		}
		b.mu.Unlock()
		if !keep {
			// deactivated while subscribing
			b.src.Unsubscribe(sub)
		}
	}

	b.recount(ctx)
	if subErr != nil {
		return fmt.Errorf("subscribe to unread changes: %w", subErr)
	}
	return nil
}

func (b *UnreadBadge) worker(ctx context.Context, signal <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-signal:
			qctx, cancel := b.opts.detached(ctx)
			b.recount(qctx)
			cancel()
		}
	}
}

// recount queries the count and publishes it. On failure the previous
// value is kept.
func (b *UnreadBadge) recount(ctx context.Context) {
	b.countMu.Lock()
	defer b.countMu.Unlock()

	n, err := b.src.CountUnread(ctx)
	if err != nil {
		b.opts.logger.Warn("inbox: count unread failed", "error", err)
		return
	}

	b.mu.Lock()
	changed := !b.known || b.count != n
	b.count = n
	b.known = true
	var notify []func(int64)
	if changed {
		notify = make([]func(int64), 0, len(b.listeners))
		for _, fn := range b.listeners {
			notify = append(notify, fn)
		}
	}
	b.mu.Unlock()

	b.opts.metrics.SetUnread(int(n))
	for _, fn := range notify {
		fn(n)
	}
}

// Count returns the last computed count and whether one has been computed.
func (b *UnreadBadge) Count() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count, b.known
}

// OnChange registers fn for every new count. The returned function
// removes it.
func (b *UnreadBadge) OnChange(fn func(int64)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Deactivate releases the subscription and stops the worker. It is safe
// to call more than once.
func (b *UnreadBadge) Deactivate() {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return
	}
	b.active = false
	sub, cancel, done := b.sub, b.cancel, b.done
	b.sub, b.cancel, b.done = nil, nil, nil
	b.mu.Unlock()

	if sub != nil {
		b.src.Unsubscribe(sub)
	}
	cancel()
	<-done
}
