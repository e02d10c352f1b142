package inbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/momentumgaming/backend/internal/model"
)

// ErrManagerClosed is returned by Open after Shutdown.
var ErrManagerClosed = errors.New("inbox manager is shut down")

// Manager keeps one inbox per admin session.
type Manager struct {
	store  Store
	unread UnreadSource
	opts   []Option
	o      options

	mu          sync.Mutex
	inboxes     map[string]*Inbox
	closed      bool
	unsubscribe func()
}

// NewManager creates a manager. When sessions is non-nil, an inbox is
// closed as soon as its session ends.
func NewManager(store Store, unread UnreadSource, sessions SessionNotifier, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		unread:  unread,
		opts:    opts,
		o:       buildOptions(opts),
		inboxes: make(map[string]*Inbox),
	}
	if sessions != nil {
		m.unsubscribe = sessions.OnSessionChange(m.onSessionChange)
	}
	return m
}

func (m *Manager) onSessionChange(ev model.SessionChange) {
	if !ev.Ended {
		return
	}
	ctx, cancel := m.o.detached(context.Background())
	defer cancel()
	m.Close(ctx, ev.Token)
}

// Open returns the inbox of a session, creating and starting it on first
// use. A failed initial load is reported on the inbox's alert and logged;
// the inbox is still returned.
func (m *Manager) Open(ctx context.Context, token string) (*Inbox, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	ib, ok := m.inboxes[token]
	if !ok {
		ib = New(m.store, m.unread, m.opts...)
		m.inboxes[token] = ib
		m.o.metrics.InboxOpened()
	}
	m.mu.Unlock()

	if err := ib.Start(ctx); err != nil {
		m.o.logger.Warn("inbox: start incomplete", "error", err)
	}
	ib.touch()
	return ib, nil
}

// Lookup returns the inbox of a session if one is open.
func (m *Manager) Lookup(token string) (*Inbox, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ib, ok := m.inboxes[token]
	return ib, ok
}

// Len reports the number of open inboxes.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inboxes)
}

// Close closes the inbox of a session, committing any waiting deletion.
func (m *Manager) Close(ctx context.Context, token string) {
	m.mu.Lock()
	ib, ok := m.inboxes[token]
	delete(m.inboxes, token)
	m.mu.Unlock()

	if ok {
		ib.Close(ctx)
		m.o.metrics.InboxClosed()
	}
}

// Sweep closes inboxes unused for longer than the idle timeout and returns
// how many it closed. Watched inboxes are kept.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.o.clock().Add(-m.o.idleTimeout)

	m.mu.Lock()
	var idle []*Inbox
	for token, ib := range m.inboxes {
		if ib.idleSince(cutoff) {
			idle = append(idle, ib)
			delete(m.inboxes, token)
		}
	}
	m.mu.Unlock()

	for _, ib := range idle {
		ib.Close(ctx)
		m.o.metrics.InboxClosed()
	}
	if len(idle) > 0 {
		m.o.logger.Info("inbox: closed idle inboxes", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps idle inboxes until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.o.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Shutdown closes every inbox and stops listening for session changes.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	all := m.inboxes
	m.inboxes = make(map[string]*Inbox)
	unsubscribe := m.unsubscribe
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	var wg sync.WaitGroup
	for _, ib := range all {
		wg.Add(1)
		go func(ib *Inbox) {
			defer wg.Done()
			ib.Close(ctx)
			m.o.metrics.InboxClosed()
		}(ib)
	}
	wg.Wait()
}
