package changefeed

import (
	"context"
	"sync"
)

// upstreamFunc starts one backend listener for table that hands every event
// to deliver. stop ends it and waits for it to finish.
type upstreamFunc func(ctx context.Context, table string, deliver Handler) (stop func(), err error)

// fanout shares one backend listener per table among all subscribers and
// delivers through an in-process Hub. The listener closes with its last
// subscriber.
type fanout struct {
	open upstreamFunc
	hub  *Hub

	mu     sync.Mutex
	tables map[string]*sharedListener
}

type sharedListener struct {
	refs int
	stop func()
}

func newFanout(open upstreamFunc) *fanout {
	return &fanout{open: open, hub: NewHub(), tables: make(map[string]*sharedListener)}
}

func (f *fanout) subscribe(ctx context.Context, table string, mask Mask, fn Handler) (Subscription, error) {
	f.mu.Lock()
	l, ok := f.tables[table]
	if !ok {
		stop, err := f.open(ctx, table, func(ev Event) {
			ev.Table = table
			_ = f.hub.Publish(context.Background(), ev)
		})
		if err != nil {
			f.mu.Unlock()
			return nil, err
		}
		l = &sharedListener{stop: stop}
		f.tables[table] = l
	}
	l.refs++
	hs, err := f.hub.Subscribe(ctx, table, mask, fn)
	f.mu.Unlock()
	if err != nil {
		f.release(table, l)
		return nil, err
	}
	return &fanoutSubscription{f: f, table: table, l: l, hs: hs}, nil
}

func (f *fanout) release(table string, l *sharedListener) {
	f.mu.Lock()
	l.refs--
	last := l.refs == 0
	if last && f.tables[table] == l {
		delete(f.tables, table)
	}
	f.mu.Unlock()

	if last {
		l.stop()
	}
}

// listeners reports how many backend listeners are open.
func (f *fanout) listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables)
}

type fanoutSubscription struct {
	f     *fanout
	table string
	l     *sharedListener
	hs    Subscription
	once  sync.Once
}

func (s *fanoutSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.hs.Unsubscribe()
		s.f.release(s.table, s.l)
	})
}
