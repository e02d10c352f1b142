package changefeed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream records backend listeners and lets tests push events into
// them.
type fakeUpstream struct {
	mu      sync.Mutex
	opened  int
	stopped int
	deliver map[string]Handler
	err     error
}

func (u *fakeUpstream) open(_ context.Context, table string, deliver Handler) (func(), error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return nil, u.err
	}
	u.opened++
	u.deliver[table] = deliver
	return func() {
		u.mu.Lock()
		u.stopped++
		delete(u.deliver, table)
		u.mu.Unlock()
	}, nil
}

func (u *fakeUpstream) push(ev Event) {
	u.mu.Lock()
	fn := u.deliver[ev.Table]
	u.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{deliver: make(map[string]Handler)}
}

func TestFanout_SubscribersShareOneListener(t *testing.T) {
	ctx := context.Background()
	up := newFakeUpstream()
	f := newFanout(up.open)

	var mu sync.Mutex
	got := map[string][]Op{}
	record := func(name string) Handler {
		return func(ev Event) {
			mu.Lock()
			got[name] = append(got[name], ev.Op)
			mu.Unlock()
		}
	}

	subs := make([]Subscription, 0, 20)
	for i := 0; i < 20; i++ {
		s, err := f.subscribe(ctx, "contact_submissions", All, func(Event) {})
		require.NoError(t, err)
		subs = append(subs, s)
	}
	inserts, err := f.subscribe(ctx, "contact_submissions", Insert, record("inserts"))
	require.NoError(t, err)
	projects, err := f.subscribe(ctx, "projects", All, record("projects"))
	require.NoError(t, err)

	assert.Equal(t, 2, up.opened, "one listener per table")
	assert.Equal(t, 2, f.listeners())

	up.push(Event{Table: "contact_submissions", Op: OpUpdate})
	up.push(Event{Table: "contact_submissions", Op: OpInsert})
	up.push(Event{Table: "contact_submissions", Op: OpResync})
	mu.Lock()
	assert.Equal(t, []Op{OpInsert, OpResync}, got["inserts"])
	assert.Empty(t, got["projects"])
	mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	assert.Equal(t, 0, up.stopped, "listener stays while a subscriber remains")

	inserts.Unsubscribe()
	inserts.Unsubscribe()
	assert.Equal(t, 1, up.stopped)
	assert.Equal(t, 1, f.listeners())

	projects.Unsubscribe()
	assert.Equal(t, 2, up.stopped)
	assert.Equal(t, 0, f.listeners())

	// a new subscriber opens a fresh listener
	again, err := f.subscribe(ctx, "contact_submissions", All, func(Event) {})
	require.NoError(t, err)
	assert.Equal(t, 3, up.opened)
	again.Unsubscribe()
}

func TestFanout_OpenFailureIsReturned(t *testing.T) {
	up := newFakeUpstream()
	up.err = errors.New("no connection")
	f := newFanout(up.open)

	_, err := f.subscribe(context.Background(), "contact_submissions", All, func(Event) {})
	assert.ErrorContains(t, err, "no connection")
	assert.Equal(t, 0, f.listeners())

	up.mu.Lock()
	up.err = nil
	up.mu.Unlock()
	s, err := f.subscribe(context.Background(), "contact_submissions", All, func(Event) {})
	require.NoError(t, err)
	assert.Equal(t, 1, f.listeners())
	s.Unsubscribe()
}
