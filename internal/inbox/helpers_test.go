package inbox

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentumgaming/backend/internal/model"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeScheduler is a manual clock. Timers fire only from Advance, on the
// calling goroutine.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: t0}
}

func (s *fakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fireAnyway runs the callback even if the timer was stopped, like a
// time.AfterFunc that had already started when Stop was called.
func (t *fakeTimer) fireAnyway() {
	t.fn()
}

// Advance moves the clock and runs every timer that came due, oldest
// deadline first.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && !t.at.After(s.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

// Active counts timers that are neither stopped nor fired.
func (s *fakeScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// timer returns the i-th timer ever scheduled.
func (s *fakeScheduler) timer(i int) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[i]
}

type stubSubscription struct {
	calls atomic.Int32
}

func (s *stubSubscription) Unsubscribe() {
	s.calls.Add(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sub(id string, at time.Time, status model.SubmissionStatus) *model.Submission {
	return &model.Submission{
		ID:        id,
		CreatedAt: at,
		Name:      "Sender " + id,
		Email:     "sender" + id + "@example.com",
		Subject:   "Subject " + id,
		Message:   "message " + id,
		Status:    status,
	}
}

func ids(items []model.Submission) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = append(out, s.ID)
	}
	return out
}
