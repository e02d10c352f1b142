package inbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/momentumgaming/backend/internal/model"
)

// Filter narrows the list by status.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterNew     Filter = Filter(model.StatusNew)
	FilterRead    Filter = Filter(model.StatusRead)
	FilterReplied Filter = Filter(model.StatusReplied)
)

// ParseFilter accepts "", "all", "new", "read" and "replied".
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterNew, FilterRead, FilterReplied:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

func (f Filter) matches(s *model.Submission) bool {
	return f == FilterAll || f == "" || Filter(s.Status) == f
}

// View is what the admin sees.
type View struct {
	Items           []model.Submission `json:"items"`
	Total           int                `json:"total"`
	Selected        *model.Submission  `json:"selected,omitempty"`
	Filter          Filter             `json:"filter"`
	Search          string             `json:"search"`
	Pending         *PendingDelete     `json:"pending,omitempty"`
	DeleteConfirmed bool               `json:"delete_confirmed"`
	Unread          int64              `json:"unread"`
	UnreadKnown     bool               `json:"unread_known"`
	Alert           *Alert             `json:"alert,omitempty"`
}

// Inbox combines the coordinator, the unread badge and the filter and
// search inputs of one admin.
type Inbox struct {
	coord *Coordinator
	badge *UnreadBadge
	opts  options

	startOnce sync.Once
	startErr  error

	mu       sync.Mutex
	filter   Filter
	search   string
	lastUsed time.Time
	watchers int

	done      chan struct{}
	closeOnce sync.Once
}

// New creates an inbox. Call Start before using it.
func New(store Store, unread UnreadSource, opts ...Option) *Inbox {
	o := buildOptions(opts)
	return &Inbox{
		coord:    newCoordinator(store, o),
		badge:    newUnreadBadge(unread, o),
		opts:     o,
		filter:   FilterAll,
		lastUsed: o.clock(),
		done:     make(chan struct{}),
	}
}

// Start loads the list and activates the badge. Only the first call does
// any work; later calls return its result.
func (i *Inbox) Start(ctx context.Context) error {
	i.startOnce.Do(func() {
		listErr := i.coord.Refresh(ctx)
		badgeErr := i.badge.Activate(ctx)
		if listErr != nil {
			i.startErr = listErr
		} else {
			i.startErr = badgeErr
		}
	})
	return i.startErr
}

// Coordinator exposes the delete and status operations.
func (i *Inbox) Coordinator() *Coordinator { return i.coord }

// Badge exposes the unread badge.
func (i *Inbox) Badge() *UnreadBadge { return i.badge }

func (i *Inbox) touch() {
	i.mu.Lock()
	i.lastUsed = i.opts.clock()
	i.mu.Unlock()
}

// LastUsed reports when the inbox was last read or changed.
func (i *Inbox) LastUsed() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastUsed
}

// Watch marks the inbox as in use until release is called. A watched
// inbox is never idle.
func (i *Inbox) Watch() (release func()) {
	i.mu.Lock()
	i.watchers++
	i.lastUsed = i.opts.clock()
	i.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			i.watchers--
			i.lastUsed = i.opts.clock()
			i.mu.Unlock()
		})
	}
}

// idleSince reports whether nobody watches the inbox and it was last used
// before cutoff.
func (i *Inbox) idleSince(cutoff time.Time) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.watchers == 0 && i.lastUsed.Before(cutoff)
}

// Done is closed once the inbox has been closed.
func (i *Inbox) Done() <-chan struct{} {
	return i.done
}

// SetFilter changes the status filter.
func (i *Inbox) SetFilter(f Filter) {
	i.mu.Lock()
	i.filter = f
	i.lastUsed = i.opts.clock()
	i.mu.Unlock()
}

// SetSearch changes the free-text search term.
func (i *Inbox) SetSearch(term string) {
	i.mu.Lock()
	i.search = strings.TrimSpace(term)
	i.lastUsed = i.opts.clock()
	i.mu.Unlock()
}

// View builds the filtered, searched list plus the surrounding state.
func (i *Inbox) View() View {
	i.mu.Lock()
	filter, search := i.filter, i.search
	i.lastUsed = i.opts.clock()
	i.mu.Unlock()

	st := i.coord.State()
	unread, known := i.badge.Count()

	items := make([]model.Submission, 0, len(st.Items))
	for idx := range st.Items {
		s := &st.Items[idx]
		if filter.matches(s) && s.Matches(search) {
			items = append(items, *s)
		}
	}
	return View{
		Items:           items,
		Total:           len(st.Items),
		Selected:        st.Selected,
		Filter:          filter,
		Search:          search,
		Pending:         st.Pending,
		DeleteConfirmed: st.DeleteConfirmed,
		Unread:          unread,
		UnreadKnown:     known,
		Alert:           st.Alert,
	}
}

// Refresh reloads the list.
func (i *Inbox) Refresh(ctx context.Context) error {
	i.touch()
	return i.coord.Refresh(ctx)
}

// Select opens a submission, marking it read if it was new.
func (i *Inbox) Select(ctx context.Context, id string) error {
	i.touch()
	return i.coord.Select(ctx, id)
}

// Deselect closes the open submission.
func (i *Inbox) Deselect() {
	i.touch()
	i.coord.Deselect()
}

// SetStatus sets a submission's status.
func (i *Inbox) SetStatus(ctx context.Context, id string, status model.SubmissionStatus) error {
	i.touch()
	return i.coord.SetStatus(ctx, id, status)
}

// ToggleReplied flips a submission between replied and read.
func (i *Inbox) ToggleReplied(ctx context.Context, id string) error {
	i.touch()
	return i.coord.ToggleReplied(ctx, id)
}

// RequestDelete starts a deferred delete.
func (i *Inbox) RequestDelete(ctx context.Context, id string) bool {
	i.touch()
	return i.coord.RequestDelete(ctx, id)
}

// Undo cancels the deferred delete.
func (i *Inbox) Undo() bool {
	i.touch()
	return i.coord.Undo()
}

// DismissAlert clears the alert.
func (i *Inbox) DismissAlert() {
	i.touch()
	i.coord.DismissAlert()
}

// Close commits a waiting deletion, stops the badge and closes Done.
func (i *Inbox) Close(ctx context.Context) {
	i.coord.Close(ctx)
	i.badge.Deactivate()
	i.closeOnce.Do(func() { close(i.done) })
}
