package inbox

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
)

// ErrUnknownSubmission is returned for ids outside the working set.
var ErrUnknownSubmission = errors.New("submission not in inbox")

// pendingDeletion occupies the single deletion slot. Its address is its
// identity: a timer only finalizes the deletion it was started for.
type pendingDeletion struct {
	sub       *model.Submission
	expiresAt time.Time
	timer     Timer
}

// PendingDelete describes the deletion that can still be undone.
type PendingDelete struct {
	ID        string           `json:"id"`
	ExpiresAt time.Time        `json:"expires_at"`
	Item      model.Submission `json:"item"`
}

// State is a copy of the coordinator's state.
type State struct {
	Items           []model.Submission
	Selected        *model.Submission
	Pending         *PendingDelete
	DeleteConfirmed bool
	Alert           *Alert
}

// Coordinator owns the working set of submissions and the deferred delete
// slot. All state is guarded by mu; remote calls are made without it.
type Coordinator struct {
	store Store
	opts  options

	mu          sync.Mutex
	items       []*model.Submission // createdAt desc
	selected    string
	pending     *pendingDeletion
	confirmed   bool
	confirmGen  uint64
	confirmStop Timer
	alert       *Alert
	marking     map[string]bool
	// finalizing holds ids whose remote delete is in flight; removed holds
	// ids deleted remotely. A fetched list never brings either back.
	finalizing map[string]struct{}
	removed    map[string]struct{}
	closed     bool
}

// NewCoordinator creates an empty coordinator; call Refresh to load it.
func NewCoordinator(store Store, opts ...Option) *Coordinator {
	return newCoordinator(store, buildOptions(opts))
}

func newCoordinator(store Store, o options) *Coordinator {
	return &Coordinator{
		store:   store,
		opts:    o,
		marking:    make(map[string]bool),
		finalizing: make(map[string]struct{}),
		removed:    make(map[string]struct{}),
	}
}

func newestFirst(a, b *model.Submission) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

func (c *Coordinator) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(s *model.Submission) bool { return s.ID == id })
}

func (c *Coordinator) setAlert(kind AlertKind, msg string) {
	c.mu.Lock()
	c.alert = &Alert{Kind: kind, Message: msg, At: c.opts.clock()}
	c.mu.Unlock()
}

// Refresh replaces the working set with the remote list. The submission
// waiting in the deletion slot stays hidden.
func (c *Coordinator) Refresh(ctx context.Context) error {
	list, err := c.store.List(ctx)
	if err != nil {
		c.opts.logger.Warn("inbox: list submissions failed", "error", err)
		c.setAlert(AlertFetchFailed, "Could not load submissions.")
		return err
	}

	c.apply(list)
	return nil
}

// apply installs a fetched list as the working set.
func (c *Coordinator) apply(list []*model.Submission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool, len(list))
	items := make([]*model.Submission, 0, len(list))
	for _, s := range list {
		if seen[s.ID] || c.hiddenLocked(s.ID) {
			continue
		}
		seen[s.ID] = true
		cp := *s
		items = append(items, &cp)
	}
	slices.SortStableFunc(items, newestFirst)
	c.items = items
	if c.selected != "" && !seen[c.selected] {
		c.selected = ""
	}
}

// hiddenLocked reports whether id is waiting, being deleted or gone.
func (c *Coordinator) hiddenLocked(id string) bool {
	if c.pending != nil && c.pending.sub.ID == id {
		return true
	}
	if _, ok := c.finalizing[id]; ok {
		return true
	}
	_, ok := c.removed[id]
	return ok
}

// RequestDelete hides a submission and schedules its remote delete after
// the grace period. A deletion already waiting is committed first. It
// reports false for ids outside the working set.
func (c *Coordinator) RequestDelete(ctx context.Context, id string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}

	prev := c.takePendingLocked()
	if prev != nil {
		c.finalizing[prev.sub.ID] = struct{}{}
	}

	sub := c.items[idx]
	c.items = slices.Delete(c.items, idx, idx+1)
	if c.selected == id {
		c.selected = ""
	}
	p := &pendingDeletion{sub: sub, expiresAt: c.opts.clock().Add(c.opts.gracePeriod)}
	p.timer = c.opts.scheduler.AfterFunc(c.opts.gracePeriod, func() { c.expire(p) })
	c.pending = p
	c.mu.Unlock()

	c.opts.metrics.DeleteRequested()
	if prev != nil {
		c.commit(ctx, prev.sub.ID)
	}
	return true
}

// takePendingLocked empties the slot and stops its timer.
func (c *Coordinator) takePendingLocked() *pendingDeletion {
	p := c.pending
	if p == nil {
		return nil
	}
	p.timer.Stop()
	c.pending = nil
	return p
}

// expire runs on the grace timer. It does nothing unless p still owns the
// slot.
func (c *Coordinator) expire(p *pendingDeletion) {
	c.mu.Lock()
	if c.pending != p {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.finalizing[p.sub.ID] = struct{}{}
	c.mu.Unlock()

	c.commit(context.Background(), p.sub.ID)
}

// commit issues the remote delete for a deletion already moved from the
// slot into finalizing.
func (c *Coordinator) commit(parent context.Context, id string) {
	ctx, cancel := c.opts.detached(parent)
	defer cancel()

	err := c.store.Delete(ctx, id)
	c.opts.metrics.DeleteFinalized(err == nil)
	if err != nil {
		c.opts.logger.Error("inbox: delete submission failed", "id", id, "error", err)

		// 失敗した行は resync で戻ってこられるようにする
		c.mu.Lock()
		delete(c.finalizing, id)
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		c.setAlert(AlertDeleteFailed, "Could not delete the submission. The list has been reloaded.")
		if err := c.resync(ctx); err != nil {
			c.opts.logger.Warn("inbox: resync after failed delete", "error", err)
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.finalizing, id)
	c.removed[id] = struct{}{}
	if c.closed {
		return
	}
	if c.confirmStop != nil {
		c.confirmStop.Stop()
	}
	c.confirmed = true
	c.confirmGen++
	gen := c.confirmGen
	c.confirmStop = c.opts.scheduler.AfterFunc(c.opts.confirmationTTL, func() { c.clearConfirmation(gen) })
}

// resync reloads the list without replacing the delete alert on failure.
func (c *Coordinator) resync(ctx context.Context) error {
	list, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	c.apply(list)
	return nil
}

func (c *Coordinator) clearConfirmation(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirmGen == gen {
		c.confirmed = false
		c.confirmStop = nil
	}
}

// Undo puts the waiting submission back in createdAt order. It reports
// false when nothing is waiting.
func (c *Coordinator) Undo() bool {
	c.mu.Lock()
	p := c.takePendingLocked()
	if p == nil {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items, p.sub)
	slices.SortStableFunc(c.items, newestFirst)
	c.mu.Unlock()

	c.opts.metrics.Undone()
	return true
}

// Select opens a submission. Opening a new one marks it read; the remote
// update is issued once even under concurrent selects.
func (c *Coordinator) Select(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrUnknownSubmission
	}
	c.selected = id
	mark := c.items[idx].Status == model.StatusNew && !c.marking[id]
	if mark {
		c.marking[id] = true
	}
	c.mu.Unlock()

	if !mark {
		return nil
	}
	defer func() {
		c.mu.Lock()
		delete(c.marking, id)
		c.mu.Unlock()
	}()
	return c.updateStatus(ctx, id, model.StatusRead)
}

// Deselect closes the open submission.
func (c *Coordinator) Deselect() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
}

// SetStatus changes a submission's status remotely, then locally.
func (c *Coordinator) SetStatus(ctx context.Context, id string, status model.SubmissionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", repository.ErrInvalidStatus, status)
	}
	c.mu.Lock()
	known := c.indexLocked(id) >= 0
	c.mu.Unlock()
	if !known {
		return ErrUnknownSubmission
	}
	return c.updateStatus(ctx, id, status)
}

// ToggleReplied flips a submission between replied and read.
func (c *Coordinator) ToggleReplied(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrUnknownSubmission
	}
	next := model.StatusReplied
	if c.items[idx].Status == model.StatusReplied {
		next = model.StatusRead
	}
	c.mu.Unlock()

	return c.updateStatus(ctx, id, next)
}

// updateStatus applies status locally only after the remote update
// succeeded.
func (c *Coordinator) updateStatus(ctx context.Context, id string, status model.SubmissionStatus) error {
	err := c.store.UpdateStatus(ctx, id, status)
	c.opts.metrics.StatusUpdated(err == nil)
	if err != nil {
		c.opts.logger.Error("inbox: update status failed", "id", id, "status", status, "error", err)
		c.setAlert(AlertUpdateStatusFailed, "Could not update the submission status.")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		c.items[idx].Status = status
	}
	if c.pending != nil && c.pending.sub.ID == id {
		c.pending.sub.Status = status
	}
	return nil
}

// DismissAlert clears the current alert.
func (c *Coordinator) DismissAlert() {
	c.mu.Lock()
	c.alert = nil
	c.mu.Unlock()
}

// State returns a copy of the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Items:           make([]model.Submission, 0, len(c.items)),
		DeleteConfirmed: c.confirmed,
	}
	for _, s := range c.items {
		st.Items = append(st.Items, *s)
		if s.ID == c.selected {
			sel := *s
			st.Selected = &sel
		}
	}
	if c.pending != nil {
		st.Pending = &PendingDelete{ID: c.pending.sub.ID, ExpiresAt: c.pending.expiresAt, Item: *c.pending.sub}
	}
	if c.alert != nil {
		a := *c.alert
		st.Alert = &a
	}
	return st
}

// Close commits any waiting deletion and stops all timers. Later calls
// to RequestDelete are ignored.
func (c *Coordinator) Close(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	p := c.takePendingLocked()
	if p != nil {
		c.finalizing[p.sub.ID] = struct{}{}
	}
	if c.confirmStop != nil {
		c.confirmStop.Stop()
		c.confirmStop = nil
	}
	c.confirmed = false
	c.mu.Unlock()

	if p != nil {
		c.commit(ctx, p.sub.ID)
	}
}
