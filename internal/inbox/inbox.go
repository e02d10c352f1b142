// Package inbox is the admin view over contact submissions: a working set
// with deferred, undoable deletes, status changes, filtering, and a live
// unread count.
package inbox

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/momentumgaming/backend/internal/inbox Store,UnreadSource,SessionNotifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/momentumgaming/backend/internal/changefeed"
	"github.com/momentumgaming/backend/internal/metrics"
	"github.com/momentumgaming/backend/internal/model"
)

// Store is the slice of the submission repository the coordinator uses.
type Store interface {
	List(ctx context.Context) ([]*model.Submission, error)
	UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus) error
	Delete(ctx context.Context, id string) error
}

// UnreadSource counts unread submissions and reports changes to them.
type UnreadSource interface {
	CountUnread(ctx context.Context) (int64, error)
	Subscribe(ctx context.Context, mask changefeed.Mask, fn changefeed.Handler) (changefeed.Subscription, error)
	Unsubscribe(sub changefeed.Subscription)
}

// SessionNotifier reports admin logins and logouts.
type SessionNotifier interface {
	OnSessionChange(fn func(model.SessionChange)) (unsubscribe func())
}

// AlertKind classifies a failure shown to the admin.
type AlertKind string

const (
	AlertFetchFailed        AlertKind = "fetch_failed"
	AlertDeleteFailed       AlertKind = "delete_failed"
	AlertUpdateStatusFailed AlertKind = "update_status_failed"
)

// Alert is the last failure, kept until dismissed or replaced.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Defaults used when no option overrides them.
const (
	DefaultGracePeriod     = 5 * time.Second
	DefaultConfirmationTTL = 3 * time.Second
	DefaultIdleTimeout     = 30 * time.Minute
	DefaultSweepInterval   = time.Minute
	defaultOpTimeout       = 10 * time.Second
)

type options struct {
	logger          *slog.Logger
	metrics         *metrics.Inbox
	scheduler       Scheduler
	clock           func() time.Time
	gracePeriod     time.Duration
	confirmationTTL time.Duration
	idleTimeout     time.Duration
	sweepInterval   time.Duration
	opTimeout       time.Duration
}

func defaultOptions() options {
	return options{
		logger:          slog.Default(),
		scheduler:       RealScheduler{},
		clock:           time.Now,
		gracePeriod:     DefaultGracePeriod,
		confirmationTTL: DefaultConfirmationTTL,
		idleTimeout:     DefaultIdleTimeout,
		sweepInterval:   DefaultSweepInterval,
		opTimeout:       defaultOpTimeout,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures inboxes and the manager.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records inbox activity on m.
func WithMetrics(m *metrics.Inbox) Option {
	return func(o *options) { o.metrics = m }
}

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.clock = fn
		}
	}
}

// WithGracePeriod sets how long a deletion stays undoable.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.gracePeriod = d
		}
	}
}

// WithConfirmationTTL sets how long the deletion confirmation stays visible.
func WithConfirmationTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.confirmationTTL = d
		}
	}
}

// WithIdleTimeout sets how long an unused inbox survives in the manager.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleTimeout = d
		}
	}
}

// WithSweepInterval sets how often the manager looks for idle inboxes.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// detached returns a context for remote calls that must outlive the
// request that triggered them.
func (o *options) detached(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(parent), o.opTimeout)
}
