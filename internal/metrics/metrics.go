package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Inbox holds the Prometheus metrics for the admin submission inbox.
// A nil *Inbox is valid and records nothing.
type Inbox struct {
	DeletesRequested prometheus.Counter
	DeletesFinalized *prometheus.CounterVec
	Undos            prometheus.Counter
	StatusUpdates    *prometheus.CounterVec
	Unread           prometheus.Gauge
	OpenInboxes      prometheus.Gauge
}

// Site holds metrics for the public site.
type Site struct {
	ContactSubmissions *prometheus.CounterVec
}

// NewInbox creates and registers the inbox metrics on reg.
func NewInbox(reg prometheus.Registerer) *Inbox {
	f := promauto.With(reg)
	return &Inbox{
		DeletesRequested: f.NewCounter(prometheus.CounterOpts{
			Name: "inbox_deletes_requested_total",
			Help: "Total number of submission deletions requested by admins",
		}),
		DeletesFinalized: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_deletes_finalized_total",
			Help: "Total number of pending deletions committed to the store, by result",
		}, []string{"result"}),
		Undos: f.NewCounter(prometheus.CounterOpts{
			Name: "inbox_undos_total",
			Help: "Total number of pending deletions undone",
		}),
		StatusUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_status_updates_total",
			Help: "Total number of submission status updates, by result",
		}, []string{"result"}),
		Unread: f.NewGauge(prometheus.GaugeOpts{
			Name: "inbox_unread_submissions",
			Help: "Last computed number of submissions requiring attention",
		}),
		OpenInboxes: f.NewGauge(prometheus.GaugeOpts{
			Name: "inbox_open_sessions",
			Help: "Number of admin sessions with an open inbox",
		}),
	}
}

// NewSite creates and registers the public site metrics on reg.
func NewSite(reg prometheus.Registerer) *Site {
	f := promauto.With(reg)
	return &Site{
		ContactSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact form submissions, by result",
		}, []string{"result"}),
	}
}

func (m *Inbox) DeleteRequested() {
	if m == nil {
		return
	}
	m.DeletesRequested.Inc()
}

func (m *Inbox) DeleteFinalized(ok bool) {
	if m == nil {
		return
	}
	m.DeletesFinalized.WithLabelValues(result(ok)).Inc()
}

func (m *Inbox) Undone() {
	if m == nil {
		return
	}
	m.Undos.Inc()
}

func (m *Inbox) StatusUpdated(ok bool) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(result(ok)).Inc()
}

func (m *Inbox) SetUnread(n int) {
	if m == nil {
		return
	}
	m.Unread.Set(float64(n))
}

func (m *Inbox) InboxOpened() {
	if m == nil {
		return
	}
	m.OpenInboxes.Inc()
}

func (m *Inbox) InboxClosed() {
	if m == nil {
		return
	}
	m.OpenInboxes.Dec()
}

func (m *Site) ContactSubmitted(ok bool) {
	if m == nil {
		return
	}
	m.ContactSubmissions.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
