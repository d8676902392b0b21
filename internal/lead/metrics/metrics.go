package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeMalformed   = "malformed"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Notification outcomes.
const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifySkipped = "skipped"
)

// Metrics holds Prometheus collectors for the lead pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Submissions           *prometheus.CounterVec
	SubmissionDuration    prometheus.Histogram
	Notifications         *prometheus.CounterVec
	NotificationsInFlight prometheus.Gauge
}

// New registers collectors on reg. Use prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgate_submissions_total",
			Help: "Lead submissions by outcome",
		}, []string{"outcome"}),
		SubmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadgate_submission_duration_seconds",
			Help:    "Time spent handling a lead submission",
			Buckets: prometheus.DefBuckets,
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgate_notifications_total",
			Help: "Notification attempts by sink and outcome",
		}, []string{"sink", "outcome"}),
		NotificationsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leadgate_notifications_inflight",
			Help: "Detached notification tasks currently running",
		}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSubmissionDuration(start time.Time) {
	if m == nil {
		return
	}
	m.SubmissionDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncNotification(sink, outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(sink, outcome).Inc()
}

func (m *Metrics) NotificationStarted() {
	if m == nil {
		return
	}
	m.NotificationsInFlight.Inc()
}

func (m *Metrics) NotificationFinished() {
	if m == nil {
		return
	}
	m.NotificationsInFlight.Dec()
}
