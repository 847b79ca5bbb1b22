package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Notification results
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

// Metrics holds the collectors for the submission workflow
type Metrics struct {
	Submissions      *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_submissions_total",
				Help: "Submissions processed, by outcome.",
			},
			[]string{"outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_notifications_total",
				Help: "Author notifications attempted, by kind and result.",
			},
			[]string{"kind", "result"},
		),
		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quill_pipeline_duration_seconds",
				Help:    "Time spent processing a submission.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Submissions, m.Notifications, m.PipelineDuration)
	}
	return m
}

// ObserveSubmission records the outcome and duration of one pipeline run.
// Nil-safe so callers can run without metrics.
func (m *Metrics) ObserveSubmission(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
	m.PipelineDuration.Observe(time.Since(started).Seconds())
}

// ObserveNotification records one delivery attempt
func (m *Metrics) ObserveNotification(kind string, err error) {
	if m == nil {
		return
	}
	result := ResultSent
	if err != nil {
		result = ResultFailed
	}
	m.Notifications.WithLabelValues(kind, result).Inc()
}
