package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSubmission("published", time.Now())
	m.ObserveSubmission("published", time.Now())
	m.ObserveSubmission("rejected_word_count", time.Now())

	if got := testutil.ToFloat64(m.Submissions.WithLabelValues("published")); got != 2 {
		t.Errorf("published = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Submissions.WithLabelValues("rejected_word_count")); got != 1 {
		t.Errorf("rejected_word_count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.PipelineDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestMetrics_ObserveNotification(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveNotification("published", nil)
	m.ObserveNotification("published", errors.New("smtp down"))

	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("published", ResultSent)); got != 1 {
		t.Errorf("sent = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("published", ResultFailed)); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSubmission("published", time.Now())
	m.ObserveNotification("published", nil)
}
