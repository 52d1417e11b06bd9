package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the registration domain.
type Metrics struct {
	DraftsSaved        prometheus.Counter
	DraftsResumed      prometheus.Counter
	DraftFlushFailures prometheus.Counter
	Finalized          prometheus.Counter
	FinalizedPartial   prometheus.Counter
	FlushDuration      prometheus.Histogram
}

// New creates and registers all registration metrics.
func New() *Metrics {
	return &Metrics{
		DraftsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prospace_registration_drafts_saved_total",
			Help: "Total number of draft save operations applied",
		}),
		DraftsResumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prospace_registration_drafts_resumed_total",
			Help: "Total number of drafts resumed by returning users",
		}),
		DraftFlushFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prospace_registration_draft_flush_failures_total",
			Help: "Total number of failed durable draft flushes",
		}),
		Finalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prospace_registration_finalized_total",
			Help: "Total number of registrations finalized into accounts",
		}),
		FinalizedPartial: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prospace_registration_finalized_partial_total",
			Help: "Total number of finalizations with pending document uploads",
		}),
		FlushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "prospace_registration_draft_flush_duration_seconds",
			Help:    "Duration of durable draft flushes",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementDraftsSaved() {
	if m != nil {
		m.DraftsSaved.Inc()
	}
}

func (m *Metrics) IncrementDraftsResumed() {
	if m != nil {
		m.DraftsResumed.Inc()
	}
}

func (m *Metrics) IncrementDraftFlushFailures() {
	if m != nil {
		m.DraftFlushFailures.Inc()
	}
}

func (m *Metrics) IncrementFinalized() {
	if m != nil {
		m.Finalized.Inc()
	}
}

func (m *Metrics) IncrementFinalizedPartial() {
	if m != nil {
		m.FinalizedPartial.Inc()
	}
}

func (m *Metrics) ObserveFlushDuration(seconds float64) {
	if m != nil {
		m.FlushDuration.Observe(seconds)
	}
}
