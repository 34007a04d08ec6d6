package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the transfer module. A nil *Metrics is
// valid and records nothing, so tests can construct services without a registry.
type Metrics struct {
	Submissions        *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	StatusTransitions  *prometheus.CounterVec
	ConflictRetries    prometheus.Counter
	DisputesRaised     prometheus.Counter
	TrustScores        prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_step_submissions_total",
			Help: "Step submissions by kind and outcome",
		}, []string{"kind", "outcome"}),
		SubmissionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "handover_step_submission_duration_seconds",
			Help:    "Duration of step submissions including the ledger transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_transfer_status_transitions_total",
			Help: "Transfer status transitions by source and target status",
		}, []string{"from", "to"}),
		ConflictRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_transfer_conflict_retries_total",
			Help: "Optimistic-concurrency conflicts retried by the orchestrator",
		}),
		DisputesRaised: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_disputes_raised_total",
			Help: "Disputes raised against transfers",
		}),
		TrustScores: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "handover_trust_score",
			Help:    "Distribution of computed trust scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

func (m *Metrics) ObserveSubmission(kind, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind, outcome).Inc()
	m.SubmissionDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncConflictRetry() {
	if m == nil {
		return
	}
	m.ConflictRetries.Inc()
}

func (m *Metrics) IncDisputeRaised() {
	if m == nil {
		return
	}
	m.DisputesRaised.Inc()
}

func (m *Metrics) ObserveTrustScore(score int) {
	if m == nil {
		return
	}
	m.TrustScores.Observe(float64(score))
}
