package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the in-transaction audit path.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Emitted         *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	PersistDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_audit_entries_written_total",
			Help: "Audit entries persisted, by action",
		}, []string{"action"}),
		PersistFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_audit_write_failures_total",
			Help: "Audit entries that failed to persist, by action",
		}, []string{"action"}),
		PersistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "handover_audit_write_duration_seconds",
			Help:    "Latency of audit store appends",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncEmitted(action string) {
	if m == nil {
		return
	}
	m.Emitted.WithLabelValues(action).Inc()
}

func (m *Metrics) IncPersistFailures(action string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(action).Inc()
}

func (m *Metrics) ObservePersistDuration(seconds float64) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(seconds)
}
