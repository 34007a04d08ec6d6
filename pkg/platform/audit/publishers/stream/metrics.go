package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks audit stream delivery. A nil *Metrics is valid.
type Metrics struct {
	Published    prometheus.Counter
	Failures     prometheus.Counter
	Dropped      prometheus.Counter
	BreakerState prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_stream_published_total",
			Help: "Audit entries acknowledged by Kafka",
		}),
		Failures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_stream_failures_total",
			Help: "Audit entries Kafka failed to accept",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_stream_dropped_total",
			Help: "Audit entries skipped while the circuit breaker was open",
		}),
		BreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "handover_audit_stream_circuit_breaker_state",
			Help: "Audit stream circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) IncPublished() {
	if m == nil {
		return
	}
	m.Published.Inc()
}

func (m *Metrics) IncFailures() {
	if m == nil {
		return
	}
	m.Failures.Inc()
}

func (m *Metrics) AddDropped(n int) {
	if m == nil {
		return
	}
	m.Dropped.Add(float64(n))
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
