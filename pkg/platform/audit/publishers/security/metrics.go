package security

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the denied-action audit path. A nil *Metrics is valid.
type Metrics struct {
	Enqueued        prometheus.Counter
	Dropped         prometheus.Counter
	PersistFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Enqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_denied_enqueued_total",
			Help: "Denied-action audit entries accepted into the buffer",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_denied_dropped_total",
			Help: "Denied-action audit entries evicted from a full buffer",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_denied_persist_failures_total",
			Help: "Denied-action audit entries the store refused",
		}),
	}
}

func (m *Metrics) IncEnqueued() {
	if m == nil {
		return
	}
	m.Enqueued.Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) IncPersistFailures() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
