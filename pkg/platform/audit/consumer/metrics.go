package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "handover/pkg/platform/audit"
)

// Metrics tracks audit stream consumption. A nil *Metrics is valid.
type Metrics struct {
	Consumed  *prometheus.CounterVec
	Malformed prometheus.Counter
	Failures  prometheus.Counter
	Denied    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Consumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_audit_consumed_total",
			Help: "Audit entries handled from the stream by category",
		}, []string{"category"}),
		Malformed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_consumed_malformed_total",
			Help: "Audit stream records skipped because they could not be decoded",
		}),
		Failures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handover_audit_consume_failures_total",
			Help: "Audit entries a handler failed to process",
		}),
		Denied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_audit_denied_actions_total",
			Help: "Refused actions seen on the audit stream by operation",
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncConsumed(c audit.Category) {
	if m == nil {
		return
	}
	m.Consumed.WithLabelValues(string(c)).Inc()
}

func (m *Metrics) IncMalformed() {
	if m == nil {
		return
	}
	m.Malformed.Inc()
}

func (m *Metrics) IncFailures() {
	if m == nil {
		return
	}
	m.Failures.Inc()
}

func (m *Metrics) IncDenied(operation string) {
	if m == nil {
		return
	}
	m.Denied.WithLabelValues(operation).Inc()
}
