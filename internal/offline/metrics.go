package offline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts drain outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Replays *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Replays: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_offline_replays_total",
			Help: "Offline outbox replays by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observe(o outcome) {
	if m == nil {
		return
	}
	m.Replays.WithLabelValues(string(o)).Inc()
}
