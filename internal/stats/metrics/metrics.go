package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the dashboard aggregates.
type Metrics struct {
	AggregateRequests *prometheus.CounterVec
	SnapshotSize      prometheus.Gauge
}

// New registers the stats metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AggregateRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "comptrack_aggregate_requests_total",
			Help: "Aggregate computations served, by view.",
		}, []string{"view"}),
		SnapshotSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "comptrack_snapshot_requirements",
			Help: "Requirements in the most recently loaded fact snapshot.",
		}),
	}
}

// ObserveAggregate records one served aggregate for the named view.
func (m *Metrics) ObserveAggregate(view string, snapshotSize int) {
	m.AggregateRequests.WithLabelValues(view).Inc()
	m.SnapshotSize.Set(float64(snapshotSize))
}
