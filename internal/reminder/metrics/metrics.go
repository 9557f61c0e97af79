package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the reminder scheduler.
type Metrics struct {
	Sent    *prometheus.CounterVec
	Failed  *prometheus.CounterVec
	Skipped *prometheus.CounterVec
}

// New registers the reminder metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Sent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "comptrack_reminders_sent_total",
			Help: "Reminder notices handed to the dispatcher, by day offset.",
		}, []string{"offset"}),
		Failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "comptrack_reminders_failed_total",
			Help: "Reminder dispatch failures, by day offset.",
		}, []string{"offset"}),
		Skipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "comptrack_reminders_skipped_total",
			Help: "Assignments skipped during the reminder scan, by reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncSent(offset int) { m.Sent.WithLabelValues(strconv.Itoa(offset)).Inc() }

func (m *Metrics) IncFailed(offset int) { m.Failed.WithLabelValues(strconv.Itoa(offset)).Inc() }

func (m *Metrics) IncSkipped(reason string) { m.Skipped.WithLabelValues(reason).Inc() }
