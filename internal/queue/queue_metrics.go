package queue

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the queue synchronization subsystem.
type Metrics struct {
	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	QueueDepth      *prometheus.GaugeVec
	MutationsTotal  *prometheus.CounterVec
	ArrivalsTotal   *prometheus.CounterVec
}

// NewMetrics registers and returns queue metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medqueue_refreshes_total",
			Help: "Total queue refresh cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "medqueue_refresh_duration_seconds",
			Help:    "Duration of queue refresh fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "medqueue_queue_depth",
			Help: "Visible queue items after the latest refresh, per department.",
		}, []string{"department"}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medqueue_status_mutations_total",
			Help: "Total optimistic status mutations by requested status and outcome.",
		}, []string{"status", "outcome"}),
		ArrivalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medqueue_arrivals_total",
			Help: "Queue items first observed by the synchronizer, by risk bucket.",
		}, []string{"bucket"}),
	}

	reg.MustRegister(
		m.RefreshesTotal,
		m.RefreshDuration,
		m.QueueDepth,
		m.MutationsTotal,
		m.ArrivalsTotal,
	)

	return m
}
