package metrics

import "github.com/prometheus/client_golang/prometheus"

// CoalescerMetrics holds Prometheus metrics for the periodic display broadcast.
type CoalescerMetrics struct {
	Ticks        prometheus.Counter
	TickErrors   prometheus.Counter
	Broadcasts   *prometheus.CounterVec
	TickDuration prometheus.Histogram
}

// NewCoalescerMetrics creates and registers coalescer metrics on the given registry.
func NewCoalescerMetrics(reg prometheus.Registerer) *CoalescerMetrics {
	m := &CoalescerMetrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coalescer",
			Name:      "ticks_total",
			Help:      "Total number of coalescer ticks.",
		}),
		TickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coalescer",
			Name:      "tick_errors_total",
			Help:      "Total number of ticks aborted by a display error.",
		}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coalescer",
			Name:      "broadcasts_total",
			Help:      "Total number of frames broadcast, by category.",
		}, []string{"category"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "coalescer",
			Name:      "tick_duration_seconds",
			Help:      "Duration of coalescer ticks in seconds.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		}),
	}

	reg.MustRegister(m.Ticks, m.TickErrors, m.Broadcasts, m.TickDuration)
	return m
}
