package metrics

import "github.com/prometheus/client_golang/prometheus"

// DisplayMetrics holds Prometheus metrics for display mutations.
type DisplayMetrics struct {
	Mutations      *prometheus.CounterVec
	ScrollDuration prometheus.Histogram

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState       prometheus.Gauge
	BreakerTransitions *prometheus.CounterVec
}

// NewDisplayMetrics creates and registers display metrics on the given registry.
func NewDisplayMetrics(reg prometheus.Registerer) *DisplayMetrics {
	m := &DisplayMetrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "mutations_total",
			Help:      "Total number of display mutations, by kind and result.",
		}, []string{"kind", "result"}),
		ScrollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "scroll_duration_seconds",
			Help:      "Duration of scrolled messages in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 40, 80},
		}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "circuit_breaker_state",
			Help:      "State of the display circuit breaker (0 closed, 1 half-open, 2 open).",
		}),
		BreakerTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "circuit_breaker_transitions_total",
			Help:      "Total number of display circuit breaker transitions, by new state.",
		}, []string{"state"}),
	}

	reg.MustRegister(m.Mutations, m.ScrollDuration, m.BreakerState, m.BreakerTransitions)
	return m
}
