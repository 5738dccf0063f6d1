package metrics

import "github.com/prometheus/client_golang/prometheus"

// BroadcastMetrics holds Prometheus metrics for the update fan-out.
type BroadcastMetrics struct {
	Subscribers prometheus.Gauge
	Announces   prometheus.Counter
	Deliveries  prometheus.Counter
	Evictions   prometheus.Counter
}

// NewBroadcastMetrics creates and registers broadcaster metrics on the given registry.
func NewBroadcastMetrics(reg prometheus.Registerer) *BroadcastMetrics {
	m := &BroadcastMetrics{
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers",
			Help:      "Number of live update subscribers.",
		}),
		Announces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "announces_total",
			Help:      "Total number of payloads announced.",
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "deliveries_total",
			Help:      "Total number of payloads enqueued to subscriber mailboxes.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "evictions_total",
			Help:      "Total number of subscribers evicted because their mailbox was full.",
		}),
	}

	reg.MustRegister(m.Subscribers, m.Announces, m.Deliveries, m.Evictions)
	return m
}
