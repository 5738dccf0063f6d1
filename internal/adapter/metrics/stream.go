package metrics

import "github.com/prometheus/client_golang/prometheus"

// StreamMetrics holds Prometheus metrics for the browser update streams.
type StreamMetrics struct {
	ActiveConnections *prometheus.GaugeVec
	MessagesSent      *prometheus.CounterVec
}

// NewStreamMetrics creates and registers stream metrics on the given registry.
// Both metrics are labelled by transport (sse or websocket).
func NewStreamMetrics(reg prometheus.Registerer) *StreamMetrics {
	m := &StreamMetrics{
		ActiveConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "active_connections",
			Help:      "Number of open update stream connections.",
		}, []string{"transport"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "messages_sent_total",
			Help:      "Total number of update messages written to clients.",
		}, []string{"transport"}),
	}

	reg.MustRegister(m.ActiveConnections, m.MessagesSent)
	return m
}
