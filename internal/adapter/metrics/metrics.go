package metrics

import (
	"net/http"

	"github.com/cleroux/pi-xmas-hat/internal/platform/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xmashat"

// NewRegistry creates the process-wide registry: Go runtime and process
// collectors plus a build_info gauge labelled with info.
func NewRegistry(info version.Info) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information (value is always 1).",
	}, []string{"version", "commit", "build_time", "go_version"})
	reg.MustRegister(buildInfo)
	buildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)

	return reg
}

// Handler serves reg in the Prometheus exposition format. Scrape errors are
// counted on reg itself.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
