package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mosaic-hq/conduit/pkg/config"
)

// Exporter bundles a private Prometheus registry with the metric groups
// registered on it and serves them over HTTP.
type Exporter struct {
	registry *prometheus.Registry

	// Dispatch holds the dispatch-path metrics.
	Dispatch *DispatchMetrics
}

// NewExporter creates a registry with Go runtime and process collectors plus
// the conduit metric groups. Returns nil when metrics are disabled; all
// metric group methods are nil-safe, so a nil exporter simply records nothing.
func NewExporter(cfg *config.MetricsConfig) *Exporter {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Exporter{
		registry: registry,
		Dispatch: NewDispatchMetrics(cfg, registry),
	}
}

// DispatchMetrics returns the dispatch metric group, or nil for a nil exporter.
func (e *Exporter) DispatchMetrics() *DispatchMetrics {
	if e == nil {
		return nil
	}
	return e.Dispatch
}

// Handler returns the HTTP handler serving the metrics registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
