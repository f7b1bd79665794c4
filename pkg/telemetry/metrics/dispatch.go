// Package metrics exposes Prometheus instrumentation for the dispatch path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mosaic-hq/conduit/pkg/config"
)

// DispatchMetrics tracks outbound provider traffic.
//
// Metrics:
//   - conduit_dispatch_requests_total: attempts sent, by provider and path kind
//   - conduit_dispatch_retries_total: retries, by provider and reason (cold, transient)
//   - conduit_dispatch_errors_total: terminal errors, by provider and error type
//   - conduit_dispatch_latency_seconds: wall time of one logical call, retries included
//   - conduit_ratelimit_remaining: last observed remaining quota, by provider
type DispatchMetrics struct {
	requests           *prometheus.CounterVec
	retries            *prometheus.CounterVec
	errors             *prometheus.CounterVec
	latency            *prometheus.HistogramVec
	rateLimitRemaining *prometheus.GaugeVec
}

// Retry reason label values.
const (
	RetryReasonCold      = "cold"
	RetryReasonTransient = "transient"
)

// NewDispatchMetrics creates and registers dispatch metrics with the registry.
func NewDispatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DispatchMetrics {
	m := &DispatchMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_requests_total",
				Help:      "Total HTTP attempts sent to providers",
			},
			[]string{"provider", "path"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_retries_total",
				Help:      "Total retries by reason (cold, transient)",
			},
			[]string{"provider", "reason"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_errors_total",
				Help:      "Terminal dispatch errors by type",
			},
			[]string{"provider", "error_type"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_latency_seconds",
				Help:      "Wall time of one logical call including retries and backoff",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		rateLimitRemaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "ratelimit_remaining",
				Help:      "Remaining request quota from the provider's last response",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		m.requests,
		m.retries,
		m.errors,
		m.latency,
		m.rateLimitRemaining,
	)

	return m
}

// RecordAttempt counts one HTTP attempt to a provider path. Nil-safe.
func (m *DispatchMetrics) RecordAttempt(provider, path string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(provider, path).Inc()
}

// RecordRetry counts a retry with its reason. Nil-safe.
func (m *DispatchMetrics) RecordRetry(provider, reason string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(provider, reason).Inc()
}

// RecordError counts a terminal error by type. Nil-safe.
func (m *DispatchMetrics) RecordError(provider, errorType string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(provider, errorType).Inc()
}

// RecordLatency observes the wall time of one logical call. Nil-safe.
func (m *DispatchMetrics) RecordLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(provider).Observe(seconds)
}

// RecordRateLimitRemaining updates the remaining-quota gauge. Nil-safe.
func (m *DispatchMetrics) RecordRateLimitRemaining(provider string, remaining int64) {
	if m == nil {
		return
	}
	m.rateLimitRemaining.WithLabelValues(provider).Set(float64(remaining))
}
