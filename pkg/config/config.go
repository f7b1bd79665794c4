// Package config defines Conduit's configuration model and loading logic.
//
// Configuration comes from three layers, lowest precedence first:
//
//  1. Built-in defaults (ApplyDefaults)
//  2. A YAML configuration file
//  3. CONDUIT_* environment variable overrides
//
// Credentials are deliberately resolved at call time through a Store so that
// rotating an API key (by rewriting the config file or the environment) takes
// effect without a process restart.
package config

import "time"

// Config is the root configuration for the Conduit relay.
type Config struct {
	// Providers maps provider identifiers to their configuration.
	// Only the five built-in providers are recognized: openrouter,
	// huggingface, featherless, venice, together.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Dispatch configures the outbound HTTP client and retry behavior.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Failover maps abstract model-class labels to ordered fallback chains.
	Failover FailoverConfig `yaml:"failover"`

	// Catalog configures the model-list cache and its refresh schedule.
	Catalog CatalogConfig `yaml:"catalog"`

	// Telemetry configures logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProviderConfig contains per-provider settings.
type ProviderConfig struct {
	// APIKey is the bearer token for this provider. When empty, the key is
	// read from the environment variable named by APIKeyEnv at call time.
	APIKey string `yaml:"api_key"`

	// APIKeyEnv names the environment variable holding the bearer token.
	// Defaults to the provider's conventional variable, e.g.
	// OPENROUTER_API_KEY or FEATHERLESS_API_KEY.
	APIKeyEnv string `yaml:"api_key_env"`

	// BaseURL overrides the provider's default API endpoint. Used mainly
	// for tests and self-hosted gateways.
	BaseURL string `yaml:"base_url"`
}

// DispatchConfig configures the retrying dispatcher's HTTP client.
type DispatchConfig struct {
	// Timeout is the per-request HTTP timeout. It bounds a single attempt,
	// not the whole retry sequence.
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the connection pool size.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the per-host connection pool size.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection remains pooled.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// FailoverConfig holds the failover chains keyed by model-class label.
type FailoverConfig struct {
	// Chains maps an abstract model-class label (e.g. "fast", "vision")
	// to an ordered list of (provider, model) fallbacks.
	Chains map[string][]ChainEntry `yaml:"chains"`
}

// ChainEntry is one (provider, concrete model) pair in a failover chain.
type ChainEntry struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// CatalogConfig configures the model metadata cache.
type CatalogConfig struct {
	// TTL is how long a cached model list stays fresh.
	TTL time.Duration `yaml:"ttl"`

	// RefreshSchedule is a cron expression for background refreshes.
	// Empty disables scheduled refresh; lists are then fetched on demand.
	RefreshSchedule string `yaml:"refresh_schedule"`

	// Providers lists which providers the scheduled refresh covers.
	Providers []string `yaml:"providers"`
}

// TelemetryConfig groups observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`

	// RedactCredentials scrubs bearer tokens and API keys from log fields.
	RedactCredentials bool `yaml:"redact_credentials"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the /metrics endpoint listens (run command).
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics handler.
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled controls whether spans are exported. Disabled uses a noop
	// tracer with negligible overhead.
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the OTel service.name resource attribute.
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// SampleRatio is the trace sampling ratio in [0, 1].
	SampleRatio float64 `yaml:"sample_ratio"`
}
