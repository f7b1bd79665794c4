package config

import "time"

// Default credential environment variables per provider. Credential lookups
// fall back to these when api_key and api_key_env are both unset.
var DefaultCredentialEnv = map[string]string{
	"openrouter":  "OPENROUTER_API_KEY",
	"huggingface": "HUGGINGFACE_API_KEY",
	"featherless": "FEATHERLESS_API_KEY",
	"venice":      "VENICE_API_KEY",
	"together":    "TOGETHER_API_KEY",
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
// It is called by LoadConfig before validation.
func ApplyDefaults(cfg *Config) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	// Every known provider gets an entry so that env-only credential setups
	// work without any providers section in the file.
	for name, envVar := range DefaultCredentialEnv {
		pc := cfg.Providers[name]
		if pc.APIKeyEnv == "" {
			pc.APIKeyEnv = envVar
		}
		cfg.Providers[name] = pc
	}

	if cfg.Dispatch.Timeout == 0 {
		cfg.Dispatch.Timeout = 120 * time.Second
	}
	if cfg.Dispatch.MaxIdleConns == 0 {
		cfg.Dispatch.MaxIdleConns = 100
	}
	if cfg.Dispatch.MaxIdleConnsPerHost == 0 {
		cfg.Dispatch.MaxIdleConnsPerHost = 10
	}
	if cfg.Dispatch.IdleConnTimeout == 0 {
		cfg.Dispatch.IdleConnTimeout = 90 * time.Second
	}

	if cfg.Failover.Chains == nil {
		cfg.Failover.Chains = defaultChains()
	}

	if cfg.Catalog.TTL == 0 {
		cfg.Catalog.TTL = 15 * time.Minute
	}
	if cfg.Catalog.Providers == nil {
		cfg.Catalog.Providers = []string{"openrouter", "featherless", "venice", "together"}
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}

	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = ":9464"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "conduit"
	}

	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = "conduit"
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = 1.0
	}
}

// defaultChains returns the built-in failover chains. These mirror the
// shipped configuration file and can be overridden wholesale via YAML.
func defaultChains() map[string][]ChainEntry {
	return map[string][]ChainEntry{
		"fast": {
			{Provider: "openrouter", Model: "meta-llama/llama-3.1-8b-instruct"},
			{Provider: "together", Model: "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"},
			{Provider: "featherless", Model: "meta-llama/Meta-Llama-3.1-8B-Instruct"},
		},
		"balanced": {
			{Provider: "openrouter", Model: "meta-llama/llama-3.3-70b-instruct"},
			{Provider: "together", Model: "meta-llama/Llama-3.3-70B-Instruct-Turbo"},
			{Provider: "venice", Model: "llama-3.3-70b"},
		},
		"strong": {
			{Provider: "openrouter", Model: "deepseek/deepseek-r1"},
			{Provider: "together", Model: "deepseek-ai/DeepSeek-R1"},
			{Provider: "huggingface", Model: "deepseek-ai/DeepSeek-R1"},
		},
		"vision": {
			{Provider: "openrouter", Model: "qwen/qwen2.5-vl-72b-instruct"},
			{Provider: "together", Model: "Qwen/Qwen2.5-VL-72B-Instruct"},
			{Provider: "venice", Model: "qwen-2.5-vl"},
		},
	}
}
