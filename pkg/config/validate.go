package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
)

// knownProviders is the closed set of provider identifiers Conduit speaks to.
var knownProviders = map[string]bool{
	"openrouter":  true,
	"huggingface": true,
	"featherless": true,
	"venice":      true,
	"together":    true,
}

// KnownProviderNames returns the sorted list of recognized provider identifiers.
func KnownProviderNames() []string {
	names := make([]string, 0, len(knownProviders))
	for name := range knownProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the configuration for internal consistency. It returns the
// first problem found, phrased with enough context to fix the file.
func Validate(cfg *Config) error {
	for name := range cfg.Providers {
		if !knownProviders[name] {
			return fmt.Errorf("unknown provider %q in providers section (known: %s)",
				name, strings.Join(KnownProviderNames(), ", "))
		}
	}

	if cfg.Dispatch.Timeout < 0 {
		return fmt.Errorf("dispatch.timeout must not be negative")
	}

	for label, chain := range cfg.Failover.Chains {
		if label == "" {
			return fmt.Errorf("failover chain with empty model-class label")
		}
		if len(chain) == 0 {
			return fmt.Errorf("failover chain %q is empty", label)
		}
		for i, entry := range chain {
			if !knownProviders[entry.Provider] {
				return fmt.Errorf("failover chain %q entry %d references unknown provider %q",
					label, i, entry.Provider)
			}
			if entry.Model == "" {
				return fmt.Errorf("failover chain %q entry %d has no model", label, i)
			}
		}
	}

	if cfg.Catalog.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Catalog.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid catalog.refresh_schedule %q: %w", cfg.Catalog.RefreshSchedule, err)
		}
	}
	for _, name := range cfg.Catalog.Providers {
		if !knownProviders[name] {
			return fmt.Errorf("catalog.providers references unknown provider %q", name)
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid telemetry.logging.level %q", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid telemetry.logging.format %q", cfg.Telemetry.Logging.Format)
	}

	if r := cfg.Telemetry.Tracing.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.tracing.sample_ratio must be in [0, 1], got %v", r)
	}

	return nil
}
