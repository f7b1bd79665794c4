package config

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Store holds the live configuration behind an atomic pointer so that
// readers always observe a complete, validated snapshot. The watcher swaps
// the pointer on file change; in-flight calls keep the snapshot they started
// with, while new credential lookups see the rotated values immediately.
type Store struct {
	current atomic.Pointer[Config]

	// path is the file the store reloads from; empty for env-only setups.
	path string
}

// NewStore creates a Store seeded with the given configuration.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// NewStoreFromFile loads the configuration file (with env overrides) and
// returns a Store bound to that path for later Reload calls.
func NewStoreFromFile(path string) (*Store, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}
	s := NewStore(cfg)
	s.path = path
	return s, nil
}

// Current returns the active configuration snapshot. The returned value must
// be treated as read-only.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Replace swaps in a new configuration snapshot.
func (s *Store) Replace(cfg *Config) {
	s.current.Store(cfg)
}

// Reload re-reads the bound configuration file and swaps the snapshot.
// A failed reload leaves the previous snapshot in place.
func (s *Store) Reload() error {
	if s.path == "" {
		return fmt.Errorf("store is not bound to a configuration file")
	}
	cfg, err := LoadConfigWithEnvOverrides(s.path)
	if err != nil {
		return err
	}
	s.current.Store(cfg)
	return nil
}

// Credential returns the bearer token for a provider, or "" when none is
// configured. It reads the live snapshot and the environment on every call,
// so key rotation needs no restart.
func (s *Store) Credential(provider string) string {
	cfg := s.Current()

	pc, ok := cfg.Providers[provider]
	if ok && pc.APIKey != "" {
		return pc.APIKey
	}

	envVar := pc.APIKeyEnv
	if envVar == "" {
		envVar = DefaultCredentialEnv[provider]
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// BaseURLOverride returns the configured endpoint override for a provider,
// or "" to use the provider's default.
func (s *Store) BaseURLOverride(provider string) string {
	return s.Current().Providers[provider].BaseURL
}
