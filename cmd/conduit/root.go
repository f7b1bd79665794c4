package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mosaic-hq/conduit/pkg/cli"
	"mosaic-hq/conduit/pkg/config"
	"mosaic-hq/conduit/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "conduit",
	Short: "Conduit - resilient relay for hosted model providers",
	Long: `Conduit relays chat-completion requests across hosted model providers
(OpenRouter, HuggingFace, Featherless, Venice, Together) with a single
request shape.

It provides:
  - Cold-start retry for providers that load models on demand
  - Transient retry with Retry-After-aware exponential backoff
  - Normalized streaming across provider SSE dialects
  - Failover chains keyed by abstract model-class labels
  - Advisory per-provider rate-limit tracking`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Credentials usually live in a .env file during development; a
		// missing file is fine.
		if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
			return fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "conduit.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file with provider credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadStore loads the configuration into a Store. A missing config file is
// not an error when the default path is in use: credentials then come from
// the environment on top of built-in defaults.
func loadStore() (*config.Store, error) {
	if _, err := os.Stat(cfgFile); err == nil {
		store, err := config.NewStoreFromFile(cfgFile)
		if err != nil {
			return nil, cli.NewConfigError(cfgFile, err.Error())
		}
		return store, nil
	} else if cfgFile != "conduit.yaml" {
		return nil, cli.NewConfigError(cfgFile, "file not found")
	}

	cfg, err := config.DefaultConfigWithEnvOverrides()
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return config.NewStore(cfg), nil
}

// setupLogging installs the configured logger, bumping the level to debug
// when --verbose is set.
func setupLogging(store *config.Store) error {
	cfg := store.Current().Telemetry.Logging
	if verbose {
		cfg.Level = "debug"
	}
	_, err := logging.Setup(&cfg, os.Stderr)
	return err
}
