package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"mosaic-hq/conduit/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load and validate the configuration file, then report which providers
have credentials and which failover chains are usable.

Examples:
  # Validate the default config file
  conduit validate

  # Validate a specific file
  conduit validate --config /etc/conduit/conduit.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	cfg := store.Current()

	fmt.Println("✓ Configuration valid")
	fmt.Println()

	fmt.Println("Providers:")
	for _, name := range config.KnownProviderNames() {
		if store.Credential(name) != "" {
			fmt.Printf("  ✓ %s (credential configured)\n", name)
		} else {
			fmt.Printf("  - %s (no credential, will be skipped)\n", name)
		}
	}

	if len(cfg.Failover.Chains) > 0 {
		fmt.Println()
		fmt.Println("Failover chains:")
		classes := make([]string, 0, len(cfg.Failover.Chains))
		for class := range cfg.Failover.Chains {
			classes = append(classes, class)
		}
		sort.Strings(classes)
		for _, class := range classes {
			chain := cfg.Failover.Chains[class]
			usable := 0
			for _, entry := range chain {
				if store.Credential(entry.Provider) != "" {
					usable++
				}
			}
			fmt.Printf("  %s: %d entries (%d usable)\n", class, len(chain), usable)
			if verbose {
				for _, entry := range chain {
					fmt.Printf("    - %s: %s\n", entry.Provider, entry.Model)
				}
			}
		}
	}

	if cfg.Catalog.RefreshSchedule != "" {
		fmt.Println()
		fmt.Printf("Catalog refresh: %q for %v\n", cfg.Catalog.RefreshSchedule, cfg.Catalog.Providers)
	}

	return nil
}
