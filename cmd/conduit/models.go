package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mosaic-hq/conduit/pkg/cli"
	"mosaic-hq/conduit/pkg/gateway"
)

var modelsFlags struct {
	provider string
	format   string
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List a provider's available models",
	Long: `Fetch and print the model identifiers a provider currently serves.

Examples:
  conduit models --provider openrouter
  conduit models --provider together --format json`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVarP(&modelsFlags.provider, "provider", "p", "", "provider to query")
	modelsCmd.Flags().StringVar(&modelsFlags.format, "format", "text", "output format: text, json")
	modelsCmd.MarkFlagRequired("provider")
}

func runModels(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	if err := setupLogging(store); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := gateway.New(store)
	list, err := g.Models(ctx, modelsFlags.provider)
	if err != nil {
		return cli.NewCommandError("models", err)
	}

	if modelsFlags.format == string(cli.FormatJSON) {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, list)
	}

	for _, model := range list {
		if verbose && model.OwnedBy != "" {
			fmt.Printf("%s\t(%s)\n", model.ID, model.OwnedBy)
		} else {
			fmt.Println(model.ID)
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%d models\n", len(list))
	}
	return nil
}
