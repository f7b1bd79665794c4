package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mosaic-hq/conduit/pkg/config"
	"mosaic-hq/conduit/pkg/gateway"
	"mosaic-hq/conduit/pkg/models"
	"mosaic-hq/conduit/pkg/telemetry/metrics"
	"mosaic-hq/conduit/pkg/telemetry/tracing"
)

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the relay daemon",
	Long: `Run Conduit as a long-lived process: serve the Prometheus metrics
endpoint, hot-reload the configuration file on change (credential rotation
takes effect without a restart), and refresh the model catalog on its cron
schedule.

Examples:
  # Run with the default config
  conduit run

  # Run with a specific config
  conduit run --config /etc/conduit/conduit.yaml

  # Validate config and wiring without staying up
  conduit run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without staying up")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	if runFlags.logLevel != "" {
		cfg := *store.Current()
		cfg.Telemetry.Logging.Level = runFlags.logLevel
		store.Replace(&cfg)
	}
	if err := setupLogging(store); err != nil {
		return err
	}
	cfg := store.Current()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown failed", "error", err)
		}
	}()

	// Metrics endpoint
	exporter := metrics.NewExporter(&cfg.Telemetry.Metrics)
	var metricsServer *http.Server
	if exporter != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, exporter.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		metricsServer = &http.Server{
			Addr:    cfg.Telemetry.Metrics.ListenAddress,
			Handler: mux,
		}
		go func() {
			slog.Info("metrics endpoint listening",
				"address", cfg.Telemetry.Metrics.ListenAddress,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	// Configuration hot reload (only when a file is bound)
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		watcher, err := config.NewWatcher(store, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	g := gateway.New(store,
		gateway.WithMetrics(exporter.DispatchMetrics()),
		gateway.WithTracer(tracer),
	)

	// Scheduled model-catalog refresh
	refresher := models.NewRefresher(g.Catalog(), &cfg.Catalog)
	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog refresher: %w", err)
	}
	defer refresher.Stop()

	fmt.Printf("Conduit v%s running\n", Version)
	if next := refresher.NextRun(); next != nil {
		slog.Debug("next catalog refresh", "at", next)
	}
	fmt.Println("Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Println("\nShutting down...")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics endpoint shutdown failed", "error", err)
		}
	}

	fmt.Println("✓ Stopped")
	return nil
}
