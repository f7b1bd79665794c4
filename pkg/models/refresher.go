package models

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mosaic-hq/conduit/pkg/config"
)

// Refresher refreshes the catalog for a set of providers on a cron schedule,
// keeping lists warm so interactive calls rarely pay the fetch latency.
type Refresher struct {
	catalog   *Catalog
	providers []string
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
}

// NewRefresher creates a refresher from the catalog configuration.
func NewRefresher(catalog *Catalog, cfg *config.CatalogConfig) *Refresher {
	return &Refresher{
		catalog:   catalog,
		providers: cfg.Providers,
		schedule:  cfg.RefreshSchedule,
		cron:      cron.New(),
		logger:    slog.Default().With("component", "models.refresher"),
	}
}

// Start begins scheduled refreshes. An empty schedule is a no-op: lists are
// then fetched on demand only.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedule == "" {
		r.logger.Info("catalog refresh schedule not configured, fetching on demand")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.refreshAll(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule catalog refresh: %w", err)
	}

	r.cron.Start()
	r.running = true
	r.logger.Info("catalog refresher started",
		"schedule", r.schedule,
		"providers", r.providers,
	)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// refreshAll runs one refresh cycle across the configured providers.
// Per-provider failures are logged and do not stop the cycle.
func (r *Refresher) refreshAll(ctx context.Context) {
	for _, provider := range r.providers {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.catalog.Refresh(ctx, provider); err != nil {
			r.logger.Warn("catalog refresh failed",
				"provider", provider,
				"error", err,
			)
		}
	}
}

// Stop halts the schedule and waits for a running cycle to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done()
		r.running = false
		r.logger.Info("catalog refresher stopped")
	}
}

// IsRunning reports whether the schedule is active.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// NextRun returns the next scheduled refresh time, or nil when unscheduled.
func (r *Refresher) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
