// Package failover routes chat requests through ordered provider chains
// keyed by abstract model-class labels. Callers ask for a class ("fast",
// "strong", "vision"); the orchestrator walks the class's chain until one
// provider produces a completion. Each chain entry gets exactly one logical
// attempt: retries within an attempt belong to the dispatcher, and a failed
// entry is never revisited.
package failover

import (
	"context"
	"log/slog"
	"sort"

	"mosaic-hq/conduit/pkg/config"
	"mosaic-hq/conduit/pkg/providers"
)

// ChatDispatcher is the dispatch capability the orchestrator needs.
// *dispatch.Dispatcher satisfies it.
type ChatDispatcher interface {
	ChatCompletion(ctx context.Context, provider string, req *providers.ChatRequest) (*providers.ChatResponse, error)
}

// Result is a successful failover dispatch, tagged with the provider and
// concrete model that actually served it.
type Result struct {
	Provider string
	Model    string
	Response *providers.ChatResponse
}

// Orchestrator walks failover chains. Safe for concurrent use; the chain
// table is immutable after construction.
type Orchestrator struct {
	registry   *providers.Registry
	dispatcher ChatDispatcher
	chains     map[string][]config.ChainEntry
	logger     *slog.Logger
}

// NewOrchestrator builds an orchestrator over the given chain table.
// logger may be nil to use the default.
func NewOrchestrator(registry *providers.Registry, dispatcher ChatDispatcher, chains map[string][]config.ChainEntry, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry:   registry,
		dispatcher: dispatcher,
		chains:     chains,
		logger:     logger,
	}
}

// Classes returns the configured model-class labels, sorted.
func (o *Orchestrator) Classes() []string {
	classes := make([]string, 0, len(o.chains))
	for class := range o.chains {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Chain returns the chain for a class label.
func (o *Orchestrator) Chain(class string) ([]config.ChainEntry, bool) {
	chain, ok := o.chains[class]
	return chain, ok
}

// Dispatch sends the request down the class's chain, returning the first
// successful completion. Entries whose provider has no credential are
// skipped without an attempt. The request's Model field is overridden by
// each chain entry; the caller's request is never mutated.
func (o *Orchestrator) Dispatch(ctx context.Context, class string, req *providers.ChatRequest) (*Result, error) {
	chain, ok := o.chains[class]
	if !ok {
		return nil, &UnknownModelClassError{Class: class, Known: o.Classes()}
	}

	var attempts []AttemptFailure
	var skipped []string

	for _, entry := range chain {
		desc, err := o.registry.Lookup(entry.Provider)
		if err != nil {
			// Chain references a provider outside the fixed set; config
			// validation catches this, but tolerate it at runtime.
			o.logger.Warn("skipping unknown provider in chain",
				"class", class, "provider", entry.Provider)
			skipped = append(skipped, entry.Provider)
			continue
		}
		if !desc.Configured() {
			o.logger.Debug("skipping unconfigured provider",
				"class", class, "provider", entry.Provider)
			skipped = append(skipped, entry.Provider)
			continue
		}

		attempt := *req
		attempt.Model = entry.Model

		resp, err := o.dispatcher.ChatCompletion(ctx, entry.Provider, &attempt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("chain entry failed, trying next",
				"class", class, "provider", entry.Provider, "model", entry.Model, "error", err)
			attempts = append(attempts, AttemptFailure{
				Provider: entry.Provider,
				Model:    entry.Model,
				Err:      err,
			})
			continue
		}

		return &Result{
			Provider: entry.Provider,
			Model:    entry.Model,
			Response: resp,
		}, nil
	}

	return nil, &AllProvidersFailedError{
		Class:    class,
		Attempts: attempts,
		Skipped:  skipped,
	}
}
