// Package gateway is the top-level facade over the relay: it wires the
// provider registry, retrying dispatcher, failover orchestrator, rate-limit
// tracker, and model catalog from one configuration store and exposes the
// calling surface applications use.
package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"mosaic-hq/conduit/pkg/config"
	"mosaic-hq/conduit/pkg/dispatch"
	"mosaic-hq/conduit/pkg/failover"
	"mosaic-hq/conduit/pkg/limits/ratelimit"
	"mosaic-hq/conduit/pkg/models"
	"mosaic-hq/conduit/pkg/providers"
	"mosaic-hq/conduit/pkg/stream"
	"mosaic-hq/conduit/pkg/telemetry/metrics"
	"mosaic-hq/conduit/pkg/telemetry/tracing"
)

// Gateway is the calling surface of the relay. Construct with New; safe for
// concurrent use.
type Gateway struct {
	store        *config.Store
	registry     *providers.Registry
	dispatcher   *dispatch.Dispatcher
	orchestrator *failover.Orchestrator
	tracker      *ratelimit.Tracker
	catalog      *models.Catalog
	logger       *slog.Logger
}

// Option configures a Gateway.
type Option func(*options)

type options struct {
	metrics *metrics.DispatchMetrics
	tracer  *tracing.Tracer
	logger  *slog.Logger
}

// WithMetrics attaches dispatch metrics.
func WithMetrics(m *metrics.DispatchMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer attaches a tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New wires a Gateway from the configuration store. Credentials and
// endpoint overrides are read from the store at call time, so rotations
// take effect without rebuilding the gateway.
func New(store *config.Store, opts ...Option) *Gateway {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	cfg := store.Current()
	registry := providers.NewRegistry(store.Credential, store.BaseURLOverride)
	tracker := ratelimit.NewTracker()
	dispatcher := dispatch.NewDispatcher(registry, &cfg.Dispatch, tracker,
		dispatch.WithMetrics(o.metrics),
		dispatch.WithTracer(o.tracer),
		dispatch.WithLogger(o.logger),
	)

	return &Gateway{
		store:        store,
		registry:     registry,
		dispatcher:   dispatcher,
		orchestrator: failover.NewOrchestrator(registry, dispatcher, cfg.Failover.Chains, o.logger),
		tracker:      tracker,
		catalog:      models.NewCatalog(dispatcher, cfg.Catalog.TTL),
		logger:       o.logger,
	}
}

// CallChat sends a non-streaming chat request to one named provider.
func (g *Gateway) CallChat(ctx context.Context, provider string, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	requestID := uuid.NewString()
	g.logger.Debug("chat call",
		"request_id", requestID,
		"provider", provider,
		"model", req.Model,
	)

	resp, err := g.dispatcher.ChatCompletion(ctx, provider, req)
	if err != nil {
		g.logger.Warn("chat call failed",
			"request_id", requestID,
			"provider", provider,
			"model", req.Model,
			"error", err,
		)
		return nil, err
	}
	return resp, nil
}

// StreamChat sends a streaming chat request to one named provider and
// returns a channel of normalized chunks. The channel closes when the
// stream ends; a mid-stream failure arrives as a final chunk with Err set.
func (g *Gateway) StreamChat(ctx context.Context, provider string, req *providers.ChatRequest) (<-chan providers.StreamChunk, error) {
	requestID := uuid.NewString()
	g.logger.Debug("stream call",
		"request_id", requestID,
		"provider", provider,
		"model", req.Model,
	)

	resp, err := g.dispatcher.OpenStream(ctx, provider, req)
	if err != nil {
		g.logger.Warn("stream call failed",
			"request_id", requestID,
			"provider", provider,
			"model", req.Model,
			"error", err,
		)
		return nil, err
	}

	reader := stream.NewReader(provider, req.Model, resp.Body)
	return stream.Pump(ctx, reader), nil
}

// CallFailoverChat sends a chat request down the failover chain for a
// model-class label, returning the first success tagged with the provider
// and model that served it.
func (g *Gateway) CallFailoverChat(ctx context.Context, class string, req *providers.ChatRequest) (*failover.Result, error) {
	requestID := uuid.NewString()
	g.logger.Debug("failover call",
		"request_id", requestID,
		"class", class,
	)

	result, err := g.orchestrator.Dispatch(ctx, class, req)
	if err != nil {
		g.logger.Warn("failover call failed",
			"request_id", requestID,
			"class", class,
			"error", err,
		)
		return nil, err
	}
	g.logger.Debug("failover call served",
		"request_id", requestID,
		"class", class,
		"provider", result.Provider,
		"model", result.Model,
	)
	return result, nil
}

// CallAuxiliary sends a request to an arbitrary provider endpoint with the
// same retry behavior as chat calls. A nil payload sends a GET. The caller
// owns the response body.
func (g *Gateway) CallAuxiliary(ctx context.Context, provider, path string, payload any) (*http.Response, error) {
	return g.dispatcher.Do(ctx, provider, path, payload, false)
}

// Models returns the provider's model list, from cache when fresh.
func (g *Gateway) Models(ctx context.Context, provider string) ([]models.Model, error) {
	return g.catalog.List(ctx, provider)
}

// RateLimit returns the last rate-limit state observed for a provider.
func (g *Gateway) RateLimit(provider string) (ratelimit.Snapshot, bool) {
	return g.tracker.Snapshot(provider)
}

// Registry exposes the provider registry for capability queries.
func (g *Gateway) Registry() *providers.Registry {
	return g.registry
}

// Catalog exposes the model catalog, mainly for wiring a Refresher.
func (g *Gateway) Catalog() *models.Catalog {
	return g.catalog
}
