// Package dispatch implements the retrying HTTP dispatcher that sits between
// callers and the provider APIs. It owns the retry policy: cold-start
// retries for providers whose models load on demand, generic backoff for
// transient server and rate-limit statuses, and typed terminal errors for
// everything else. One Dispatcher is shared by all callers; it is safe for
// concurrent use.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mosaic-hq/conduit/pkg/config"
	"mosaic-hq/conduit/pkg/limits/ratelimit"
	"mosaic-hq/conduit/pkg/providers"
	"mosaic-hq/conduit/pkg/telemetry/metrics"
	"mosaic-hq/conduit/pkg/telemetry/tracing"
)

// maxErrorBody bounds how much of an error response body is read for
// classification and error reporting.
const maxErrorBody = 64 << 10

// Dispatcher sends requests to providers with retry, backoff, and rate-limit
// observation. Construct with NewDispatcher; the zero value is not usable.
type Dispatcher struct {
	registry *providers.Registry
	client   *http.Client
	tracker  *ratelimit.Tracker
	metrics  *metrics.DispatchMetrics
	tracer   *tracing.Tracer
	logger   *slog.Logger

	// jitter and sleep are injectable for deterministic tests.
	jitter func() float64
	sleep  func(ctx context.Context, d time.Duration) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics attaches dispatch metrics. A nil value disables recording.
func WithMetrics(m *metrics.DispatchMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer attaches a tracer for per-call spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher builds a dispatcher over the provider registry. The HTTP
// client's pooling and per-attempt timeout come from cfg; tracker receives
// rate-limit observations from every provider response.
func NewDispatcher(registry *providers.Registry, cfg *config.DispatchConfig, tracker *ratelimit.Tracker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		tracker:  tracker,
		logger:   slog.Default(),
		jitter:   rand.Float64,
		sleep:    waitWithContext,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
				IdleConnTimeout:     cfg.IdleConnTimeout,
			},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ChatCompletion sends a non-streaming chat request to one provider and
// decodes the response. The caller's request is never mutated; the model
// identifier is rewritten to the provider's expected form on a copy.
func (d *Dispatcher) ChatCompletion(ctx context.Context, provider string, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	desc, err := d.registry.Lookup(provider)
	if err != nil {
		return nil, err
	}

	outbound := *req
	outbound.Model = desc.RewriteModel(req.Model)
	outbound.Stream = false

	resp, err := d.Do(ctx, provider, "/chat/completions", &outbound, false)
	if err != nil {
		return nil, tagModel(err, outbound.Model)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.ProviderError{Provider: provider, Cause: err, Body: "reading response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Retry budget exhausted upstream; surface the last response as an error.
		return nil, terminalError(desc, outbound.Model, resp.StatusCode, body)
	}

	var out providers.ChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &providers.ProviderError{
			Provider: provider,
			Body:     fmt.Sprintf("undecodable completion response: %v", err),
			Cause:    err,
		}
	}
	return &out, nil
}

// OpenStream sends a streaming chat request and returns the raw response for
// SSE consumption. The caller owns the body and must close it. A 2xx
// response with no body at all is rejected as an empty stream.
func (d *Dispatcher) OpenStream(ctx context.Context, provider string, req *providers.ChatRequest) (*http.Response, error) {
	desc, err := d.registry.Lookup(provider)
	if err != nil {
		return nil, err
	}

	outbound := *req
	outbound.Model = desc.RewriteModel(req.Model)
	outbound.Stream = true

	resp, err := d.Do(ctx, provider, "/chat/completions", &outbound, true)
	if err != nil {
		return nil, tagModel(err, outbound.Model)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, terminalError(desc, outbound.Model, resp.StatusCode, body)
	}
	return resp, nil
}

// Do sends one logical request to a provider path, retrying per the
// cold-start and transient policies. On success the response is returned
// with its body unread, so streaming callers consume it directly. When the
// transient retry budget is exhausted, the last non-2xx response is returned
// unchanged (body intact) with a nil error; hard failures return typed
// errors with a nil response.
//
// payload is JSON-encoded as the request body; nil payload sends a GET.
func (d *Dispatcher) Do(ctx context.Context, provider, path string, payload any, stream bool) (*http.Response, error) {
	desc, err := d.registry.Lookup(provider)
	if err != nil {
		return nil, err
	}

	var body []byte
	method := http.MethodGet
	if payload != nil {
		method = http.MethodPost
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body for %s: %w", provider, err)
		}
	}

	ctx, span := d.startSpan(ctx, provider, path)
	defer span.End()

	start := time.Now()
	coldRetries := 0
	transientRetries := 0

	for {
		resp, err := d.attempt(ctx, desc, method, path, body, stream)
		if err != nil {
			// Transport-level failure: retryable like a 5xx unless the
			// context is already done.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if transientRetries >= maxTransientRetries {
				d.metrics.RecordError(provider, "network")
				return nil, &providers.ProviderError{Provider: provider, Body: err.Error(), Cause: err}
			}
			delay := transientDelay(transientRetries, d.jitter())
			transientRetries++
			d.logRetry(provider, path, 0, metrics.RetryReasonTransient, transientRetries, delay, err)
			if err := d.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		d.observeRateLimit(provider, resp.Header)
		span.SetAttributes(attribute.Int(tracing.AttrStatusCode, resp.StatusCode))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if stream && resp.ContentLength == 0 {
				resp.Body.Close()
				d.metrics.RecordError(provider, "empty_stream")
				return nil, &providers.EmptyStreamError{Provider: provider}
			}
			d.metrics.RecordLatency(provider, time.Since(start).Seconds())
			return resp, nil
		}

		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()

		switch classify(desc, resp.StatusCode, errBody) {
		case classColdStart:
			if coldRetries >= maxColdRetries {
				d.metrics.RecordError(provider, "cold_start")
				return nil, &providers.ColdStartError{
					Provider:   provider,
					StatusCode: resp.StatusCode,
					Attempts:   coldRetries + 1,
					Body:       string(errBody),
					Elapsed:    time.Since(start),
				}
			}
			delay := coldDelay(coldRetries)
			coldRetries++
			d.metrics.RecordRetry(provider, metrics.RetryReasonCold)
			d.logRetry(provider, path, resp.StatusCode, metrics.RetryReasonCold, coldRetries, delay, nil)
			if err := d.sleep(ctx, delay); err != nil {
				return nil, err
			}

		case classTransient:
			if transientRetries >= maxTransientRetries {
				// Budget exhausted: hand back the last response unchanged.
				resp.Body = io.NopCloser(bytes.NewReader(errBody))
				d.metrics.RecordLatency(provider, time.Since(start).Seconds())
				return resp, nil
			}
			delay := retryAfterDelay(resp.Header.Get("Retry-After"))
			if delay == 0 {
				delay = transientDelay(transientRetries, d.jitter())
			}
			transientRetries++
			d.metrics.RecordRetry(provider, metrics.RetryReasonTransient)
			d.logRetry(provider, path, resp.StatusCode, metrics.RetryReasonTransient, transientRetries, delay, nil)
			if err := d.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			err := terminalError(desc, "", resp.StatusCode, errBody)
			d.metrics.RecordError(provider, errorType(resp.StatusCode, errBody))
			return nil, err
		}
	}
}

// attempt sends a single HTTP request. The body reader is rebuilt per
// attempt so retries resend the full payload.
func (d *Dispatcher) attempt(ctx context.Context, desc providers.Descriptor, method, path string, body []byte, stream bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, desc.BaseURL()+path, reader)
	if err != nil {
		return nil, err
	}
	for key, value := range desc.Headers() {
		req.Header.Set(key, value)
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	d.metrics.RecordAttempt(desc.Name(), path)
	return d.client.Do(req)
}

// observeRateLimit records advisory rate-limit headers when present.
func (d *Dispatcher) observeRateLimit(provider string, headers http.Header) {
	if d.tracker == nil {
		return
	}
	if snap, ok := d.tracker.Record(provider, headers); ok {
		d.metrics.RecordRateLimitRemaining(provider, snap.Remaining)
	}
}

func (d *Dispatcher) startSpan(ctx context.Context, provider, path string) (context.Context, trace.Span) {
	if d.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return d.tracer.Start(ctx, "dispatch "+path,
		trace.WithAttributes(attribute.String(tracing.AttrProvider, provider)))
}

func (d *Dispatcher) logRetry(provider, path string, status int, reason string, retry int, delay time.Duration, cause error) {
	attrs := []any{
		"provider", provider,
		"path", path,
		"reason", reason,
		"retry", retry,
		"delay", delay,
	}
	if status != 0 {
		attrs = append(attrs, "status", status)
	}
	if cause != nil {
		attrs = append(attrs, "error", cause.Error())
	}
	d.logger.Warn("retrying provider request", attrs...)
}

// tagModel fills in the model on errors that carry one, for callers that
// dispatched through the generic path.
func tagModel(err error, model string) error {
	var cold *providers.ColdStartError
	if errors.As(err, &cold) && cold.Model == "" {
		cold.Model = model
	}
	var ctxLen *providers.ContextLengthError
	if errors.As(err, &ctxLen) && ctxLen.Model == "" {
		ctxLen.Model = model
	}
	return err
}

// terminalError maps a non-retryable provider response to a typed error.
func terminalError(desc providers.Descriptor, model string, statusCode int, body []byte) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return &providers.AuthError{Provider: desc.Name(), StatusCode: statusCode, Body: string(body)}
	case statusCode == 402:
		return &providers.InsufficientCreditsError{Provider: desc.Name(), Body: string(body)}
	case hasContextLengthMarker(body):
		return &providers.ContextLengthError{Provider: desc.Name(), Model: model, Body: string(body)}
	default:
		return &providers.ProviderError{Provider: desc.Name(), StatusCode: statusCode, Body: string(body)}
	}
}

// errorType labels a terminal error for the errors-by-type metric.
func errorType(statusCode int, body []byte) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 402:
		return "credits"
	case hasContextLengthMarker(body):
		return "context_length"
	default:
		return "provider"
	}
}

// waitWithContext blocks for the delay or until the context is done.
func waitWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
