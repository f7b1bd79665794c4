package models

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mosaic-hq/conduit/pkg/providers"
)

// Fetcher is the dispatch capability the catalog needs for /models calls.
// *dispatch.Dispatcher satisfies it.
type Fetcher interface {
	Do(ctx context.Context, provider, path string, payload any, stream bool) (*http.Response, error)
}

// Catalog serves model lists through the cache, fetching from the provider
// on misses. Safe for concurrent use.
type Catalog struct {
	fetcher Fetcher
	cache   *Cache
	logger  *slog.Logger
}

// NewCatalog builds a catalog over the fetcher with the given cache TTL.
func NewCatalog(fetcher Fetcher, ttl time.Duration) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		cache:   NewCache(ttl),
		logger:  slog.Default().With("component", "models.catalog"),
	}
}

// List returns the provider's model list, from cache when fresh.
func (c *Catalog) List(ctx context.Context, provider string) ([]Model, error) {
	if models, ok := c.cache.Get(provider); ok {
		return models, nil
	}
	return c.Refresh(ctx, provider)
}

// Refresh fetches the provider's model list and replaces the cached copy.
// A failed fetch leaves any stale cached list in place.
func (c *Catalog) Refresh(ctx context.Context, provider string) ([]Model, error) {
	resp, err := c.fetcher.Do(ctx, provider, "/models", nil, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.ProviderError{Provider: provider, Cause: err, Body: "reading model list"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &providers.ProviderError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	models, err := decodeModelList(body)
	if err != nil {
		return nil, fmt.Errorf("decoding model list from %s: %w", provider, err)
	}

	c.cache.Set(provider, models)
	c.logger.Debug("model catalog refreshed", "provider", provider, "models", len(models))
	return models, nil
}

// Cached returns the cached list without fetching.
func (c *Catalog) Cached(provider string) ([]Model, bool) {
	return c.cache.Get(provider)
}

// decodeModelList accepts the two list shapes providers use: an OpenAI-style
// {"data": [...]} envelope or a bare JSON array.
func decodeModelList(body []byte) ([]Model, error) {
	var envelope struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var bare []Model
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}
