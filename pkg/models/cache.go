// Package models maintains a cached catalog of the model identifiers each
// provider currently serves. Lists are fetched from the providers' /models
// endpoints, cached with a TTL, and optionally refreshed in the background
// on a cron schedule.
package models

import (
	"sync"
	"time"
)

// Model is one catalog entry. Providers report different metadata; only the
// common fields are kept.
type Model struct {
	ID            string `json:"id"`
	OwnedBy       string `json:"owned_by,omitempty"`
	ContextLength int    `json:"context_length,omitempty"`
}

// cacheEntry is one provider's cached list with its fetch time.
type cacheEntry struct {
	models    []Model
	fetchedAt time.Time
}

// Cache is a thread-safe per-provider model-list cache with TTL expiry.
// A TTL of 0 means entries never expire.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached list for a provider when present and fresh.
func (c *Cache) Get(provider string) ([]Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[provider]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().After(entry.fetchedAt.Add(c.ttl)) {
		return nil, false
	}
	return entry.models, true
}

// Set stores a provider's list, resetting its TTL clock.
func (c *Cache) Set(provider string, models []Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[provider] = cacheEntry{models: models, fetchedAt: c.now()}
}

// Invalidate drops a provider's cached list.
func (c *Cache) Invalidate(provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, provider)
}

// Providers returns the providers with cached lists, fresh or stale.
func (c *Cache) Providers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	return names
}
