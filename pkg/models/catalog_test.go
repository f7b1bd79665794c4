package models

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// fakeFetcher serves canned /models responses and counts fetches.
type fakeFetcher struct {
	status int
	body   string
	calls  atomic.Int32
}

func (f *fakeFetcher) Do(_ context.Context, _, _ string, _ any, _ bool) (*http.Response, error) {
	f.calls.Add(1)
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(f.body))),
		Header:     http.Header{},
	}, nil
}

func TestCatalog_ListFetchesAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{body: `{"data": [{"id": "m1"}, {"id": "m2", "owned_by": "acme"}]}`}
	catalog := NewCatalog(fetcher, time.Minute)

	models, err := catalog.List(context.Background(), "openrouter")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(models) != 2 || models[0].ID != "m1" || models[1].OwnedBy != "acme" {
		t.Errorf("unexpected models: %+v", models)
	}

	// Second call is a cache hit.
	if _, err := catalog.List(context.Background(), "openrouter"); err != nil {
		t.Fatalf("cached List failed: %v", err)
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}
}

func TestCatalog_BareArrayShape(t *testing.T) {
	fetcher := &fakeFetcher{body: `[{"id": "venice-model"}]`}
	catalog := NewCatalog(fetcher, time.Minute)

	models, err := catalog.List(context.Background(), "venice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(models) != 1 || models[0].ID != "venice-model" {
		t.Errorf("unexpected models: %+v", models)
	}
}

func TestCatalog_ErrorStatusSurfaced(t *testing.T) {
	fetcher := &fakeFetcher{status: http.StatusServiceUnavailable, body: "down"}
	catalog := NewCatalog(fetcher, time.Minute)

	if _, err := catalog.List(context.Background(), "together"); err == nil {
		t.Fatal("expected error for 503 model list")
	}
}

func TestCatalog_UndecodableBody(t *testing.T) {
	fetcher := &fakeFetcher{body: "<html>not json</html>"}
	catalog := NewCatalog(fetcher, time.Minute)

	if _, err := catalog.List(context.Background(), "featherless"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	cache := NewCache(time.Minute)
	clock := time.Now()
	cache.now = func() time.Time { return clock }

	cache.Set("openrouter", []Model{{ID: "m1"}})
	if _, ok := cache.Get("openrouter"); !ok {
		t.Fatal("fresh entry not found")
	}

	clock = clock.Add(2 * time.Minute)
	if _, ok := cache.Get("openrouter"); ok {
		t.Error("expired entry still served")
	}

	// Re-setting resets the TTL clock.
	cache.Set("openrouter", []Model{{ID: "m2"}})
	models, ok := cache.Get("openrouter")
	if !ok || models[0].ID != "m2" {
		t.Errorf("refreshed entry not served: %+v", models)
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	cache := NewCache(0)
	clock := time.Now()
	cache.now = func() time.Time { return clock }

	cache.Set("venice", []Model{{ID: "m"}})
	clock = clock.Add(24 * time.Hour)
	if _, ok := cache.Get("venice"); !ok {
		t.Error("zero-TTL entry expired")
	}
}

func TestCache_Invalidate(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.Set("together", []Model{{ID: "m"}})
	cache.Invalidate("together")
	if _, ok := cache.Get("together"); ok {
		t.Error("invalidated entry still served")
	}
}
