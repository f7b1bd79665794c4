package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mosaic-hq/conduit/pkg/config"
	"mosaic-hq/conduit/pkg/failover"
	"mosaic-hq/conduit/pkg/providers"
)

// newTestGateway builds a gateway whose configured providers point at the
// given test servers. Providers absent from the map have no credential and
// are skipped by failover.
func newTestGateway(endpoints map[string]string, chains map[string][]config.ChainEntry) *Gateway {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{},
		Dispatch:  config.DispatchConfig{Timeout: 5 * time.Second},
		Failover:  config.FailoverConfig{Chains: chains},
		Catalog:   config.CatalogConfig{TTL: time.Minute},
	}
	for name, url := range endpoints {
		cfg.Providers[name] = config.ProviderConfig{APIKey: "test-key", BaseURL: url}
	}
	return New(config.NewStore(cfg))
}

func chatResponse(text string) string {
	return `{"id": "c1", "model": "m", "choices": [{"index": 0, "message": {"role": "assistant", "content": "` + text + `"}, "finish_reason": "stop"}], "usage": {"total_tokens": 3}}`
}

func TestCallChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		io.WriteString(w, chatResponse("hello there"))
	}))
	defer server.Close()

	g := newTestGateway(map[string]string{"openrouter": server.URL}, nil)
	resp, err := g.CallChat(context.Background(), "openrouter", &providers.ChatRequest{
		Model:    "test/model",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("CallChat failed: %v", err)
	}
	if resp.Text() != "hello there" {
		t.Errorf("Text() = %q", resp.Text())
	}
}

func TestStreamChat(t *testing.T) {
	payload := "data: {\"choices\":[{\"delta\":{\"content\":\"str\"}}]}\n\n" +
		": ping\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"eam\"},\"finish_reason\":\"stop\"}]}\n\n" +
		"data: [DONE]\n\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"stream":true`) {
			t.Errorf("stream flag not set on wire: %s", body)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, payload)
	}))
	defer server.Close()

	g := newTestGateway(map[string]string{"venice": server.URL}, nil)
	ch, err := g.StreamChat(context.Background(), "venice", &providers.ChatRequest{
		Model:    "test/model",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}

	var text strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("chunk error: %v", chunk.Err)
		}
		text.WriteString(chunk.Delta)
	}
	if text.String() != "stream" {
		t.Errorf("assembled = %q", text.String())
	}
}

func TestCallFailoverChat_SkipsUnconfiguredAndFailsOver(t *testing.T) {
	// featherless is unconfigured (skipped); openrouter rejects the key
	// (terminal, no retry); together serves.
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": "invalid key"}`)
	}))
	defer badServer.Close()
	goodServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, chatResponse("served"))
	}))
	defer goodServer.Close()

	chains := map[string][]config.ChainEntry{
		"fast": {
			{Provider: "featherless", Model: "f/small"},
			{Provider: "openrouter", Model: "or/small"},
			{Provider: "together", Model: "tg/small"},
		},
	}
	g := newTestGateway(map[string]string{
		"openrouter": badServer.URL,
		"together":   goodServer.URL,
	}, chains)

	result, err := g.CallFailoverChat(context.Background(), "fast", &providers.ChatRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("CallFailoverChat failed: %v", err)
	}
	if result.Provider != "together" || result.Model != "tg/small" {
		t.Errorf("served by %s/%s, want together/tg/small", result.Provider, result.Model)
	}
	if result.Response.Text() != "served" {
		t.Errorf("Text() = %q", result.Response.Text())
	}
}

func TestCallFailoverChat_UnknownClass(t *testing.T) {
	g := newTestGateway(nil, map[string][]config.ChainEntry{"fast": {}})
	_, err := g.CallFailoverChat(context.Background(), "nope", &providers.ChatRequest{})
	if !errors.Is(err, failover.ErrUnknownModelClass) {
		t.Fatalf("expected unknown-model-class, got %v", err)
	}
}

func TestCallAuxiliaryAndModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		io.WriteString(w, `{"data": [{"id": "m1"}, {"id": "m2"}]}`)
	}))
	defer server.Close()

	g := newTestGateway(map[string]string{"together": server.URL}, nil)

	resp, err := g.CallAuxiliary(context.Background(), "together", "/models", nil)
	if err != nil {
		t.Fatalf("CallAuxiliary failed: %v", err)
	}
	resp.Body.Close()

	list, err := g.Models(context.Background(), "together")
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("models = %+v", list)
	}
}

func TestRateLimitObservedThroughGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "100")
		w.Header().Set("X-RateLimit-Remaining", "99")
		io.WriteString(w, chatResponse("ok"))
	}))
	defer server.Close()

	g := newTestGateway(map[string]string{"featherless": server.URL}, nil)
	if _, err := g.CallChat(context.Background(), "featherless", &providers.ChatRequest{Model: "m"}); err != nil {
		t.Fatalf("CallChat failed: %v", err)
	}

	snap, ok := g.RateLimit("featherless")
	if !ok {
		t.Fatal("expected a rate-limit snapshot")
	}
	if snap.Remaining != 99 {
		t.Errorf("Remaining = %d", snap.Remaining)
	}
}

func TestCredentialRotationVisibleToGateway(t *testing.T) {
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		io.WriteString(w, chatResponse("ok"))
	}))
	defer server.Close()

	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"openrouter": {APIKey: "key-one", BaseURL: server.URL},
		},
		Dispatch: config.DispatchConfig{Timeout: 5 * time.Second},
	}
	store := config.NewStore(cfg)
	g := New(store)

	if _, err := g.CallChat(context.Background(), "openrouter", &providers.ChatRequest{Model: "m"}); err != nil {
		t.Fatalf("CallChat failed: %v", err)
	}
	if seenAuth != "Bearer key-one" {
		t.Errorf("Authorization = %q", seenAuth)
	}

	// Rotate the key in the store; the next call picks it up without any
	// gateway rebuild.
	rotated := *cfg
	rotated.Providers = map[string]config.ProviderConfig{
		"openrouter": {APIKey: "key-two", BaseURL: server.URL},
	}
	store.Replace(&rotated)

	if _, err := g.CallChat(context.Background(), "openrouter", &providers.ChatRequest{Model: "m"}); err != nil {
		t.Fatalf("CallChat after rotation failed: %v", err)
	}
	if seenAuth != "Bearer key-two" {
		t.Errorf("Authorization after rotation = %q", seenAuth)
	}
}
