package failover

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mosaic-hq/conduit/pkg/config"
	"mosaic-hq/conduit/pkg/providers"
)

// fakeDispatcher scripts per-provider outcomes and records call order.
type fakeDispatcher struct {
	responses map[string]*providers.ChatResponse
	errs      map[string]error
	calls     []string
	models    []string
}

func (f *fakeDispatcher) ChatCompletion(_ context.Context, provider string, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	f.calls = append(f.calls, provider)
	f.models = append(f.models, req.Model)
	if err, ok := f.errs[provider]; ok {
		return nil, err
	}
	return f.responses[provider], nil
}

func newTestRegistry(configured ...string) *providers.Registry {
	keys := map[string]string{}
	for _, name := range configured {
		keys[name] = "test-key"
	}
	return providers.NewRegistry(func(name string) string { return keys[name] }, nil)
}

func okResponse(text string) *providers.ChatResponse {
	return &providers.ChatResponse{
		Choices: []providers.ChatChoice{{
			Message: providers.Message{Role: providers.RoleAssistant, Content: text},
		}},
	}
}

var testChains = map[string][]config.ChainEntry{
	"fast": {
		{Provider: "featherless", Model: "small-model"},
		{Provider: "openrouter", Model: "or/small"},
		{Provider: "together", Model: "tg/small"},
	},
}

func TestDispatch_FirstConfiguredProviderWins(t *testing.T) {
	fake := &fakeDispatcher{responses: map[string]*providers.ChatResponse{
		"featherless": okResponse("from featherless"),
	}}
	o := NewOrchestrator(newTestRegistry("featherless", "openrouter", "together"), fake, testChains, nil)

	result, err := o.Dispatch(context.Background(), "fast", &providers.ChatRequest{Model: "ignored"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Provider != "featherless" || result.Model != "small-model" {
		t.Errorf("result tagged %s/%s, want featherless/small-model", result.Provider, result.Model)
	}
	if result.Response.Text() != "from featherless" {
		t.Errorf("unexpected response: %q", result.Response.Text())
	}
	if len(fake.calls) != 1 {
		t.Errorf("expected 1 attempt, got %v", fake.calls)
	}
	if fake.models[0] != "small-model" {
		t.Errorf("chain entry model not applied: %q", fake.models[0])
	}
}

func TestDispatch_SkipsUnconfiguredProviders(t *testing.T) {
	fake := &fakeDispatcher{responses: map[string]*providers.ChatResponse{
		"together": okResponse("from together"),
	}}
	// Only together has a credential; the first two entries are skipped.
	o := NewOrchestrator(newTestRegistry("together"), fake, testChains, nil)

	result, err := o.Dispatch(context.Background(), "fast", &providers.ChatRequest{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Provider != "together" {
		t.Errorf("result provider = %s, want together", result.Provider)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "together" {
		t.Errorf("skipped providers must not be attempted, calls: %v", fake.calls)
	}
}

func TestDispatch_FailsOverOnError(t *testing.T) {
	fake := &fakeDispatcher{
		errs: map[string]error{
			"featherless": &providers.ColdStartError{Provider: "featherless", Attempts: 6},
		},
		responses: map[string]*providers.ChatResponse{
			"openrouter": okResponse("fallback"),
		},
	}
	o := NewOrchestrator(newTestRegistry("featherless", "openrouter", "together"), fake, testChains, nil)

	result, err := o.Dispatch(context.Background(), "fast", &providers.ChatRequest{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Provider != "openrouter" {
		t.Errorf("result provider = %s, want openrouter", result.Provider)
	}
	// One attempt per entry: the failed entry is not retried here.
	want := []string{"featherless", "openrouter"}
	if len(fake.calls) != 2 || fake.calls[0] != want[0] || fake.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestDispatch_AllProvidersFailedEnumeratesChain(t *testing.T) {
	fake := &fakeDispatcher{errs: map[string]error{
		"featherless": errors.New("cold forever"),
		"together":    errors.New("also down"),
	}}
	// openrouter unconfigured: skipped, not attempted.
	o := NewOrchestrator(newTestRegistry("featherless", "together"), fake, testChains, nil)

	_, err := o.Dispatch(context.Background(), "fast", &providers.ChatRequest{})
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected all-providers-failed, got %v", err)
	}

	var afe *AllProvidersFailedError
	if !errors.As(err, &afe) {
		t.Fatalf("expected *AllProvidersFailedError, got %T", err)
	}
	if afe.Class != "fast" {
		t.Errorf("Class = %q", afe.Class)
	}
	if len(afe.Attempts) != 2 {
		t.Errorf("Attempts = %+v, want 2 entries", afe.Attempts)
	}
	if len(afe.Skipped) != 1 || afe.Skipped[0] != "openrouter" {
		t.Errorf("Skipped = %v, want [openrouter]", afe.Skipped)
	}
	// The message enumerates the whole chain for diagnosis.
	msg := err.Error()
	for _, fragment := range []string{"featherless", "together", "openrouter", "skipped"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("error message missing %q: %s", fragment, msg)
		}
	}
}

func TestDispatch_UnknownModelClass(t *testing.T) {
	o := NewOrchestrator(newTestRegistry(), &fakeDispatcher{}, testChains, nil)

	_, err := o.Dispatch(context.Background(), "gigantic", &providers.ChatRequest{})
	if !errors.Is(err, ErrUnknownModelClass) {
		t.Fatalf("expected unknown-model-class, got %v", err)
	}
	var umc *UnknownModelClassError
	if !errors.As(err, &umc) {
		t.Fatalf("expected *UnknownModelClassError, got %T", err)
	}
	if len(umc.Known) != 1 || umc.Known[0] != "fast" {
		t.Errorf("Known = %v", umc.Known)
	}
}

func TestDispatch_CallerRequestNotMutated(t *testing.T) {
	fake := &fakeDispatcher{responses: map[string]*providers.ChatResponse{
		"featherless": okResponse("ok"),
	}}
	o := NewOrchestrator(newTestRegistry("featherless"), fake, testChains, nil)

	req := &providers.ChatRequest{Model: "caller-model"}
	if _, err := o.Dispatch(context.Background(), "fast", req); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if req.Model != "caller-model" {
		t.Errorf("caller request mutated: %q", req.Model)
	}
}
