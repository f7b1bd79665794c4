package dispatch

import (
	"testing"

	"mosaic-hq/conduit/pkg/providers"
)

func testRegistry() *providers.Registry {
	return providers.NewRegistry(func(string) string { return "test-key" }, nil)
}

func mustLookup(t *testing.T, name string) providers.Descriptor {
	t.Helper()
	desc, err := testRegistry().Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q) failed: %v", name, err)
	}
	return desc
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		status   int
		body     string
		want     classification
	}{
		{"featherless cold 400", "featherless", 400, `{"error": "Model is Cold, please retry"}`, classColdStart},
		{"featherless 400 without marker", "featherless", 400, `{"error": "invalid request"}`, classTerminal},
		{"featherless cold marker on wrong status", "featherless", 503, "model is cold", classTransient},
		{"huggingface cold 502", "huggingface", 502, `{"error": "Model meta-llama/X is currently loading"}`, classColdStart},
		{"huggingface 502 without marker", "huggingface", 502, "bad gateway", classTransient},
		{"openrouter 502 never cold", "openrouter", 502, "model is cold", classTransient},
		{"marker case-insensitive", "featherless", 400, "MODEL IS COLD", classColdStart},
		{"429 transient", "openrouter", 429, "slow down", classTransient},
		{"500 transient", "venice", 500, "", classTransient},
		{"503 transient", "together", 503, "", classTransient},
		{"504 transient", "together", 504, "", classTransient},
		{"404 terminal", "openrouter", 404, "no such model", classTerminal},
		{"401 terminal", "openrouter", 401, "bad key", classTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := mustLookup(t, tt.provider)
			if got := classify(desc, tt.status, []byte(tt.body)); got != tt.want {
				t.Errorf("classify(%s, %d, %q) = %v, want %v", tt.provider, tt.status, tt.body, got, tt.want)
			}
		})
	}
}

func TestHasColdStartMarker_NestedJSON(t *testing.T) {
	body := `{"error": {"message": "Model is currently loading", "code": 502}}`
	if !hasColdStartMarker([]byte(body)) {
		t.Error("nested JSON error message not detected")
	}
}

func TestHasColdStartMarker_TruncatedJSON(t *testing.T) {
	// A proxy cut the body off mid-object; jsonrepair salvages the message.
	body := `{"error": {"message": "model is loading, eta 40s"`
	if !hasColdStartMarker([]byte(body)) {
		t.Error("truncated JSON error message not detected")
	}
}

func TestHasColdStartMarker_JunkBodySafe(t *testing.T) {
	bodies := []string{"", "<html>502 Bad Gateway</html>", "\x00\xff\xfe", "null"}
	for _, body := range bodies {
		if hasColdStartMarker([]byte(body)) {
			t.Errorf("junk body %q misclassified as cold start", body)
		}
	}
}

func TestHasContextLengthMarker(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"error": {"message": "This model's maximum context length is 8192 tokens", "code": "context_length_exceeded"}}`, true},
		{"prompt exceeds the maximum allowed tokens", true},
		{"TOO MANY TOKENS", true},
		{`{"error": "rate limit exceeded"}`, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := hasContextLengthMarker([]byte(tt.body)); got != tt.want {
			t.Errorf("hasContextLengthMarker(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
