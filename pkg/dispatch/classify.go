package dispatch

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"mosaic-hq/conduit/pkg/providers"
)

// classification is the outcome of inspecting one HTTP response.
type classification int

const (
	// classTerminal ends the retry loop: success or hard failure.
	classTerminal classification = iota

	// classColdStart means the provider's model is still loading.
	classColdStart

	// classTransient is a generically retryable server/ratelimit status.
	classTransient
)

// retryableStatuses are retried for every provider.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// coldStartMarkers are matched case-insensitively against provider error
// text. Providers phrase "the model is not loaded yet" in English prose
// with no documented contract, so this table is deliberately the only
// place the wording lives; update it here when a provider rewords.
var coldStartMarkers = []string{
	"model is cold",
	"cold start",
	"is currently loading",
	"model is loading",
	"loading model",
	"warming up",
}

// contextLengthMarkers detect prompt-too-long errors, same caveats.
var contextLengthMarkers = []string{
	"context length",
	"context_length_exceeded",
	"maximum context",
	"too many tokens",
	"exceeds the maximum",
}

// classify decides whether a response is terminal, cold-start retryable, or
// generically retryable. Cold-start takes precedence: a 502 from a
// cold-start-prone provider with a loading marker is cold, not transient.
func classify(desc providers.Descriptor, statusCode int, body []byte) classification {
	if desc.Capabilities().ColdStartProne &&
		statusCode == desc.ColdStartStatus() &&
		hasColdStartMarker(body) {
		return classColdStart
	}
	if retryableStatuses[statusCode] {
		return classTransient
	}
	return classTerminal
}

// hasColdStartMarker reports whether the error body indicates a loading model.
func hasColdStartMarker(body []byte) bool {
	return matchesAny(body, coldStartMarkers)
}

// hasContextLengthMarker reports whether the error body indicates the prompt
// exceeded the model's context window.
func hasContextLengthMarker(body []byte) bool {
	return matchesAny(body, contextLengthMarkers)
}

// matchesAny matches markers against the raw body text and, when the body
// parses as a JSON error envelope, against its extracted message. A body
// that is not JSON at all is matched raw; classification never fails on
// junk bodies.
func matchesAny(body []byte, markers []string) bool {
	haystack := strings.ToLower(string(body) + " " + errorMessage(body))
	for _, marker := range markers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}

// errorMessage pulls a human-readable message out of a JSON error body.
// Truncated or sloppy JSON (a cut-off proxy response, trailing commas) is
// run through jsonrepair before giving up. Returns "" when no message can
// be extracted; the raw body text is still matched by the caller.
func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(body))
		if repairErr != nil {
			return ""
		}
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			return ""
		}
	}

	for _, key := range []string{"message", "detail", "error"} {
		switch v := payload[key].(type) {
		case string:
			return v
		case map[string]any:
			if msg, ok := v["message"].(string); ok {
				return msg
			}
		}
	}
	return ""
}
