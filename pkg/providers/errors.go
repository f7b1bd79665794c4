package providers

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for errors.Is matching across the typed errors below.
var (
	// ErrUnknownProvider is returned for identifiers outside the fixed set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnauthorized covers 401 and 403 responses. Never retried.
	ErrUnauthorized = errors.New("provider rejected credentials")

	// ErrInsufficientCredits covers 402 responses. Never retried.
	ErrInsufficientCredits = errors.New("insufficient provider credits")

	// ErrContextLength is returned when the provider reports the prompt
	// exceeded the model's context window. Never retried.
	ErrContextLength = errors.New("context length exceeded")

	// ErrColdStart is returned after the cold-start retry budget is
	// exhausted while the model is still loading.
	ErrColdStart = errors.New("model cold start")

	// ErrEmptyStream is returned when a streaming request yields no body.
	ErrEmptyStream = errors.New("empty stream")
)

// UnknownProviderError is returned when a provider identifier is not among
// the configured set.
type UnknownProviderError struct {
	Provider string
	Known    []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q (known providers: %s)",
		e.Provider, strings.Join(e.Known, ", "))
}

func (e *UnknownProviderError) Is(target error) bool {
	return target == ErrUnknownProvider
}

// ProviderError is a terminal provider failure carrying the provider
// identity, HTTP status, and raw response body, per the propagation policy:
// terminal failures surface unchanged but annotated.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError is a 401/403 from the provider. Terminal, never retried.
type AuthError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed (status %d): %s",
		e.Provider, e.StatusCode, e.Body)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// InsufficientCreditsError is a 402 from the provider. Terminal.
type InsufficientCreditsError struct {
	Provider string
	Body     string
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("provider %q reports insufficient credits: %s", e.Provider, e.Body)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

// ContextLengthError reports that the prompt exceeded the model's context
// window, detected from the provider's error body. Terminal.
type ContextLengthError struct {
	Provider string
	Model    string
	Body     string
}

func (e *ContextLengthError) Error() string {
	return fmt.Sprintf("provider %q: context length exceeded for model %q: %s",
		e.Provider, e.Model, e.Body)
}

func (e *ContextLengthError) Is(target error) bool {
	return target == ErrContextLength
}

// ColdStartError is returned after exhausting the cold-start retry budget.
// Hint distinguishes "still loading" from a genuine failure for callers
// that surface messages to users.
type ColdStartError struct {
	Provider   string
	Model      string
	StatusCode int
	Attempts   int
	Body       string
	Elapsed    time.Duration
}

func (e *ColdStartError) Error() string {
	return fmt.Sprintf("provider %q: model %q still cold after %d attempts over %s (status %d): %s",
		e.Provider, e.Model, e.Attempts, e.Elapsed.Round(time.Millisecond), e.StatusCode, e.Body)
}

// Hint is the user-facing distinction between a loading model and an error.
func (e *ColdStartError) Hint() string {
	return "the model may still be loading; retrying in a minute usually succeeds"
}

func (e *ColdStartError) Is(target error) bool {
	return target == ErrColdStart
}

// EmptyStreamError is returned when a streaming request returned no body.
type EmptyStreamError struct {
	Provider string
}

func (e *EmptyStreamError) Error() string {
	return fmt.Sprintf("provider %q returned no body for a streaming request", e.Provider)
}

func (e *EmptyStreamError) Is(target error) bool {
	return target == ErrEmptyStream
}

// StreamError wraps a transport failure observed mid-stream.
type StreamError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}
