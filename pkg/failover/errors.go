package failover

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrUnknownModelClass is returned for class labels with no chain.
	ErrUnknownModelClass = errors.New("unknown model class")

	// ErrAllProvidersFailed is returned when every chain entry was skipped
	// or failed.
	ErrAllProvidersFailed = errors.New("all providers in chain failed")
)

// UnknownModelClassError reports a class label with no configured chain.
type UnknownModelClassError struct {
	Class string
	Known []string
}

func (e *UnknownModelClassError) Error() string {
	return fmt.Sprintf("unknown model class %q (configured classes: %s)",
		e.Class, strings.Join(e.Known, ", "))
}

func (e *UnknownModelClassError) Is(target error) bool {
	return target == ErrUnknownModelClass
}

// AttemptFailure records one failed chain entry.
type AttemptFailure struct {
	Provider string
	Model    string
	Err      error
}

// AllProvidersFailedError is returned when a chain is exhausted. It
// enumerates the full chain: every attempted entry with its failure, and
// every entry skipped for lacking credentials.
type AllProvidersFailedError struct {
	Class    string
	Attempts []AttemptFailure
	Skipped  []string
}

func (e *AllProvidersFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all providers failed for model class %q:", e.Class)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s (%s): %v", a.Provider, a.Model, a.Err)
	}
	for _, s := range e.Skipped {
		fmt.Fprintf(&b, "\n  %s: skipped (not configured)", s)
	}
	return b.String()
}

func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Unwrap exposes the last attempt's error for errors.Is/As chains.
func (e *AllProvidersFailedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
