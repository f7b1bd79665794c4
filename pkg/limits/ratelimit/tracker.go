// Package ratelimit tracks per-provider rate-limit state observed on
// response headers. The tracker is purely advisory: nothing in the dispatch
// path blocks on it, but callers can read snapshots to implement their own
// throttling.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Header names checked for rate-limit state. Lookup via http.Header.Get is
// case-insensitive; the -requests variants cover providers that report
// request and token limits separately.
var (
	limitHeaders     = []string{"X-RateLimit-Limit", "X-RateLimit-Limit-Requests"}
	remainingHeaders = []string{"X-RateLimit-Remaining", "X-RateLimit-Remaining-Requests"}
	resetHeaders     = []string{"X-RateLimit-Reset", "X-RateLimit-Reset-Requests"}
)

// Snapshot is the most recent rate-limit state observed for one provider.
// It reflects only the last response seen, not a sliding window.
type Snapshot struct {
	// Limit is the provider's request quota for the current window.
	Limit int64

	// Remaining is how many requests remain in the window.
	Remaining int64

	// Reset is when the window resets. Zero when the provider did not
	// report it. Advisory only.
	Reset time.Time

	// ObservedAt is when this snapshot was recorded.
	ObservedAt time.Time
}

// Tracker records per-provider rate-limit snapshots. Writes are
// last-write-wins per provider; concurrent racing writers are acceptable
// because the data is advisory. Inject one Tracker per dispatcher rather
// than sharing ambient state, so tests stay isolated.
type Tracker struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{snapshots: make(map[string]Snapshot)}
}

// Record inspects response headers and overwrites the provider's snapshot
// when both a limit and a remaining count are present. Responses missing
// either header leave the existing snapshot untouched. It reports whether
// a snapshot was recorded, and the recorded value.
func (t *Tracker) Record(provider string, headers http.Header) (Snapshot, bool) {
	limit, okLimit := firstIntHeader(headers, limitHeaders)
	remaining, okRemaining := firstIntHeader(headers, remainingHeaders)
	if !okLimit || !okRemaining {
		return Snapshot{}, false
	}

	snap := Snapshot{
		Limit:      limit,
		Remaining:  remaining,
		Reset:      parseReset(headers),
		ObservedAt: time.Now(),
	}

	t.mu.Lock()
	t.snapshots[provider] = snap
	t.mu.Unlock()

	return snap, true
}

// Snapshot returns the current snapshot for a provider. The second return
// is false when no rate-limit state has been observed for that provider.
func (t *Tracker) Snapshot(provider string) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, ok := t.snapshots[provider]
	return snap, ok
}

// Providers returns the providers with recorded snapshots.
func (t *Tracker) Providers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.snapshots))
	for name := range t.snapshots {
		names = append(names, name)
	}
	return names
}

// firstIntHeader returns the first parseable integer among the named headers.
func firstIntHeader(headers http.Header, names []string) (int64, bool) {
	for _, name := range names {
		val := headers.Get(name)
		if val == "" {
			continue
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// parseReset interprets the reset header, which providers report as epoch
// seconds, epoch milliseconds, or a delta in seconds.
func parseReset(headers http.Header) time.Time {
	for _, name := range resetHeaders {
		val := headers.Get(name)
		if val == "" {
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			continue
		}
		switch {
		case f > 1e12: // epoch milliseconds
			return time.UnixMilli(int64(f))
		case f > 1e9: // epoch seconds
			return time.Unix(int64(f), 0)
		default: // delta seconds
			return time.Now().Add(time.Duration(f * float64(time.Second)))
		}
	}
	return time.Time{}
}
