package dispatch

import (
	"fmt"
	"math"
	"net/http"
	"time"
)

// Retry budgets and backoff parameters. Cold starts get a longer, unjittered
// schedule because the wait is for a model load, not for load shedding.
const (
	maxColdRetries      = 5
	maxTransientRetries = 3

	coldBaseDelay      = 5000 * time.Millisecond
	transientBaseDelay = 1000 * time.Millisecond
	maxDelay           = 30000 * time.Millisecond
)

// coldDelay returns the cold-start backoff for the given retry index
// (0-based): min(30s, 5s × 1.5^attempt). No jitter; the schedule is
// deterministic and monotonically non-decreasing until the cap.
func coldDelay(attempt int) time.Duration {
	d := time.Duration(float64(coldBaseDelay) * math.Pow(1.5, float64(attempt)))
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// transientDelay returns the generic backoff for the given retry index:
// min(30s, 1s × 2^attempt × (0.5 + jitter)) where jitter is in [0, 1).
func transientDelay(attempt int, jitter float64) time.Duration {
	d := time.Duration(float64(transientBaseDelay) * math.Pow(2, float64(attempt)) * (0.5 + jitter))
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// retryAfterDelay parses a Retry-After header into a delay. It accepts
// delay-seconds and HTTP-date formats, returning 0 when the header is
// absent or unparseable (the caller falls back to computed backoff).
func retryAfterDelay(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
