package dispatch

import (
	"net/http"
	"testing"
	"time"
)

func TestColdDelaySchedule(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 5000 * time.Millisecond},
		{1, 7500 * time.Millisecond},
		{2, 11250 * time.Millisecond},
		{3, 16875 * time.Millisecond},
		{10, maxDelay},
	}
	for _, tt := range tests {
		if got := coldDelay(tt.attempt); got != tt.want {
			t.Errorf("coldDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestTransientDelay(t *testing.T) {
	// jitter 0.5 makes the multiplier exactly 1.0.
	tests := []struct {
		attempt int
		jitter  float64
		want    time.Duration
	}{
		{0, 0.5, 1 * time.Second},
		{1, 0.5, 2 * time.Second},
		{2, 0.5, 4 * time.Second},
		{0, 0.0, 500 * time.Millisecond},
		{2, 1.0, 6 * time.Second},
		{20, 0.5, maxDelay},
	}
	for _, tt := range tests {
		if got := transientDelay(tt.attempt, tt.jitter); got != tt.want {
			t.Errorf("transientDelay(%d, %v) = %v, want %v", tt.attempt, tt.jitter, got, tt.want)
		}
	}
}

func TestTransientDelayNeverExceedsCap(t *testing.T) {
	for attempt := 0; attempt < 40; attempt++ {
		if got := transientDelay(attempt, 0.999); got > maxDelay {
			t.Fatalf("transientDelay(%d) = %v exceeds cap", attempt, got)
		}
	}
}

func TestRetryAfterDelay(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"0", 0},
		{"not-a-number", 0},
		{"-3", 0},
	}
	for _, tt := range tests {
		if got := retryAfterDelay(tt.header); got != tt.want {
			t.Errorf("retryAfterDelay(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestRetryAfterDelayHTTPDate(t *testing.T) {
	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	if got := retryAfterDelay(past); got != 0 {
		t.Errorf("past HTTP date should yield no delay, got %v", got)
	}

	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	got := retryAfterDelay(future)
	if got <= 0 || got > 10*time.Second {
		t.Errorf("future HTTP date yielded implausible delay %v", got)
	}
}
