package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestTracker_RecordsWhenBothHeadersPresent(t *testing.T) {
	tracker := NewTracker()

	headers := http.Header{}
	headers.Set("x-ratelimit-limit", "100")
	headers.Set("x-ratelimit-remaining", "42")
	headers.Set("x-ratelimit-reset", "30")

	snap, ok := tracker.Record("venice", headers)
	if !ok {
		t.Fatal("expected snapshot to be recorded")
	}
	if snap.Limit != 100 || snap.Remaining != 42 {
		t.Errorf("snapshot {limit=%d remaining=%d}, want {100 42}", snap.Limit, snap.Remaining)
	}
	if snap.Reset.Before(time.Now().Add(25 * time.Second)) {
		t.Errorf("expected delta-seconds reset ~30s out, got %s", time.Until(snap.Reset))
	}

	stored, ok := tracker.Snapshot("venice")
	if !ok || stored.Remaining != 42 {
		t.Errorf("stored snapshot mismatch: %+v ok=%v", stored, ok)
	}
}

func TestTracker_PartialHeadersLeaveSnapshotUntouched(t *testing.T) {
	tracker := NewTracker()

	full := http.Header{}
	full.Set("X-RateLimit-Limit", "100")
	full.Set("X-RateLimit-Remaining", "99")
	if _, ok := tracker.Record("openrouter", full); !ok {
		t.Fatal("expected initial record")
	}

	tests := []struct {
		name    string
		headers http.Header
	}{
		{"no headers", http.Header{}},
		{"limit only", http.Header{"X-Ratelimit-Limit": []string{"50"}}},
		{"remaining only", http.Header{"X-Ratelimit-Remaining": []string{"1"}}},
		{"unparseable limit", http.Header{
			"X-Ratelimit-Limit":     []string{"soon"},
			"X-Ratelimit-Remaining": []string{"1"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tracker.Record("openrouter", tt.headers); ok {
				t.Error("expected record to be skipped")
			}
			snap, _ := tracker.Snapshot("openrouter")
			if snap.Limit != 100 || snap.Remaining != 99 {
				t.Errorf("previous snapshot was clobbered: %+v", snap)
			}
		})
	}
}

func TestTracker_RequestsVariantHeaders(t *testing.T) {
	tracker := NewTracker()

	headers := http.Header{}
	headers.Set("X-RateLimit-Limit-Requests", "500")
	headers.Set("X-RateLimit-Remaining-Requests", "499")
	headers.Set("X-RateLimit-Reset-Requests", "1924992000") // epoch seconds

	snap, ok := tracker.Record("together", headers)
	if !ok {
		t.Fatal("expected -requests variant headers to be recognized")
	}
	if snap.Limit != 500 || snap.Remaining != 499 {
		t.Errorf("snapshot {limit=%d remaining=%d}, want {500 499}", snap.Limit, snap.Remaining)
	}
	if snap.Reset.Unix() != 1924992000 {
		t.Errorf("epoch-seconds reset parsed as %v", snap.Reset)
	}
}

func TestTracker_UnknownProvider(t *testing.T) {
	tracker := NewTracker()
	if _, ok := tracker.Snapshot("featherless"); ok {
		t.Error("expected unknown state for provider with no observations")
	}
}

func TestTracker_LastWriteWinsUnderConcurrency(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(remaining int) {
			defer wg.Done()
			headers := http.Header{}
			headers.Set("X-RateLimit-Limit", "100")
			headers.Set("X-RateLimit-Remaining", "1")
			tracker.Record("venice", headers)
		}(i)
	}
	wg.Wait()

	snap, ok := tracker.Snapshot("venice")
	if !ok || snap.Limit != 100 {
		t.Errorf("expected a consistent final snapshot, got %+v ok=%v", snap, ok)
	}
}
