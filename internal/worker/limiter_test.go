package worker

import (
	"testing"
	"time"
)

func TestLimiter_AllowPerKey(t *testing.T) {
	l := NewLimiter(1, 2)

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Error("expected third request to be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other keys must have their own bucket")
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestLimiter_Refills(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(1, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("k") {
		t.Fatal("first request should pass")
	}
	if l.Allow("k") {
		t.Fatal("second request should be limited")
	}

	now = now.Add(1100 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("bucket should refill after a second")
	}
}

func TestLimiter_DefaultBurst(t *testing.T) {
	l := NewLimiter(1, 0)
	if l.defaultBurst != 5 {
		t.Errorf("defaultBurst = %d, want 5", l.defaultBurst)
	}
}

func TestLimiter_Prune(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(10 * time.Minute)
	l.Allow("fresh")

	if removed := l.Prune(5 * time.Minute); removed != 1 {
		t.Errorf("Prune() removed %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}
