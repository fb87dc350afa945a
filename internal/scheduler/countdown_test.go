package scheduler_test

import (
	"testing"
	"time"

	"github.com/bulkwave/bulkwave-backend/internal/scheduler"
)

func TestCountdown(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-100 * time.Second)

	remaining, ok := scheduler.Countdown(250, &started, now)
	if !ok {
		t.Fatal("expected a countdown")
	}
	if remaining != 150 {
		t.Errorf("expected 150s remaining, got %d", remaining)
	}
}

func TestCountdownClampsToZero(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-400 * time.Second)

	remaining, ok := scheduler.Countdown(250, &started, now)
	if !ok {
		t.Fatal("expected a countdown")
	}
	if remaining != 0 {
		t.Errorf("expected clamp to 0, got %d", remaining)
	}
}

func TestCountdownFutureBaseline(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(30 * time.Second)

	// Clock skew can put started_at ahead of the reader's clock; the
	// remaining window never exceeds the estimate.
	remaining, ok := scheduler.Countdown(250, &started, now)
	if !ok {
		t.Fatal("expected a countdown")
	}
	if remaining != 250 {
		t.Errorf("expected 250s remaining, got %d", remaining)
	}
}

func TestCountdownWithoutBaseline(t *testing.T) {
	if _, ok := scheduler.Countdown(250, nil, time.Now()); ok {
		t.Error("expected no countdown when started_at is null")
	}
}
