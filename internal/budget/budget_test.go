package budget

import (
	"testing"
	"time"
)

func TestTryConsumeDeniesBeyondLimit(t *testing.T) {
	tracker := NewTracker(map[string]int{"tradermade": 3})

	for i := 0; i < 3; i++ {
		if !tracker.TryConsume("tradermade") {
			t.Fatalf("call %d should have been allowed", i+1)
		}
	}
	if tracker.TryConsume("tradermade") {
		t.Error("call beyond the per-minute limit must be denied")
	}

	used, _ := tracker.Usage("tradermade")
	if used != 3 {
		t.Errorf("used = %d, want 3 (denied call must not be charged)", used)
	}
}

func TestTryConsumeUnknownProvider(t *testing.T) {
	tracker := NewTracker(map[string]int{"tradermade": 3})
	if tracker.TryConsume("unknown") {
		t.Error("provider without a configured limit must be denied")
	}
}

func TestWindowRollsOverAfterAMinute(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(map[string]int{"alphavantage": 2})
	tracker.now = func() time.Time { return now }

	if !tracker.TryConsume("alphavantage") || !tracker.TryConsume("alphavantage") {
		t.Fatal("first two calls should be allowed")
	}
	if tracker.TryConsume("alphavantage") {
		t.Fatal("third call in the window must be denied")
	}

	// 59s in the counter still holds
	now = now.Add(59 * time.Second)
	if tracker.TryConsume("alphavantage") {
		t.Error("window must not reset before a full minute has passed")
	}

	// past the reset time the window is replaced, not decremented
	now = now.Add(2 * time.Second)
	if !tracker.TryConsume("alphavantage") {
		t.Error("call after window reset should be allowed")
	}
	used, resetAt := tracker.Usage("alphavantage")
	if used != 1 {
		t.Errorf("fresh window used = %d, want 1", used)
	}
	if want := now.Add(time.Minute); !resetAt.Equal(want) {
		t.Errorf("resetAt = %s, want %s", resetAt, want)
	}
}

func TestUsageOfExpiredWindowIsZero(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(map[string]int{"finnhub": 30})
	tracker.now = func() time.Time { return now }

	tracker.TryConsume("finnhub")
	now = now.Add(2 * time.Minute)

	used, resetAt := tracker.Usage("finnhub")
	if used != 0 || !resetAt.IsZero() {
		t.Errorf("expired window must report zero usage, got used=%d resetAt=%s", used, resetAt)
	}
}

func TestUsageNeverCalled(t *testing.T) {
	tracker := NewTracker(map[string]int{"binance": 60})
	used, resetAt := tracker.Usage("binance")
	if used != 0 || !resetAt.IsZero() {
		t.Errorf("unused provider must report zero usage, got used=%d resetAt=%s", used, resetAt)
	}
}

func TestTrackersAreIndependentPerProvider(t *testing.T) {
	tracker := NewTracker(map[string]int{"a": 1, "b": 1})
	if !tracker.TryConsume("a") {
		t.Fatal("first call to a should be allowed")
	}
	if !tracker.TryConsume("b") {
		t.Error("exhausting a must not affect b")
	}
}
