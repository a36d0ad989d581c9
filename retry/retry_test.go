package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoReturnsLastError(t *testing.T) {
	calls := 0
	want := errors.New("still down")
	err := Do(context.Background(), fastConfig(4), func() error {
		calls++
		return want
	})

	if !errors.Is(err, want) {
		t.Errorf("Expected %v, got %v", want, err)
	}
	if calls != 4 {
		t.Errorf("Expected 4 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	transient := errors.New("transient")
	cfg := fastConfig(5)
	cfg.Retryable = func(err error) bool { return errors.Is(err, transient) }

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return errors.New("bad password")
	})

	if err == nil || calls != 1 {
		t.Errorf("Expected a single failing call, got %d calls and %v", calls, err)
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(3), func() error {
		calls++
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no calls, got %d", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("retry me")
		}
		return 42, nil
	})

	if err != nil || got != 42 {
		t.Errorf("Expected 42, got %d (%v)", got, err)
	}
}

func TestJitterStaysWithinFraction(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := jitter(base, 0.1)
		if d < 90*time.Millisecond || d > 110*time.Millisecond {
			t.Fatalf("Expected delay within 10%% of %v, got %v", base, d)
		}
	}
	if jitter(base, 0) != base {
		t.Error("Expected no jitter for zero fraction")
	}
}
