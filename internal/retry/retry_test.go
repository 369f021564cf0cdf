package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func alwaysRetryable(error) bool { return true }

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, alwaysRetryable, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoRecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, alwaysRetryable, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

// A forced-failing call with MaxAttempts=3 and a 10ms base delay is
// attempted exactly 3 times, with waits of ~10ms then ~20ms between
// attempts, before the last error propagates.
func TestDoExhaustsBudgetWithExponentialBackoff(t *testing.T) {
	calls := 0
	var gaps []time.Duration
	last := time.Now()

	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}, alwaysRetryable, func(ctx context.Context) error {
		now := time.Now()
		if calls > 0 {
			gaps = append(gaps, now.Sub(last))
		}
		last = now
		calls++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
	if len(gaps) != 2 {
		t.Fatalf("expected 2 inter-attempt gaps, got %d", len(gaps))
	}
	if gaps[0] < 10*time.Millisecond {
		t.Errorf("first gap %v shorter than base delay", gaps[0])
	}
	if gaps[1] < 20*time.Millisecond {
		t.Errorf("second gap %v shorter than doubled delay", gaps[1])
	}
}

func TestDoNonRetryableFailsImmediately(t *testing.T) {
	permanent := errors.New("schema mismatch")
	calls := 0

	start := time.Now()
	err := Do(context.Background(), Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}, func(err error) bool {
		return !errors.Is(err, permanent)
	}, func(ctx context.Context) error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed > 40*time.Millisecond {
		t.Errorf("non-retryable error should not wait, took %v", elapsed)
	}
}

func TestDoHonorsContextCancellationDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Second}, alwaysRetryable, func(ctx context.Context) error {
		calls++
		return errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDoRejectsInvalidPolicy(t *testing.T) {
	err := Do(context.Background(), Policy{MaxAttempts: 0}, nil, func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for zero max attempts")
	}
}
