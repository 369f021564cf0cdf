// Package retry provides a generic retry-with-exponential-backoff helper
// for calls to external providers. It is parameterized by an is-retryable
// predicate so each caller decides which failures are transient.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes the retry budget for an operation.
type Policy struct {
	MaxAttempts int           // Total attempts, including the first
	BaseDelay   time.Duration // Delay before the second attempt; doubles per retry
}

// DefaultPolicy matches the provider defaults: three attempts with a one
// second base delay (waits of ~1s then ~2s between attempts).
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
}

// Do runs fn up to policy.MaxAttempts times. After a failed attempt it
// consults retryable: a non-retryable error propagates immediately without
// further delay. Between retryable attempts it waits BaseDelay * 2^(n-1),
// honoring context cancellation during the wait. On exhaustion the last
// error is returned.
func Do(ctx context.Context, policy Policy, retryable func(error) bool, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts < 1 {
		return fmt.Errorf("retry: invalid max attempts %d", policy.MaxAttempts)
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt >= policy.MaxAttempts {
			break
		}

		delay := policy.BaseDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
