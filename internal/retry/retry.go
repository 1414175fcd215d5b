// Package retry provides a small generic retry executor so that backoff
// semantics can be unit-tested independently of any provider call.
package retry

import (
	"context"
	"time"
)

// BackoffFn computes the delay before the given attempt (1-based).
type BackoffFn func(attempt int, base time.Duration) time.Duration

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay seeds the backoff function.
	BaseDelay time.Duration
	// Backoff computes per-attempt delays. Nil means ExponentialBackoff.
	Backoff BackoffFn
	// Retryable decides whether an error is worth another attempt.
	// Nil means every error is retryable.
	Retryable func(error) bool
}

// ExponentialBackoff doubles the base delay for each completed attempt.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// DefaultPolicy matches the provider retry ceiling used across the
// pipeline: 3 attempts with exponential backoff from one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Backoff:     ExponentialBackoff,
	}
}

// Do runs fn until it succeeds, the policy is exhausted, a non-retryable
// error occurs, or ctx is done. The last error is returned on failure.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := policy.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if policy.Retryable != nil && !policy.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt, policy.BaseDelay)):
		}
	}
	return lastErr
}
