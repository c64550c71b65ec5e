package shared

import (
	"context"
	"time"
)

// RetryPolicy bounds how often and how patiently an operation is retried.
// The wait before attempt n+1 is Backoff * n (linear growth).
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy is used for remote storefront calls.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}

// RetryOutcome reports how a retried call ended.
type RetryOutcome struct {
	Attempts int
	Errors   []error
}

// Retry runs fn until it succeeds, the policy is exhausted or ctx is done.
// The last error is returned when every attempt failed. Errors from every
// attempt are kept in the outcome so callers can log them.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, RetryOutcome, error) {
	var (
		zero    T
		outcome RetryOutcome
	)
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			outcome.Errors = append(outcome.Errors, err)
			return zero, outcome, err
		}

		outcome.Attempts = attempt
		result, err := fn(ctx, attempt)
		if err == nil {
			return result, outcome, nil
		}
		outcome.Errors = append(outcome.Errors, err)

		if attempt == attempts {
			return zero, outcome, err
		}

		wait := policy.Backoff * time.Duration(attempt)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			outcome.Errors = append(outcome.Errors, ctx.Err())
			return zero, outcome, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, outcome, nil
}
