/**
 * @description
 * A small, reusable retry policy used by the ingestion pipeline. Expressed as a
 * value rather than inlined loops so the attempt bound and delay can be shared
 * or varied, and so tests can inject a no-op sleep.
 */

package app

import (
	"context"
	"time"
)

// RetryPolicy retries an operation a fixed number of times with a fixed delay
// between attempts. There is no cancellation mid-run: once started, all
// configured attempts run to completion or exhaustion.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// Sleep is injectable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy matches the ingestion contract: three attempts, two
// seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Do runs fn until it succeeds or the attempt bound is exhausted, returning the
// last failure.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt < attempts {
			sleep(p.Delay)
		}
	}
	return lastErr
}
