package retry

import (
	"context"
	"time"
)

// MaxDelay caps a single backoff interval.
const MaxDelay = 30 * time.Second

// ExponentialBackoff returns base * 2^attempt, capped at MaxDelay.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 20 {
		return MaxDelay
	}
	d := base * (1 << attempt)
	if d > MaxDelay || d <= 0 {
		return MaxDelay
	}
	return d
}

// Do calls fn until it succeeds or attempts are used up, waiting
// ExponentialBackoff between tries. It returns the last error, or the
// context error if ctx ends while waiting.
func Do(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ExponentialBackoff(attempt, base)):
		}
	}
	return err
}
