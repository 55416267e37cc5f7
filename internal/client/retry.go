package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"taskpilot/internal/config"
	"taskpilot/internal/logging"
)

// RetryConfig holds retry settings shared by the HTTP-based clients.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	RetryDelay time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum backoff delay (cap)
}

// DefaultRetryConfig returns the retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: config.DefaultMaxRetries,
		RetryDelay: config.DefaultRetryDelay,
		MaxDelay:   30 * time.Second,
	}
}

func retryConfigFrom(rc config.RetryConfig) RetryConfig {
	out := DefaultRetryConfig()
	if rc.MaxRetries > 0 {
		out.MaxRetries = rc.MaxRetries
	}
	if rc.RetryDelay > 0 {
		out.RetryDelay = rc.RetryDelay
	}
	return out
}

// CalculateBackoff calculates exponential backoff with jitter.
func CalculateBackoff(baseDelay time.Duration, attempt int, maxDelay time.Duration) time.Duration {
	// baseDelay * 2^attempt
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}

	// Up to 25% jitter
	if q := int64(delay / 4); q > 0 {
		delay += time.Duration(rand.Int63n(q))
	}
	return delay
}

// withRetry runs fn until it succeeds, fails with a non-retryable error,
// or the attempts are exhausted.
func withRetry[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(rc.RetryDelay, attempt-1, rc.MaxDelay)
			logging.Info("retrying request", "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !IsRetryableError(err) || ctx.Err() != nil {
			return zero, err
		}
		logging.Warn("request failed, will retry", "attempt", attempt, "error", err)
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", rc.MaxRetries, lastErr)
}
