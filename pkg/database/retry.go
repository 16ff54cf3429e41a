package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBaseWait = 1 * time.Second
	retryJitterFraction  = 0.25
)

// retryBackoff returns the wait before retrying attempt (0-indexed).
// Base delays are 1s, 2s, 4s with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := defaultRetryBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter
	return base + jitter
}

// isConnectionError reports whether err looks like a transient connection
// problem. SQL syntax and constraint errors never match, so they are not
// retried.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"i/o timeout",
		"connect: connection",
		"dial tcp",
		"EOF",
		"connection timed out",
		"server closed the connection unexpectedly",
		"could not connect",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// withRetry runs fn up to defaultRetryAttempts times, backing off between
// attempts. Only errors that isConnectionError accepts are retried.
func withRetry(ctx context.Context, op string, logger *slog.Logger, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < defaultRetryAttempts; attempt++ {
		if attempt > 0 {
			wait := retryBackoff(attempt - 1)
			if logger != nil {
				logger.Warn(op+" failed, retrying",
					slog.Int("attempt", attempt+1),
					slog.Int("max_attempts", defaultRetryAttempts),
					slog.Duration("backoff", wait),
					slog.String("error", lastErr.Error()),
				)
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during retry: %w", op, ctx.Err())
			case <-time.After(wait):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isConnectionError(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", op, defaultRetryAttempts, lastErr)
}
