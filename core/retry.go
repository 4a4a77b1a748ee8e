package core

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// Backoff bounds for transient-failure retries.
const (
	backoffBase   = time.Second
	backoffJitter = 500 * time.Millisecond
	backoffMax    = 30 * time.Second
)

// backoffDelay computes the exponential backoff for a retry attempt:
// min(2^attempt * 1s + random(0, 500ms), 30s). attempt starts at 0 for the
// first retry. jitter is injected so tests stay deterministic.
func backoffDelay(attempt int, jitter func() time.Duration) time.Duration {
	delay := backoffBase << uint(attempt)
	if delay <= 0 || delay > backoffMax {
		// Shift overflow past 30s lands on the cap either way.
		return backoffMax
	}
	delay += jitter()
	if delay > backoffMax {
		delay = backoffMax
	}
	return delay
}

// defaultJitter returns a random duration in [0, 500ms).
func defaultJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(backoffJitter)))
}

// parseRetryAfter interprets a Retry-After header value. An integer is a
// count of seconds; otherwise an HTTP date is converted to a non-negative
// delta from now. Unparseable values select the 60s default.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return defaultRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		delta := at.Sub(now)
		if delta < 0 {
			delta = 0
		}
		return delta
	}
	return defaultRetryAfter
}

// sleepFunc waits for a delay, honoring context cancellation.
// The client's instance is replaced in tests to avoid real timers.
type sleepFunc func(ctx context.Context, d time.Duration) error

// defaultSleep waits on a real timer.
func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
