// Package retry retries transient metadata fetch failures with exponential
// backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	JitterFactor     float64 // 0.0-1.0, spreads retries from concurrent fetches
	MaxSameErrorType int     // After N consecutive failures of one class, give up early
}

// DefaultConfig returns defaults tuned for remote FDP endpoints:
// 2 retries starting at 500ms, capped at 5s, doubling each time, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       2,
		InitialDelay:     500 * time.Millisecond,
		MaxDelay:         5 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 3,
	}
}

// RetryableError is implemented by errors that declare their own retryability.
type RetryableError interface {
	error
	IsRetryable() bool
}

// ClassifiedError is implemented by errors that name their failure class,
// e.g. "timeout" or "http_503". Consecutive failures are compared by class.
type ClassifiedError interface {
	error
	RetryClass() string
}

// transientMessages are matched against errors that declare nothing.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"timeout",
	"timed out",
	"too many requests",
	"service unavailable",
}

// IsRetryable reports whether err is worth another attempt. A RetryableError
// anywhere in the chain decides; otherwise the message is matched against
// known transient network failures. Cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// classOf returns the failure class used to detect a repeating failure.
func classOf(err error) string {
	var c ClassifiedError
	if errors.As(err, &c) {
		return c.RetryClass()
	}
	return "unclassified"
}

// backoff yields the successive waits of one retry loop.
type backoff struct {
	cfg   *Config
	delay time.Duration
}

func (b *backoff) wait(ctx context.Context) error {
	d := b.delay
	if b.cfg.JitterFactor > 0 {
		d = applyJitter(d, b.cfg.JitterFactor)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		b.delay = min(time.Duration(float64(b.delay)*b.cfg.Multiplier), b.cfg.MaxDelay)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// applyJitter returns delay +/- (delay * jitterFactor * random(-1 to +1)).
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// Do runs fn until it succeeds, fails permanently or runs out of retries.
// MaxRetries 0 means exactly one attempt. When MaxSameErrorType consecutive
// failures share a class the last one is returned wrapped, without waiting
// for the remaining retries. A context cancelled during a wait returns
// ctx.Err().
func Do[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var zero T
	b := &backoff{cfg: cfg, delay: cfg.InitialDelay}
	streak, lastClass := 0, ""

	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		if class := classOf(err); class == lastClass {
			streak++
		} else {
			streak, lastClass = 1, class
		}
		if cfg.MaxSameErrorType > 0 && streak >= cfg.MaxSameErrorType {
			return zero, fmt.Errorf("giving up after %d %s failures: %w", streak, lastClass, err)
		}

		if werr := b.wait(ctx); werr != nil {
			return zero, werr
		}
	}
}
