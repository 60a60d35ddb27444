// Package retry retries operations with exponential backoff.
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return fetch()
//	}, retry.IsTransient)
//
// The wait before attempt n (n >= 1) is InitialBackoff * 2^(n-1), capped at
// MaxBackoff, plus a jitter that grows linearly with n. Cancelling ctx during
// a wait ends the loop with ctx.Err().
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Config defines the retry behavior.
// The zero value is not usable; MaxRetries and InitialBackoff must be set.
type Config struct {
	// MaxRetries is the maximum number of attempts.
	MaxRetries int
	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps a single wait. Zero means no cap.
	MaxBackoff time.Duration
	// Jitter adds up to this fraction of the wait (0.0 to 1.0).
	Jitter float64
}

// DefaultConfig suits talking to a local pprofd server.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     4,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Jitter:         0.2,
	}
}

// ShouldRetryFunc reports whether err is worth another attempt.
// A nil ShouldRetryFunc retries every error that is not Permanent.
type ShouldRetryFunc func(error) bool

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// IsTransient retries everything except Permanent errors and context errors.
func IsTransient(err error) bool {
	if IsPermanent(err) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Do calls fn until it succeeds, shouldRetry rejects its error, the
// attempts run out, or ctx is done.
//
// When the attempts run out the last error is returned wrapped with the
// attempt count. A Permanent error is returned unwrapped from its marker.
func Do(ctx context.Context, cfg Config, fn func() error, shouldRetry ShouldRetryFunc) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff(cfg, attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}

// backoff returns the wait before the given attempt (attempt >= 1).
func backoff(cfg Config, attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt-1)) * float64(cfg.InitialBackoff))

	if cfg.MaxBackoff > 0 && d > cfg.MaxBackoff {
		d = cfg.MaxBackoff
	}

	if cfg.Jitter > 0 && cfg.MaxRetries > 0 {
		d += time.Duration(float64(d) * cfg.Jitter * float64(attempt) / float64(cfg.MaxRetries))
	}

	return d
}
