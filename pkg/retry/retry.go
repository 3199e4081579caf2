// pkg/retry/retry.go - functions for retrying actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"
)

// permanent wraps errors that should not be retried.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err: err}
}

// RetryConfig defines the configuration for retry attempts
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64

	// OnRetry, if set, is told about every failed attempt that will be retried.
	OnRetry func(attempt, maxAttempts int, err error, wait time.Duration)
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Retry retries a given function with exponential backoff
func Retry(config RetryConfig, action func() error) error {
	interval := config.InitialInterval
	sleep := config.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	attempts := config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := action()
		if err == nil {
			return nil
		}
		lastErr = err

		var stop permanent
		if errors.As(err, &stop) {
			return stop.err
		}
		if attempt == attempts {
			break
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt, attempts, err, interval)
		}
		sleep(interval)
		if config.Multiplier > 0 {
			interval = time.Duration(float64(interval) * config.Multiplier)
		}
	}

	return fmt.Errorf("action failed after %d attempts: %w", attempts, lastErr)
}
