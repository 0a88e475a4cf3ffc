// Package retry provides the optimistic-concurrency retry executor used
// around read-validate-write cycles against versioned records. Each
// attempt must re-run the whole cycle, because the validation result
// ("is there enough stock") can change between attempts.
package retry

import (
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when every attempt failed with a retryable
// error. It is distinct from business-rule failures so callers can tell
// the user to refresh and retry rather than "item unavailable".
var ErrExhausted = errors.New("retry attempts exhausted")

// Config controls the retry schedule.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultConfig is the standard schedule: 3 attempts total, sleeping
// 1s then 2s between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2,
	}
}

// Do runs op up to cfg.MaxAttempts times. When op fails with an error for
// which retryable returns true, Do sleeps for the current backoff delay
// and runs op again from scratch; any other error is returned to the
// caller immediately. No lock is held across the sleep — op re-reads
// state itself on every attempt.
func Do(cfg Config, retryable func(error) bool, op func() error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt < cfg.MaxAttempts {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * cfg.Multiplier)
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrExhausted, cfg.MaxAttempts, lastErr)
}
