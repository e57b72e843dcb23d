// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Retrier retries operations whose errors are classified as transient.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	retryable       func(error) bool
	logger          zerolog.Logger
}

// NewRetrier creates a Retrier with default settings. retryable decides
// which errors are worth another attempt; everything else fails at once.
func NewRetrier(logger zerolog.Logger, retryable func(error) bool) *Retrier {
	return &Retrier{
		maxRetries:      5,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     2 * time.Second,
		maxElapsedTime:  15 * time.Second,
		retryable:       retryable,
		logger:          logger,
	}
}

// WithMaxRetries sets the retry limit, not counting the first attempt.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	r.maxRetries = n
	return r
}

// Retry executes operation, backing off exponentially between retryable
// failures until it succeeds, the retry limit is hit or ctx ends.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if r.retryable == nil || !r.retryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("transient error, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}
