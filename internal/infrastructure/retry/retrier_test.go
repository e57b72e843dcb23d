package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errTransient = errors.New("connection refused")

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func newFastRetrier(maxRetries int) *Retrier {
	r := NewRetrier(zerolog.Nop(), isTransient).WithMaxRetries(maxRetries)
	r.initialInterval = time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second
	return r
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	r := newFastRetrier(3)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := newFastRetrier(3)
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := newFastRetrier(2)
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	r := newFastRetrier(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := r.Retry(ctx, func() error {
		attempts++
		return errTransient
	})

	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if attempts > 1 {
		t.Fatalf("expected at most one attempt, got %d", attempts)
	}
}
