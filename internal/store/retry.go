package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy retries conflict-class store operations with exponential
// backoff. It is an explicit bounded loop, not recursive self-invocation, so
// stack usage and cancellation points stay visible. The policy is
// composable: callers wrap individual operations (property update, content
// replacement) rather than whole sequences.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the remote store's conflict semantics.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   400 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Do runs op, retrying while retryable(err) holds and attempts remain.
// Non-retryable errors propagate immediately. Retries never change results,
// only delay them.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, op func(context.Context) error, retryable func(error) bool) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.backoff(attempt)
			logger.Debug("retrying store operation",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("retry wait: %w", ctx.Err())
			}
		}
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("store operation failed after %d attempts: %w", attempts, err)
}

// backoff doubles the base delay per attempt, capped at MaxDelay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
