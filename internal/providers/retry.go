package providers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Retry schedule for transient provider failures. 4xx-class errors are never
// retried; see IsRetryable.
var retryDelays = []time.Duration{200 * time.Millisecond, 800 * time.Millisecond, 3200 * time.Millisecond}

// MaxAttempts is the total number of tries per provider call.
const MaxAttempts = 3

// Retry runs fn up to MaxAttempts times with exponential backoff, stopping
// early on non-retryable errors or context cancellation. The last error is
// returned when the budget is exhausted.
func Retry(ctx context.Context, log *zap.Logger, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelays[attempt-1]):
			}
			log.Warn("retrying provider call",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
		if err = fn(); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
	}
	return err
}
