package relay

import (
	"context"
	"time"
)

// withRetry runs fn up to maxRetries+1 times with exponential backoff. Used
// only during bootstrap; within a poll cycle failures are not retried, the
// unchanged cursor retries them on the next cycle.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
		delay *= 2
	}
}
