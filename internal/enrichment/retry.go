package enrichment

import (
	"context"
	"time"
)

// retryWithBackoff runs operation up to attempts times, doubling delay after
// each failure. attempts <= 1 means a single try.
func retryWithBackoff(ctx context.Context, attempts int, delay time.Duration, operation func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil || attempt == attempts {
			break
		}

		wait := delay << (attempt - 1)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
