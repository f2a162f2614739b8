package capture

import (
	"context"
	"log"
	"time"
)

// RetryPolicy parameterizes a retryable operation: an optional settle delay
// before the first attempt, a fixed attempt ceiling and a fixed backoff
// between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	SettleDelay time.Duration
}

// DefaultFetchPolicy matches the recording-finalization race at the
// provider: the recording often is not retrievable immediately after its URL
// is delivered.
var DefaultFetchPolicy = RetryPolicy{
	MaxAttempts: 3,
	Backoff:     2 * time.Second,
	SettleDelay: time.Second,
}

// Do runs op until it succeeds, the attempts are exhausted, or ctx is done.
// The last attempt's error is returned on exhaustion.
func (p RetryPolicy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	if p.SettleDelay > 0 {
		if err := wait(ctx, p.SettleDelay); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		log.Printf("[capture] %s attempt %d/%d failed: %v", name, attempt, attempts, lastErr)
		if attempt < attempts {
			if err := wait(ctx, p.Backoff); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
