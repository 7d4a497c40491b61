package trends

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of attempts, first one included.
	DefaultMaxAttempts = 5
	// DefaultRetryDelay is the fixed wait between rate-limited attempts.
	DefaultRetryDelay = 60 * time.Second
)

// RetryPolicy is a fixed-count, fixed-delay retry policy.
type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

// DefaultRetryPolicy returns the policy used when nothing is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay}
}

// FixedRetry retries rate-limited calls after a constant delay.
// There is no backoff and no jitter.
type FixedRetry struct {
	maxAttempts int
	delay       time.Duration
}

// NewFixedRetry creates a retry helper. maxAttempts below 1 is treated as 1.
func NewFixedRetry(policy RetryPolicy) *FixedRetry {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return &FixedRetry{
		maxAttempts: policy.MaxAttempts,
		delay:       policy.Delay,
	}
}

// MaxAttempts returns the attempt cap.
func (r *FixedRetry) MaxAttempts() int { return r.maxAttempts }

// Delay returns the wait between attempts.
func (r *FixedRetry) Delay() time.Duration { return r.delay }

// Execute calls fn until it succeeds, fails with an error other than
// ErrRateLimited, or the attempt cap is reached. onRetry runs before each
// wait, that is only when another attempt will follow. It returns the number
// of attempts made and the last error.
func (r *FixedRetry) Execute(ctx context.Context, fn func(attempt int) error, onRetry func(attempt int, err error)) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return attempt - 1, ctx.Err()
		default:
		}

		err := fn(attempt)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if !IsRateLimited(err) {
			return attempt, err
		}

		if attempt == r.maxAttempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, err)
		}

		if err := sleep(ctx, r.delay); err != nil {
			return attempt, err
		}
	}

	return r.maxAttempts, fmt.Errorf("gave up after %d attempts: %w", r.maxAttempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
