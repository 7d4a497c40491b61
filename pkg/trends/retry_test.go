package trends

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRetry_SucceedsAfterRateLimits(t *testing.T) {
	retry := NewFixedRetry(RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond})

	var retried []int
	attempts, err := retry.Execute(context.Background(), func(attempt int) error {
		if attempt < 3 {
			return fmt.Errorf("explore: %w", ErrRateLimited)
		}
		return nil
	}, func(attempt int, err error) {
		retried = append(retried, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestFixedRetry_MaxAttemptsExceeded(t *testing.T) {
	retry := NewFixedRetry(RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond})

	calls := 0
	retries := 0
	attempts, err := retry.Execute(context.Background(), func(int) error {
		calls++
		return ErrRateLimited
	}, func(int, error) { retries++ })

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 5, calls)
	assert.Equal(t, 4, retries, "no wait after the final attempt")
}

func TestFixedRetry_OtherErrorsAreNotRetried(t *testing.T) {
	retry := NewFixedRetry(RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond})
	boom := errors.New("connection reset")

	calls := 0
	attempts, err := retry.Execute(context.Background(), func(int) error {
		calls++
		return boom
	}, nil)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestFixedRetry_ContextCancellation(t *testing.T) {
	retry := NewFixedRetry(RetryPolicy{MaxAttempts: 5, Delay: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := retry.Execute(ctx, func(int) error {
		return ErrRateLimited
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFixedRetry_ClampsPolicy(t *testing.T) {
	retry := NewFixedRetry(RetryPolicy{MaxAttempts: 0, Delay: -time.Second})
	assert.Equal(t, 1, retry.MaxAttempts())
	assert.Equal(t, time.Duration(0), retry.Delay())
}
