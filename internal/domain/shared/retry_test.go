package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("returns first success", func(t *testing.T) {
		calls := 0
		got, outcome, err := Retry(context.Background(), RetryPolicy{Attempts: 3}, func(_ context.Context, _ int) (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, outcome.Attempts)
		assert.Empty(t, outcome.Errors)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		got, outcome, err := Retry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func(_ context.Context, attempt int) (int, error) {
			if attempt < 3 {
				return 0, errBoom
			}
			return attempt, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, got)
		assert.Equal(t, 3, outcome.Attempts)
		assert.Len(t, outcome.Errors, 2)
	})

	t.Run("gives up after policy attempts", func(t *testing.T) {
		calls := 0
		_, outcome, err := Retry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func(_ context.Context, _ int) (int, error) {
			calls++
			return 0, errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 3, outcome.Attempts)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_, _, err := Retry(context.Background(), RetryPolicy{}, func(_ context.Context, _ int) (int, error) {
			calls++
			return 0, errBoom
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, _, err := Retry(ctx, RetryPolicy{Attempts: 5, Backoff: time.Hour}, func(_ context.Context, _ int) (int, error) {
			calls++
			cancel()
			return 0, errBoom
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestDomainErrorIs(t *testing.T) {
	err := NewNotFoundError("document SO1 not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, "document SO1 not found", err.Error())
}
