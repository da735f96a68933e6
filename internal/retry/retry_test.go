package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenloot/tokenloot/internal/retry"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a success must not be retried")
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient conflict")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	last := errors.New("final failure")
	calls := 0
	err := retry.Do(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls == 3 {
			return last
		}
		return errors.New("earlier failure")
	})
	assert.Equal(t, 3, calls, "attempts bounds the total number of tries")
	assert.Same(t, last, err, "the last attempt's error is returned unmodified")
}

func TestDo_AttemptsBelowOneMeansOneTry(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), 0, time.Millisecond, func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	errs := make(chan error, 1)
	go func() {
		errs <- retry.Do(ctx, 3, time.Hour, func(context.Context) error {
			calls++
			return errors.New("transient conflict")
		})
	}()

	// Give the first attempt time to fail and enter backoff, then cancel.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls, "cancellation during backoff must not trigger another attempt")
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}
