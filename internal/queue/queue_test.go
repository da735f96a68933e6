package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/queue"
)

func TestEnqueue_RunsTask(t *testing.T) {
	q := queue.NewActorQueue(zap.NewNop())

	ran := false
	err := <-q.Enqueue(context.Background(), "a1", func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestEnqueue_SameActorRunsInOrder(t *testing.T) {
	q := queue.NewActorQueue(zap.NewNop())

	var mu sync.Mutex
	var order []int

	record := func(n int, delay time.Duration) func(context.Context) error {
		return func(context.Context) error {
			time.Sleep(delay)
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			return nil
		}
	}

	// The first task is the slowest. If tasks interleaved, the fast ones
	// would finish first.
	first := q.Enqueue(context.Background(), "a1", record(1, 30*time.Millisecond))
	second := q.Enqueue(context.Background(), "a1", record(2, 0))
	third := q.Enqueue(context.Background(), "a1", record(3, 0))

	<-first
	<-second
	<-third

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order, "tasks for one actor must run in enqueue order")
}

func TestEnqueue_FailureDoesNotPoisonQueue(t *testing.T) {
	q := queue.NewActorQueue(zap.NewNop())

	boom := errors.New("boom")
	first := q.Enqueue(context.Background(), "a1", func(context.Context) error {
		return boom
	})
	second := q.Enqueue(context.Background(), "a1", func(context.Context) error {
		return nil
	})

	assert.ErrorIs(t, <-first, boom, "the failing task reports its own error")
	assert.NoError(t, <-second, "a ready task runs even after its predecessor failed")
}

func TestEnqueue_PanicIsContained(t *testing.T) {
	q := queue.NewActorQueue(zap.NewNop())

	first := q.Enqueue(context.Background(), "a1", func(context.Context) error {
		panic("unexpected host state")
	})
	second := q.Enqueue(context.Background(), "a1", func(context.Context) error {
		return nil
	})

	err := <-first
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.NoError(t, <-second)
}

func TestEnqueue_DistinctActorsRunConcurrently(t *testing.T) {
	q := queue.NewActorQueue(zap.NewNop())

	gate := make(chan struct{})
	blocked := q.Enqueue(context.Background(), "a1", func(context.Context) error {
		<-gate
		return nil
	})

	// A task for a different actor must complete while a1 is still blocked.
	select {
	case err := <-q.Enqueue(context.Background(), "a2", func(context.Context) error { return nil }):
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("task for a2 was blocked behind a1's work")
	}

	close(gate)
	<-blocked
}

func TestEnqueue_EntryPrunedAfterDrain(t *testing.T) {
	q := queue.NewActorQueue(zap.NewNop())

	<-q.Enqueue(context.Background(), "a1", func(context.Context) error { return nil })

	// The drain goroutine prunes the entry after the last result is
	// delivered; allow it a moment to observe the empty backlog.
	assert.Eventually(t, func() bool {
		return q.Pending("a1") == 0
	}, 2*time.Second, 5*time.Millisecond, "drained entries must be pruned")
}

func TestEnqueue_ResultChannelClosedAfterDelivery(t *testing.T) {
	q := queue.NewActorQueue(zap.NewNop())

	done := q.Enqueue(context.Background(), "a1", func(context.Context) error { return nil })
	require.NoError(t, <-done)

	_, open := <-done
	assert.False(t, open, "the result channel is closed after its single delivery")
}
