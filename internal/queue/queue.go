// Package queue serializes award work per actor identifier. Two lifecycle
// events for the same actor never interleave their document mutations; work
// for distinct actors runs concurrently.
package queue

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ActorQueue is a per-key FIFO task serializer. Entries are created lazily on
// first enqueue and pruned once their backlog drains, so the map never grows
// beyond the set of actors with in-flight work.
//
// Invariant: For one actor ID, tasks execute in enqueue order, one at a time.
// A task's failure never prevents later tasks for that actor from running.
type ActorQueue struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  *zap.Logger
}

type entry struct {
	tasks []task
}

type task struct {
	ctx  context.Context
	run  func(context.Context) error
	done chan error
}

// NewActorQueue creates an empty ActorQueue.
//
// Precondition: logger must be non-nil.
func NewActorQueue(logger *zap.Logger) *ActorQueue {
	return &ActorQueue{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Enqueue schedules run to execute after every previously enqueued task for
// actorID has settled. The returned channel receives the task's result
// exactly once and is then closed; callers that do not care about the result
// may ignore it without leaking.
//
// Precondition: actorID must be non-empty; run must be non-nil.
func (q *ActorQueue) Enqueue(ctx context.Context, actorID string, run func(context.Context) error) <-chan error {
	t := task{ctx: ctx, run: run, done: make(chan error, 1)}

	q.mu.Lock()
	e, ok := q.entries[actorID]
	if !ok {
		e = &entry{}
		q.entries[actorID] = e
	}
	e.tasks = append(e.tasks, t)
	q.mu.Unlock()

	if !ok {
		go q.drain(actorID)
	}
	return t.done
}

// Pending reports the number of tasks queued (or running) for actorID.
// Primarily useful for observing the lazy-cleanup invariant in tests.
func (q *ActorQueue) Pending(actorID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[actorID]
	if !ok {
		return 0
	}
	return len(e.tasks)
}

// drain runs tasks for actorID until its backlog empties, then removes the
// entry and exits.
func (q *ActorQueue) drain(actorID string) {
	for {
		q.mu.Lock()
		e := q.entries[actorID]
		if len(e.tasks) == 0 {
			delete(q.entries, actorID)
			q.mu.Unlock()
			return
		}
		t := e.tasks[0]
		e.tasks = e.tasks[1:]
		q.mu.Unlock()

		err := q.runOne(t)
		if err != nil {
			q.logger.Warn("actor task failed",
				zap.String("actor_id", actorID),
				zap.Error(err),
			)
		}
		t.done <- err
		close(t.done)
	}
}

// runOne executes a single task, converting a panic into an error so one
// misbehaving task cannot take down the queue's worker.
func (q *ActorQueue) runOne(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor task panicked: %v", r)
		}
	}()
	return t.run(t.ctx)
}
