package award

import "sync"

// Tracker signals when all in-flight award operations for a token have
// settled. Multiple overlapping grants per token share one completion signal;
// the entry is pruned once its in-flight count drains to zero.
//
// Invariant: An entry exists iff its count is > 0.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*trackerEntry
}

type trackerEntry struct {
	count int
	done  chan struct{}
}

// drained is returned by Await when no work is tracked for a token.
var drained = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*trackerEntry)}
}

// Begin registers one in-flight award operation for tokenID and returns the
// shared completion channel, creating both lazily.
//
// Postcondition: The returned channel closes once every Begin for tokenID has
// been balanced by an End.
func (t *Tracker) Begin(tokenID string) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[tokenID]
	if !ok {
		e = &trackerEntry{done: make(chan struct{})}
		t.entries[tokenID] = e
	}
	e.count++
	return e.done
}

// End retires one in-flight operation. The completion channel closes and the
// entry is removed when the count reaches zero. An unmatched End is a no-op.
func (t *Tracker) End(tokenID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[tokenID]
	if !ok {
		return
	}
	e.count--
	if e.count <= 0 {
		close(e.done)
		delete(t.entries, tokenID)
	}
}

// Await returns the completion channel for tokenID, or an already-closed
// channel when nothing is in flight.
func (t *Tracker) Await(tokenID string) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[tokenID]; ok {
		return e.done
	}
	return drained
}
