// Package retry provides linear-backoff retrying for transient host mutation
// failures, such as concurrent-write conflicts from another plugin touching
// the same actor.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultAttempts is the total number of tries, including the first.
	DefaultAttempts = 3
	// DefaultBaseDelay is multiplied by the attempt number between tries.
	DefaultBaseDelay = 50 * time.Millisecond
)

// Do calls fn up to attempts times, sleeping baseDelay*attemptNumber between
// tries. The final failure's error is returned unmodified. An attempts value
// below 1 is treated as 1.
//
// Precondition: fn must be non-nil.
// Postcondition: fn was called between 1 and attempts times; a ctx
// cancellation during backoff returns ctx.Err().
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for n := 1; ; n++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if n >= attempts {
			return err
		}

		timer := time.NewTimer(baseDelay * time.Duration(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
