package plugin

import (
	"context"
	"time"
)

// Sleeper is a ctx-aware delay hook, injected so tests run without real time.
type Sleeper func(ctx context.Context) error

// StaggerFor returns a Sleeper pausing for d, or nil when d is not positive.
// The pause exists purely to spread write bursts across the host's
// persistence layer; it carries no correctness weight.
func StaggerFor(d time.Duration) Sleeper {
	if d <= 0 {
		return nil
	}
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}
