package rules

import "context"

// Store persists the rule set as an opaque blob. The engine loads once per
// operation and never saves; the editor surfaces save explicitly.
type Store interface {
	// Load reads the current rule set. A missing blob yields an empty rule
	// set, not an error.
	Load(ctx context.Context) (*RuleSet, error)
	// Save atomically replaces the persisted rule set.
	Save(ctx context.Context, rs *RuleSet) error
}
