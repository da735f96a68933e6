// Package selection implements the three item-selection policies applied to
// a distribution block's candidate rows: all, pick, and chance. All functions
// are pure given a dice.Source and never mutate their input slice.
package selection

import (
	"github.com/tokenloot/tokenloot/internal/dice"
	"github.com/tokenloot/tokenloot/internal/rules"
)

// maxChancePasses bounds the bounded-chance shuffle loop so degenerate
// probabilities (all rows at 0%) cannot spin forever chasing an unreachable
// target.
const maxChancePasses = 1000

// All returns a shallow copy of every candidate, unconditionally.
func All(rows []*rules.LootRow) []*rules.LootRow {
	out := make([]*rules.LootRow, len(rows))
	copy(out, rows)
	return out
}

// Pick chooses count rows uniformly at random.
//
// Without duplicates it samples without replacement and returns exactly
// min(count, len(rows)) distinct rows. With duplicates it performs count
// independent draws from the full pool, so repeats are possible and the
// result may exceed the number of distinct rows.
//
// Precondition: src must be non-nil. A negative count is clamped to 0.
func Pick(src dice.Source, rows []*rules.LootRow, count int, allowDuplicates bool) []*rules.LootRow {
	if count < 0 {
		count = 0
	}
	if len(rows) == 0 || count == 0 {
		return nil
	}

	if allowDuplicates {
		out := make([]*rules.LootRow, 0, count)
		for i := 0; i < count; i++ {
			out = append(out, rows[src.Intn(len(rows))])
		}
		return out
	}

	if count > len(rows) {
		count = len(rows)
	}
	pool := make([]*rules.LootRow, len(rows))
	copy(pool, rows)
	out := make([]*rules.LootRow, 0, count)
	for i := 0; i < count; i++ {
		idx := src.Intn(len(pool))
		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return out
}

// ChanceOptions configures Chance selection.
type ChanceOptions struct {
	// Bounded switches from independent per-row trials to target-count mode.
	Bounded bool
	// Min and Max bound the target count drawn in bounded mode. Min is
	// clamped to >= 0 and Max to >= Min.
	Min int
	Max int
	// AllowDuplicates lets a row succeed more than once in bounded mode.
	AllowDuplicates bool
}

// Chance selects rows by their percent chance.
//
// Unbounded mode evaluates each row's chance exactly once as an independent
// trial and returns every success; rows never compete with each other.
//
// Bounded mode first draws a target uniformly from [Min, Max], then runs
// shuffled sweeps over the remaining pool, appending each success and (unless
// duplicates are allowed) removing it from the pool, until the target is met,
// the pool drains, or the pass ceiling trips.
//
// Precondition: src must be non-nil. A row with chance <= 0 never succeeds.
func Chance(src dice.Source, rows []*rules.LootRow, opts ChanceOptions) []*rules.LootRow {
	if !opts.Bounded {
		var out []*rules.LootRow
		for _, row := range rows {
			if dice.Percent(src, row.Chance) {
				out = append(out, row)
			}
		}
		return out
	}

	minCount := opts.Min
	if minCount < 0 {
		minCount = 0
	}
	maxCount := opts.Max
	if maxCount < minCount {
		maxCount = minCount
	}
	target := dice.IntBetween(src, minCount, maxCount)
	if target == 0 || len(rows) == 0 {
		return nil
	}

	pool := make([]*rules.LootRow, len(rows))
	copy(pool, rows)
	var out []*rules.LootRow

	for pass := 0; pass < maxChancePasses && len(out) < target; pass++ {
		order := make([]*rules.LootRow, len(pool))
		copy(order, pool)
		dice.Shuffle(src, order)

		for _, row := range order {
			if !dice.Percent(src, row.Chance) {
				continue
			}
			out = append(out, row)
			if !opts.AllowDuplicates {
				for i, p := range pool {
					if p == row {
						pool = append(pool[:i], pool[i+1:]...)
						break
					}
				}
			}
			if len(out) >= target {
				break
			}
		}
		if !opts.AllowDuplicates && len(pool) == 0 {
			break
		}
	}
	return out
}
