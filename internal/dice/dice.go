// Package dice provides the randomness abstraction and roll-result types
// used by loot selection, quantity draws, and currency formulas.
package dice

import "fmt"

// RollResult holds the full audit trail for a single formula evaluation.
//
// Postcondition: Total() == sum(Dice)*Multiplier + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6*10"
	Dice       []int  // individual die results
	Multiplier int    // product applied to the dice sum (>= 1)
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the dice sum times the multiplier, plus the modifier.
//
// Postcondition: return value == sum(r.Dice)*r.Multiplier + r.Modifier.
func (r RollResult) Total() int {
	sum := 0
	for _, d := range r.Dice {
		sum += d
	}
	mult := r.Multiplier
	if mult == 0 {
		mult = 1
	}
	return sum*mult + r.Modifier
}

// String returns a human-readable audit string, e.g. "2d6*10 → [4 5] ×10 +0 = 90".
func (r RollResult) String() string {
	mult := r.Multiplier
	if mult == 0 {
		mult = 1
	}
	return fmt.Sprintf("%s → %v ×%d %+d = %d", r.Expression, r.Dice, mult, r.Modifier, r.Total())
}

// Source is the randomness provider for all loot rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
