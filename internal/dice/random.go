package dice

// IntBetween returns a uniformly random integer in the inclusive range
// [min(a,b), max(a,b)].
//
// Precondition: src must be non-nil.
func IntBetween(src Source, a, b int) int {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Percent reports whether an independent trial with the given percent chance
// (0-100) succeeds. A chance <= 0 never succeeds; a chance >= 100 always does.
//
// Precondition: src must be non-nil.
func Percent(src Source, chance float64) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 100 {
		return true
	}
	// Draw in [0,100) with two decimal places of resolution.
	draw := float64(src.Intn(10000)) / 100.0
	return draw < chance
}

// Shuffle permutes s in place using a Fisher-Yates walk over src.
//
// Precondition: src must be non-nil.
func Shuffle[T any](src Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
