package testutil

// SeqSource is a scripted dice.Source for deterministic tests: each Intn call
// consumes the next scripted value modulo n, wrapping around when the script
// runs out. A zero-value SeqSource always returns 0.
type SeqSource struct {
	Values []int
	next   int
}

// Intn returns the next scripted value reduced into [0, n).
func (s *SeqSource) Intn(n int) int {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return ((v % n) + n) % n
}
