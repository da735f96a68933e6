package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression represents a parsed loot formula ready to be rolled.
// Precondition: Count >= 1, Sides >= 2, Multiplier >= 1 after successful Parse.
type Expression struct {
	Raw        string // original input string
	Count      int    // number of dice
	Sides      int    // faces per die
	Multiplier int    // product applied to the dice sum (treasure formulas like "2d6*10")
	Modifier   int    // flat modifier (may be negative)
}

// Parse parses a loot formula string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "2d6*10", "2d6*10+5"
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	raw := expr
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	// Count before 'd'; defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if n <= 0 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
		count = n
	}

	rest := s[dIdx+1:]

	// Flat modifier suffix: first '+' or '-' after the sides digits.
	modifier := 0
	for i := 1; i < len(rest); i++ {
		if rest[i] == '+' || rest[i] == '-' {
			m, err := strconv.Atoi(rest[i:])
			if err != nil {
				return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
			}
			modifier = m
			rest = rest[:i]
			break
		}
	}

	// Multiplier suffix: "NdS*K".
	multiplier := 1
	if mulIdx := strings.Index(rest, "*"); mulIdx >= 0 {
		k, err := strconv.Atoi(rest[mulIdx+1:])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid multiplier in %q: %w", raw, err)
		}
		if k < 1 {
			return Expression{}, fmt.Errorf("dice: invalid multiplier in %q: must be >= 1", raw)
		}
		multiplier = k
		rest = rest[:mulIdx]
	}

	sides, err := strconv.Atoi(rest)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	return Expression{
		Raw:        raw,
		Count:      count,
		Sides:      sides,
		Multiplier: multiplier,
		Modifier:   modifier,
	}, nil
}
