// Package currency evaluates currency expressions (integer literal, inclusive
// range, or dice formula) and accumulates applied amounts into a ledger.
package currency

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/tokenloot/tokenloot/internal/dice"
	"github.com/tokenloot/tokenloot/internal/host"
)

var (
	intLiteral = regexp.MustCompile(`^\s*(\d+)\s*$`)
	rangeExpr  = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)
)

// Evaluator resolves currency expressions to concrete amounts. Range draws
// use the local Source; anything that is neither a literal nor a range is
// delegated to the host's formula roller.
type Evaluator struct {
	src    dice.Source
	roller host.FormulaRoller
}

// NewEvaluator creates an Evaluator.
//
// Precondition: src and roller must be non-nil.
func NewEvaluator(src dice.Source, roller host.FormulaRoller) *Evaluator {
	return &Evaluator{src: src, roller: roller}
}

// Evaluate resolves expr to a non-negative integer amount. Classification
// order: integer literal, inclusive range "a-b" (whitespace-tolerant, bounds
// reordered if inverted), then dice formula. Formula failures and negative
// totals clamp to 0; the error is returned so callers can log and skip.
//
// Postcondition: The returned amount is >= 0.
func (e *Evaluator) Evaluate(ctx context.Context, expr string) (int, error) {
	if m := intLiteral.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("currency: literal %q overflows: %w", expr, err)
		}
		return n, nil
	}

	if m := rangeExpr.FindStringSubmatch(expr); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return dice.IntBetween(e.src, lo, hi), nil
	}

	total, err := e.roller.EvaluateFormula(ctx, expr)
	if err != nil {
		return 0, fmt.Errorf("currency: evaluating formula %q: %w", expr, err)
	}
	if total < 0 {
		total = 0
	}
	return total, nil
}

// Ledger accumulates applied currency per denomination. Zero and negative
// amounts are skipped, never written as explicit zeros.
type Ledger map[string]int

// Merge adds a non-negative amount to the running total for denomination.
func (l Ledger) Merge(denomination string, amount int) {
	if amount <= 0 {
		return
	}
	l[denomination] += amount
}
