package dice

import (
	"context"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged formula rolling.
// All rolls are logged at debug level with expression, dice values, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	result := Roll(e, r.src)
	r.logger.Debug("loot formula roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("multiplier", result.Multiplier),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// EvaluateFormula evaluates expr and clamps the total to a non-negative
// integer. It satisfies the host formula-roller contract for deployments
// where the host exposes no dice facility of its own.
func (r *Roller) EvaluateFormula(_ context.Context, expr string) (int, error) {
	result, err := r.RollExpr(expr)
	if err != nil {
		return 0, err
	}
	total := result.Total()
	if total < 0 {
		total = 0
	}
	return total, nil
}
