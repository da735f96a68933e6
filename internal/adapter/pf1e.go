package adapter

import (
	"context"

	"github.com/tokenloot/tokenloot/internal/host"
)

// Pf1e implements Pathfinder 1e semantics: the strict pp/gp/sp/cp coin keys
// and a boolean equipped flag.
type Pf1e struct {
	Base
}

var pf1eCoins = []string{"pp", "gp", "sp", "cp"}

// ApplyCurrency drops any denomination outside the four coin keys.
func (a *Pf1e) ApplyCurrency(ctx context.Context, actor *host.Actor, amounts map[string]int) error {
	return applyFiltered(ctx, a.Writer, actor, amounts, pf1eCoins, nil)
}
