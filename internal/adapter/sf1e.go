package adapter

import (
	"context"

	"github.com/tokenloot/tokenloot/internal/host"
)

// Sf1e implements Starfinder 1e semantics: credit/upb denominations with a
// "credits" alias.
type Sf1e struct {
	Base
}

// ApplyCurrency maps the "credits" alias onto "credit" and drops anything
// outside the credit/upb keys.
func (a *Sf1e) ApplyCurrency(ctx context.Context, actor *host.Actor, amounts map[string]int) error {
	return applyFiltered(ctx, a.Writer, actor, amounts,
		[]string{"credit", "upb"},
		map[string]string{"credits": "credit"},
	)
}
