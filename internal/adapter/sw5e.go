package adapter

import (
	"context"
	"strings"

	"github.com/tokenloot/tokenloot/internal/host"
)

// Sw5e implements SW5e semantics: galactic credits ("gc") with common
// aliases, and a boolean equipped flag on its gear types.
type Sw5e struct {
	Base
}

var sw5eEquippable = map[string]bool{
	"weapon":    true,
	"armor":     true,
	"equipment": true,
	"implant":   true,
	"shield":    true,
}

// Equip sets the boolean equipped flag for equippable item types only.
func (a *Sw5e) Equip(data *host.ItemData) {
	if sw5eEquippable[strings.ToLower(data.Type)] {
		setEquippedBool(data)
	}
}

// ApplyCurrency maps the credit aliases onto "gc"; unknown keys pass through
// so system-specific denominations keep working.
func (a *Sw5e) ApplyCurrency(ctx context.Context, actor *host.Actor, amounts map[string]int) error {
	return applyFiltered(ctx, a.Writer, actor, amounts, nil,
		map[string]string{"credits": "gc", "credit": "gc"},
	)
}
