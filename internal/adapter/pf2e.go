package adapter

import (
	"context"
	"strings"

	"github.com/tokenloot/tokenloot/internal/host"
)

// Pf2e implements Pathfinder 2e semantics: carry-state equipping
// (system.equipped.carryType) and the four coin keys.
type Pf2e struct {
	Base
}

// Equip sets the carry state: armor and equipment are worn, weapons are held
// in one hand. Other types keep their default stowed state.
func (a *Pf2e) Equip(data *host.ItemData) {
	if data.System == nil {
		return
	}
	equipped, ok := data.System["equipped"].(map[string]any)
	if !ok {
		return
	}
	switch strings.ToLower(data.Type) {
	case "armor", "equipment":
		equipped["carryType"] = "worn"
	case "weapon":
		equipped["carryType"] = "held"
		equipped["handsHeld"] = 1
	}
}

// ApplyCurrency drops any denomination outside the four coin keys.
func (a *Pf2e) ApplyCurrency(ctx context.Context, actor *host.Actor, amounts map[string]int) error {
	return applyFiltered(ctx, a.Writer, actor, amounts, []string{"pp", "gp", "sp", "cp"}, nil)
}
