package award

import (
	"github.com/tokenloot/tokenloot/internal/dice"
	"github.com/tokenloot/tokenloot/internal/rules"
	"github.com/tokenloot/tokenloot/internal/selection"
)

// SelectedRow is one loot row chosen for granting, tagged with its
// originating block's options.
type SelectedRow struct {
	Row       *rules.LootRow
	BlockID   string
	AutoEquip bool
}

// Loot is the resolved outcome of one group: selected item rows plus the
// group's currency spec. Currency expressions are passed through unevaluated
// so every apply attempt rolls them fresh.
type Loot struct {
	Currency map[string]string
	Items    []SelectedRow
}

// ResolveGroupLoot runs each distribution block's selection policy and
// flattens the results. Blocks are independent; rows without a document
// reference are filtered out before selection.
//
// Postcondition: Every returned row carries a non-empty UUID and its block's
// ID and auto-equip option.
func ResolveGroupLoot(src dice.Source, g *rules.Group) Loot {
	loot := Loot{Currency: g.Currency}

	for _, block := range g.DistributionBlocks {
		if block == nil {
			continue
		}
		valid := eligibleRows(block.Items)

		var chosen []*rules.LootRow
		switch block.Type {
		case rules.BlockAll:
			chosen = selection.All(valid)
		case rules.BlockPick:
			count := block.Count
			if count == 0 {
				count = 1
			}
			chosen = selection.Pick(src, valid, count, block.AllowDuplicates)
			if !block.AllowDuplicates {
				chosen = dedupeByUUID(chosen)
			}
		case rules.BlockChance:
			minCount, maxCount := block.ChanceMin, block.ChanceMax
			if minCount == 0 && maxCount == 0 {
				minCount, maxCount = 1, 1
			}
			chosen = selection.Chance(src, valid, selection.ChanceOptions{
				Bounded:         block.UseChanceBounds,
				Min:             minCount,
				Max:             maxCount,
				AllowDuplicates: block.AllowDuplicates,
			})
		default:
			// Unknown block types grant nothing rather than failing the group.
			continue
		}

		for _, row := range chosen {
			loot.Items = append(loot.Items, SelectedRow{
				Row:       row,
				BlockID:   block.ID,
				AutoEquip: block.AutoEquip,
			})
		}
	}
	return loot
}

func eligibleRows(rows []*rules.LootRow) []*rules.LootRow {
	out := make([]*rules.LootRow, 0, len(rows))
	for _, r := range rows {
		if r != nil && r.UUID != "" {
			out = append(out, r)
		}
	}
	return out
}

// dedupeByUUID is a final invariant check behind Pick's without-replacement
// sampling: distinct rows sharing a UUID still collapse to one grant.
func dedupeByUUID(rows []*rules.LootRow) []*rules.LootRow {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if seen[r.UUID] {
			continue
		}
		seen[r.UUID] = true
		out = append(out, r)
	}
	return out
}
