package rules

import (
	"fmt"
	"strings"
)

// Validate checks editor-side sanity invariants and reports all violations.
// Awarding itself is deliberately permissive (a partially-edited rule set
// must never block valid groups), so this is advisory and used by the CLI
// and the editor, never at award time.
//
// Postcondition: Returns nil if rs is structurally sound, or an error listing
// every violation found.
func Validate(rs *RuleSet) error {
	var errs []string

	for id, g := range rs.Groups {
		if g == nil {
			errs = append(errs, fmt.Sprintf("group %q is nil", id))
			continue
		}
		if g.ID != id {
			errs = append(errs, fmt.Sprintf("group %q has mismatched ID %q", id, g.ID))
		}
		if g.Name == "" {
			errs = append(errs, fmt.Sprintf("group %q has no name", id))
		}

		blockIDs := make(map[string]bool)
		for i, b := range g.DistributionBlocks {
			where := fmt.Sprintf("group %q block %d", id, i)
			if b == nil {
				errs = append(errs, where+" is nil")
				continue
			}
			if b.ID == "" {
				errs = append(errs, where+" has no ID")
			} else if blockIDs[b.ID] {
				errs = append(errs, fmt.Sprintf("%s duplicates block ID %q", where, b.ID))
			}
			blockIDs[b.ID] = true

			switch b.Type {
			case BlockAll, BlockPick, BlockChance:
			default:
				errs = append(errs, fmt.Sprintf("%s has unknown type %q", where, b.Type))
			}
			if b.Type == BlockPick && b.Count < 0 {
				errs = append(errs, fmt.Sprintf("%s has negative count %d", where, b.Count))
			}
			if b.UseChanceBounds && b.ChanceMax < b.ChanceMin {
				errs = append(errs, fmt.Sprintf("%s has chance bounds %d-%d out of order", where, b.ChanceMin, b.ChanceMax))
			}

			for j, row := range b.Items {
				if row == nil || row.UUID == "" {
					errs = append(errs, fmt.Sprintf("%s row %d has no document reference", where, j))
					continue
				}
				if row.Chance < 0 || row.Chance > 100 {
					errs = append(errs, fmt.Sprintf("%s row %d chance %.1f outside 0-100", where, j, row.Chance))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("rule set validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
