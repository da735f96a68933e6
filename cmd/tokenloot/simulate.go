package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/award"
	"github.com/tokenloot/tokenloot/internal/currency"
	"github.com/tokenloot/tokenloot/internal/dice"
	"github.com/tokenloot/tokenloot/internal/rules"
)

func simulateCmd() *cobra.Command {
	var rulesPath string
	var groupID string
	var trials int

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Dry-run a group's loot resolution and report grant statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(rulesPath, groupID, trials)
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "rules.yaml", "path to the rule-set YAML file")
	cmd.Flags().StringVar(&groupID, "group", "", "group ID to simulate (default: every group)")
	cmd.Flags().IntVar(&trials, "trials", 1000, "number of simulated awards per group")
	return cmd
}

func runSimulate(rulesPath, groupID string, trials int) error {
	if trials < 1 {
		return fmt.Errorf("trials must be >= 1, got %d", trials)
	}

	ctx := context.Background()
	rs, err := rules.NewFileStore(rulesPath).Load(ctx)
	if err != nil {
		return err
	}

	var targets []*rules.Group
	if groupID != "" {
		g, ok := rs.Groups[groupID]
		if !ok {
			return fmt.Errorf("group %q not found in %s", groupID, rulesPath)
		}
		targets = []*rules.Group{g}
	} else {
		ids := make([]string, 0, len(rs.Groups))
		for id := range rs.Groups {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			targets = append(targets, rs.Groups[id])
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no groups in %s", rulesPath)
	}

	src := dice.NewCryptoSource()
	eval := currency.NewEvaluator(src, dice.NewLoggedRoller(src, zap.NewNop()))

	for _, g := range targets {
		simulateGroup(ctx, src, eval, g, trials)
	}
	return nil
}

// simulateGroup resolves the group's loot trials times and prints per-row
// grant frequency and mean currency yield.
func simulateGroup(ctx context.Context, src dice.Source, eval *currency.Evaluator, g *rules.Group, trials int) {
	rowHits := make(map[string]int)
	totalItems := 0
	currencyTotals := make(map[string]int)

	for i := 0; i < trials; i++ {
		loot := award.ResolveGroupLoot(src, g)
		totalItems += len(loot.Items)
		for _, sel := range loot.Items {
			rowHits[sel.Row.UUID]++
		}
		for denomination, expr := range loot.Currency {
			if expr == "" {
				continue
			}
			amount, err := eval.Evaluate(ctx, expr)
			if err != nil {
				continue
			}
			currencyTotals[denomination] += amount
		}
	}

	fmt.Fprintf(os.Stdout, "group %s (%s): %.2f items/award over %d trials\n",
		g.Name, g.ID, float64(totalItems)/float64(trials), trials)

	denominations := sortedKeys(currencyTotals)
	for _, d := range denominations {
		fmt.Fprintf(os.Stdout, "  currency %s: %.2f avg\n", d, float64(currencyTotals[d])/float64(trials))
	}

	uuids := sortedKeys(rowHits)
	for _, uuid := range uuids {
		fmt.Fprintf(os.Stdout, "  row %s: granted %.1f%%\n", uuid, 100*float64(rowHits[uuid])/float64(trials))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
