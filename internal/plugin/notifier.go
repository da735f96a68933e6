package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/host"
)

// LogNotifier is the default host.Notifier: it writes the grant summary to
// the structured log. Hosts with a chat log supply their own Notifier.
type LogNotifier struct {
	Logger *zap.Logger
}

// GrantSummary logs one award's outcome at info level.
func (n *LogNotifier) GrantSummary(_ context.Context, actor *host.Actor, groupName string, summary host.Summary) error {
	n.Logger.Info("loot granted",
		zap.String("actor", actor.Name),
		zap.String("group", groupName),
		zap.String("summary", FormatSummary(summary)),
	)
	return nil
}

// FormatSummary renders a one-line human-readable grant summary, e.g.
// "10 GP, 3 SP; 2x Shortsword, 1x Healing Potion". An empty grant renders as
// "nothing granted".
func FormatSummary(summary host.Summary) string {
	var parts []string

	if len(summary.Currency) > 0 {
		denominations := make([]string, 0, len(summary.Currency))
		for d := range summary.Currency {
			denominations = append(denominations, d)
		}
		sort.Strings(denominations)
		coins := make([]string, 0, len(denominations))
		for _, d := range denominations {
			coins = append(coins, fmt.Sprintf("%d %s", summary.Currency[d], strings.ToUpper(d)))
		}
		parts = append(parts, strings.Join(coins, ", "))
	}

	if len(summary.Items) > 0 {
		items := make([]string, 0, len(summary.Items))
		for _, it := range summary.Items {
			items = append(items, fmt.Sprintf("%dx %s", it.Qty, it.Name))
		}
		parts = append(parts, strings.Join(items, ", "))
	}

	if len(parts) == 0 {
		return "nothing granted"
	}
	return strings.Join(parts, "; ")
}
