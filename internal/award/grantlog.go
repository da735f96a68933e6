// Package award resolves a group's loot into concrete grants and applies
// them to an actor through the host and system adapter.
package award

import (
	"github.com/tokenloot/tokenloot/internal/currency"
	"github.com/tokenloot/tokenloot/internal/host"
)

// GrantLog accumulates what one award operation actually applied. It is
// created fresh per award run, handed to the notifier, and discarded; it is
// never persisted and not safe for concurrent use.
type GrantLog struct {
	Currency currency.Ledger
	Items    []host.GrantedItem
}

// NewGrantLog returns an empty grant log.
func NewGrantLog() *GrantLog {
	return &GrantLog{Currency: make(currency.Ledger)}
}

// Empty reports whether nothing was granted.
func (l *GrantLog) Empty() bool {
	return len(l.Currency) == 0 && len(l.Items) == 0
}

// Summary converts the log into the notifier-facing view.
func (l *GrantLog) Summary() host.Summary {
	return host.Summary{
		Currency: map[string]int(l.Currency),
		Items:    l.Items,
	}
}
