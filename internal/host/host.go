// Package host defines the contract between the loot engine and the hosting
// tabletop runtime: document lookup, embedded-document mutation, currency
// application, dice delegation, and chat notification. The engine never talks
// to the host except through these interfaces.
package host

import (
	"context"
	"errors"
)

// ErrNotFound is returned by DocumentSource implementations when an
// identifier does not resolve to a live document.
var ErrNotFound = errors.New("host: document not found")

// DocumentSource resolves source documents by their stable identifier.
type DocumentSource interface {
	// ResolveDocument fetches a read-only snapshot of a document.
	//
	// Postcondition: Returns a non-nil Document, or ErrNotFound (possibly
	// wrapped) for a stale or invalid identifier.
	ResolveDocument(ctx context.Context, uuid string) (*Document, error)
}

// ItemWriter requests creation of embedded item documents on an actor.
// Calls may fail transiently (concurrent-write conflicts) and are retried
// by the caller.
type ItemWriter interface {
	CreateItems(ctx context.Context, actorID string, items []*ItemData) error
}

// CurrencyWriter applies currency deltas to an actor. The semantics of the
// denomination keys are owned by the active game system.
type CurrencyWriter interface {
	AddCurrency(ctx context.Context, actorID string, amounts map[string]int) error
}

// FormulaRoller evaluates an opaque dice formula to an integer total.
type FormulaRoller interface {
	EvaluateFormula(ctx context.Context, expr string) (int, error)
}

// Roster lists the world's actors, used by the name-based group fallback
// when an unlinked token duplicate has lost its source linkage.
type Roster interface {
	Actors(ctx context.Context) ([]*Actor, error)
}

// Notifier receives the per-award grant summary once all mutations for one
// group award have settled. Implementations typically post a whispered
// chat-log message; failures are logged and never abort the award.
type Notifier interface {
	GrantSummary(ctx context.Context, actor *Actor, groupName string, summary Summary) error
}

// Summary is the notifier-facing view of one award's grant log.
type Summary struct {
	Currency map[string]int
	Items    []GrantedItem
}

// GrantedItem is one created-item line in a grant summary.
type GrantedItem struct {
	Name string
	Qty  int
}
