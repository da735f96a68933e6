package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/tokenloot/tokenloot/internal/host"
)

// FakeHost is an in-memory host runtime: a document table, per-actor created
// items and currency, a world roster, and recorded grant summaries. All
// methods are safe for concurrent use.
type FakeHost struct {
	mu sync.Mutex

	Docs  map[string]*host.Document
	// World is the actor roster returned by Actors.
	World []*host.Actor

	// FailCreates and FailCurrency reject that many initial mutation calls
	// before succeeding, to exercise retry paths.
	FailCreates  int
	FailCurrency int

	created   map[string][]*host.ItemData
	currency  map[string]map[string]int
	summaries []RecordedSummary

	CreateCalls   int
	CurrencyCalls int
}

// RecordedSummary is one captured GrantSummary call.
type RecordedSummary struct {
	ActorID   string
	GroupName string
	Summary   host.Summary
}

// NewFakeHost creates an empty FakeHost.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		Docs:     make(map[string]*host.Document),
		created:  make(map[string][]*host.ItemData),
		currency: make(map[string]map[string]int),
	}
}

// AddDocument registers a source document under its UUID.
func (f *FakeHost) AddDocument(doc *host.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Docs[doc.UUID] = doc
}

// ResolveDocument implements host.DocumentSource.
func (f *FakeHost) ResolveDocument(_ context.Context, uuid string) (*host.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.Docs[uuid]
	if !ok {
		return nil, fmt.Errorf("resolving %q: %w", uuid, host.ErrNotFound)
	}
	return doc, nil
}

// CreateItems implements host.ItemWriter.
func (f *FakeHost) CreateItems(_ context.Context, actorID string, items []*host.ItemData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.FailCreates > 0 {
		f.FailCreates--
		return fmt.Errorf("transient create conflict for actor %q", actorID)
	}
	f.created[actorID] = append(f.created[actorID], items...)
	return nil
}

// AddCurrency implements host.CurrencyWriter.
func (f *FakeHost) AddCurrency(_ context.Context, actorID string, amounts map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CurrencyCalls++
	if f.FailCurrency > 0 {
		f.FailCurrency--
		return fmt.Errorf("transient currency conflict for actor %q", actorID)
	}
	if f.currency[actorID] == nil {
		f.currency[actorID] = make(map[string]int)
	}
	for k, v := range amounts {
		f.currency[actorID][k] += v
	}
	return nil
}

// Actors implements host.Roster.
func (f *FakeHost) Actors(context.Context) ([]*host.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*host.Actor, len(f.World))
	copy(out, f.World)
	return out, nil
}

// GrantSummary implements host.Notifier by recording the call.
func (f *FakeHost) GrantSummary(_ context.Context, actor *host.Actor, groupName string, summary host.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, RecordedSummary{
		ActorID:   actor.ID,
		GroupName: groupName,
		Summary:   summary,
	})
	return nil
}

// CreatedFor returns the items created on actorID so far.
func (f *FakeHost) CreatedFor(actorID string) []*host.ItemData {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*host.ItemData, len(f.created[actorID]))
	copy(out, f.created[actorID])
	return out
}

// CurrencyFor returns the accumulated currency on actorID.
func (f *FakeHost) CurrencyFor(actorID string) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.currency[actorID]))
	for k, v := range f.currency[actorID] {
		out[k] = v
	}
	return out
}

// Summaries returns the recorded grant summaries in call order.
func (f *FakeHost) Summaries() []RecordedSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedSummary, len(f.summaries))
	copy(out, f.summaries)
	return out
}
