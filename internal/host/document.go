package host

// Actor is the engine's view of a host actor document. Only the fields the
// engine reads are modeled; the host owns everything else.
type Actor struct {
	// ID is the actor's embedded-collection identifier.
	ID string
	// UUID is the actor's fully qualified identifier (e.g. "Actor.abc123").
	UUID string
	// Name is the display name, possibly auto-numbered ("Goblin 2").
	Name string
	// SourceID is the world-actor identifier this actor was copied from,
	// empty when the actor is not a copy.
	SourceID string
	// CompendiumSource is the compendium identifier this actor was imported
	// from, empty when not imported.
	CompendiumSource string
	// PrototypeSourceID is the source identifier recorded on the actor's
	// prototype token, empty when absent.
	PrototypeSourceID string
	// System is the game-system identifier (e.g. "dnd5e").
	System string
}

// CandidateIdentifiers returns the set of identifiers that may link this
// actor to a reward group, in match-priority order and with empty entries
// dropped.
func (a *Actor) CandidateIdentifiers() []string {
	var out []string
	for _, id := range []string{a.UUID, a.SourceID, a.CompendiumSource, a.PrototypeSourceID} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Document is a read-only snapshot of a host source document. The System and
// Flags graphs are weakly typed; absent keys mean "no effect".
type Document struct {
	ID     string
	UUID   string
	Name   string
	Type   string
	System map[string]any
	Flags  map[string]map[string]any
}

// ItemData is a detached, mutable item payload staged for creation on an
// actor. It is always produced by Document.Clone, never shared with a live
// document.
type ItemData struct {
	Name   string
	Type   string
	System map[string]any
	Flags  map[string]map[string]any
}

// Clone produces a detached ItemData with the persisted identity stripped,
// safe to mutate before creation.
//
// Postcondition: The returned value shares no mutable state with d.
func (d *Document) Clone() *ItemData {
	return &ItemData{
		Name:   d.Name,
		Type:   d.Type,
		System: cloneMap(d.System),
		Flags:  cloneFlags(d.Flags),
	}
}

// SetQuantity writes the stacked quantity if the underlying schema carries
// one. Schemas without a quantity field are left untouched.
func (it *ItemData) SetQuantity(qty int) {
	if it.System == nil {
		return
	}
	if _, ok := it.System["quantity"]; ok {
		it.System["quantity"] = qty
	}
}

// SetFlag records a value under the given scope, creating the scope lazily.
func (it *ItemData) SetFlag(scope, key string, value any) {
	if it.Flags == nil {
		it.Flags = make(map[string]map[string]any)
	}
	if it.Flags[scope] == nil {
		it.Flags[scope] = make(map[string]any)
	}
	it.Flags[scope][key] = value
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func cloneFlags(f map[string]map[string]any) map[string]map[string]any {
	if f == nil {
		return map[string]map[string]any{}
	}
	out := make(map[string]map[string]any, len(f))
	for scope, vals := range f {
		out[scope] = cloneMap(vals)
	}
	return out
}
