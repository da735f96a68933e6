// Package adapter encapsulates per-game-system semantics: how an item is
// marked equipped, how currency keys map onto the actor schema, and whether a
// spell can be turned into a consumable scroll. The award engine only ever
// holds the SystemAdapter interface; the concrete variant is chosen once at
// startup from the runtime system identifier.
package adapter

import (
	"context"

	"github.com/tokenloot/tokenloot/internal/host"
)

// SystemAdapter is the per-system capability interface.
type SystemAdapter interface {
	// Equip mutates data into the system's equipped/worn/held state. Item
	// types the system does not equip are left untouched.
	Equip(data *host.ItemData)

	// ApplyCurrency applies positive currency deltas to the actor, mapping
	// and filtering denomination keys per the system's schema.
	ApplyCurrency(ctx context.Context, actor *host.Actor, amounts map[string]int) error

	// ConvertToConsumable produces a consumable variant of a spell document,
	// or (nil, nil) when the system does not support the conversion and the
	// original data should be granted unchanged.
	ConvertToConsumable(ctx context.Context, doc *host.Document) (*host.ItemData, error)
}

// ForSystem returns the adapter for the given system identifier, falling back
// to the generic Base adapter for unknown systems.
//
// Precondition: writer must be non-nil.
func ForSystem(systemID string, writer host.CurrencyWriter) SystemAdapter {
	switch systemID {
	case "dnd5e":
		return &DnD5e{Base: Base{Writer: writer}}
	case "pf1", "pf1e":
		return &Pf1e{Base: Base{Writer: writer}}
	case "pf2e":
		return &Pf2e{Base: Base{Writer: writer}}
	case "sfrpg", "sf1e":
		return &Sf1e{Base: Base{Writer: writer}}
	case "sw5e":
		return &Sw5e{Base: Base{Writer: writer}}
	default:
		return &Base{Writer: writer}
	}
}

// Base implements generic fallback semantics: a boolean "equipped" flag when
// the schema carries one, unfiltered currency keys, and no scroll support.
type Base struct {
	Writer host.CurrencyWriter
}

// Equip sets system.equipped when it already exists as a boolean.
func (b *Base) Equip(data *host.ItemData) {
	setEquippedBool(data)
}

// ApplyCurrency forwards all positive amounts unfiltered.
func (b *Base) ApplyCurrency(ctx context.Context, actor *host.Actor, amounts map[string]int) error {
	return applyFiltered(ctx, b.Writer, actor, amounts, nil, nil)
}

// ConvertToConsumable declines: the generic system has no scroll facility.
func (b *Base) ConvertToConsumable(context.Context, *host.Document) (*host.ItemData, error) {
	return nil, nil
}

// setEquippedBool flips system.equipped when the schema models it as a bool.
func setEquippedBool(data *host.ItemData) {
	if data.System == nil {
		return
	}
	if _, ok := data.System["equipped"].(bool); ok {
		data.System["equipped"] = true
	}
}

// applyFiltered filters amounts to validKeys (nil = allow all), applies key
// aliases, and forwards the remainder to the writer. Nothing is written when
// every key filters out.
func applyFiltered(ctx context.Context, writer host.CurrencyWriter, actor *host.Actor, amounts map[string]int, validKeys []string, aliases map[string]string) error {
	valid := make(map[string]bool, len(validKeys))
	for _, k := range validKeys {
		valid[k] = true
	}

	payload := make(map[string]int)
	for key, amount := range amounts {
		if amount <= 0 {
			continue
		}
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		if validKeys != nil && !valid[key] {
			continue
		}
		payload[key] += amount
	}
	if len(payload) == 0 {
		return nil
	}
	return writer.AddCurrency(ctx, actor.ID, payload)
}
