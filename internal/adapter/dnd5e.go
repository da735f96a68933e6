package adapter

import (
	"context"
	"strings"

	"github.com/tokenloot/tokenloot/internal/host"
)

// DnD5e implements D&D 5e semantics: a boolean equipped flag on gear types
// and spell-to-scroll conversion.
type DnD5e struct {
	Base
}

var dnd5eEquippable = map[string]bool{
	"weapon":    true,
	"armor":     true,
	"equipment": true,
	"tool":      true,
	"backpack":  true,
}

// Equip sets the boolean equipped flag for equippable item types only.
func (a *DnD5e) Equip(data *host.ItemData) {
	if dnd5eEquippable[strings.ToLower(data.Type)] {
		setEquippedBool(data)
	}
}

// ConvertToConsumable builds a scroll variant of the spell document.
//
// Postcondition: The returned data has type "consumable" and carries no
// persisted identity.
func (a *DnD5e) ConvertToConsumable(_ context.Context, doc *host.Document) (*host.ItemData, error) {
	scroll := doc.Clone()
	scroll.Name = "Scroll of " + doc.Name
	scroll.Type = "consumable"
	if scroll.System == nil {
		scroll.System = map[string]any{}
	}
	scroll.System["type"] = map[string]any{"value": "scroll"}
	// Scrolls stack; spells do not carry a quantity field.
	if _, ok := scroll.System["quantity"]; !ok {
		scroll.System["quantity"] = 1
	}
	return scroll, nil
}
