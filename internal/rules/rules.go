// Package rules defines the persisted reward rule model: groups of actors
// bound to currency specs and item distribution blocks. The engine only reads
// these values; the editor UI and CLI mutate them through a Store.
package rules

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// BlockType selects the item-selection policy of a DistributionBlock.
type BlockType string

const (
	// BlockAll grants every row unconditionally.
	BlockAll BlockType = "all"
	// BlockPick grants a fixed number of uniformly chosen rows.
	BlockPick BlockType = "pick"
	// BlockChance rolls each row's percent chance independently.
	BlockChance BlockType = "chance"
)

// RuleSet is the full persisted rule configuration, keyed by group ID.
//
// Invariant: Groups[id].ID == id for every entry.
type RuleSet struct {
	// Schema is the settings-blob schema version.
	Schema int `yaml:"schema" json:"schema"`
	// Groups maps group ID to its definition.
	Groups map[string]*Group `yaml:"groups" json:"groups"`
}

// Group bundles currency rewards and distribution blocks for one or more
// qualifying actors.
type Group struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	// ActorIdentifiers lists the external identifiers that qualify an actor
	// for this group: the actor's own UUID, or a world-actor UUID whose name
	// should be matched for unlinked duplicates.
	ActorIdentifiers []string `yaml:"actor_identifiers" json:"actorIdentifiers"`
	// Currency maps denomination key to an expression string: an integer
	// literal, an inclusive range "min-max", or a dice formula. Empty values
	// contribute nothing.
	Currency map[string]string `yaml:"currency,omitempty" json:"currency,omitempty"`
	// DistributionBlocks are evaluated independently; their order matters
	// only for presentation.
	DistributionBlocks []*DistributionBlock `yaml:"distribution_blocks" json:"distributionBlocks"`
}

// DistributionBlock is one unit of item-selection policy within a group.
// Which of the optional fields are meaningful is fully determined by Type;
// the rest are carried but ignored.
type DistributionBlock struct {
	ID   string    `yaml:"id" json:"id"`
	Name string    `yaml:"name" json:"name"`
	Type BlockType `yaml:"type" json:"type"`
	// Items are the candidate rows. Rows without a UUID are never eligible.
	Items []*LootRow `yaml:"items" json:"items"`
	// Count is the number of draws for pick blocks.
	Count int `yaml:"count,omitempty" json:"count,omitempty"`
	// AllowDuplicates permits the same row to be granted more than once.
	AllowDuplicates bool `yaml:"allow_duplicates,omitempty" json:"allowDuplicates,omitempty"`
	// UseChanceBounds enables bounded chance mode with a target count drawn
	// from [ChanceMin, ChanceMax].
	UseChanceBounds bool `yaml:"use_chance_bounds,omitempty" json:"useChanceBounds,omitempty"`
	ChanceMin       int  `yaml:"chance_min,omitempty" json:"chanceMin,omitempty"`
	ChanceMax       int  `yaml:"chance_max,omitempty" json:"chanceMax,omitempty"`
	// AutoEquip marks every granted row for adapter-side equipping.
	AutoEquip bool `yaml:"auto_equip,omitempty" json:"autoEquip,omitempty"`
}

// LootRow is one candidate item reference.
type LootRow struct {
	// UUID identifies the source document. A row with an empty UUID is
	// filtered out before selection.
	UUID string `yaml:"uuid" json:"uuid"`
	// Chance is the percent probability (0-100) for chance blocks. Zero or
	// absent means the row never succeeds in chance mode.
	Chance float64 `yaml:"chance,omitempty" json:"chance,omitempty"`
	// QtyMin and QtyMax bound the granted quantity; both default to 1.
	QtyMin int `yaml:"qty_min,omitempty" json:"qtyMin,omitempty"`
	QtyMax int `yaml:"qty_max,omitempty" json:"qtyMax,omitempty"`
}

// QuantityRange returns the normalized inclusive quantity bounds, defaulting
// absent values to 1 and reordering an inverted pair.
//
// Postcondition: 1 <= lo <= hi unless both bounds were explicitly set below 1.
func (r *LootRow) QuantityRange() (lo, hi int) {
	lo, hi = r.QtyMin, r.QtyMax
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = 1
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// NewRuleSet returns an empty rule set at the current schema version.
func NewRuleSet() *RuleSet {
	return &RuleSet{Schema: 1, Groups: make(map[string]*Group)}
}

// NewGroup mints a group with a fresh unique ID.
//
// Postcondition: The returned group has a non-empty ID distinct from all
// previously minted IDs.
func NewGroup(name string) *Group {
	return &Group{
		ID:       uuid.NewString(),
		Name:     name,
		Currency: make(map[string]string),
	}
}

// NewBlock mints a distribution block with a fresh unique ID.
func NewBlock(name string, typ BlockType) *DistributionBlock {
	return &DistributionBlock{ID: uuid.NewString(), Name: name, Type: typ}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`\s+`)

// Slugify converts a display name into a lowercase hyphenated slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	return slugSpaces.ReplaceAllString(s, "-")
}

// AllActorIdentifiers returns the union of actor identifiers referenced by
// any group, for editor-side listings.
func (rs *RuleSet) AllActorIdentifiers() map[string]struct{} {
	out := make(map[string]struct{})
	for _, g := range rs.Groups {
		for _, id := range g.ActorIdentifiers {
			out[id] = struct{}{}
		}
	}
	return out
}
