// Package groups matches actors to reward groups, first by identifier, then
// by a canonical-name fallback for unlinked token duplicates that have lost
// their source linkage.
package groups

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/tokenloot/tokenloot/internal/host"
	"github.com/tokenloot/tokenloot/internal/rules"
)

// worldActorPrefix marks identifiers that reference a primary world actor
// rather than a compendium entry. Only these participate in the name fallback.
const worldActorPrefix = "Actor."

var trailingNumber = regexp.MustCompile(`\s+\d+$`)

// CanonicalName strips a trailing auto-number suffix ("Goblin 2" -> "goblin")
// and lower-cases the result.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(trailingNumber.ReplaceAllString(name, "")))
}

// Resolver locates the reward groups an actor qualifies for.
type Resolver struct {
	roster host.Roster
}

// NewResolver creates a Resolver backed by the given world roster.
//
// Precondition: roster must be non-nil.
func NewResolver(roster host.Roster) *Resolver {
	return &Resolver{roster: roster}
}

// FindAll returns every group the actor qualifies for, in stable group-ID
// order. A group matches when any of the actor's candidate identifiers
// appears in its identifier list, or, failing that, when a world actor
// referenced by the group shares the actor's canonical name.
//
// Postcondition: Returns an empty slice (not nil error) when nothing matches.
func (r *Resolver) FindAll(ctx context.Context, rs *rules.RuleSet, actor *host.Actor) ([]*rules.Group, error) {
	candidates := identifierSet(actor)
	actorKey := CanonicalName(actor.Name)

	// Roster is fetched lazily: only groups that miss on identifiers need it.
	var roster []*host.Actor
	rosterLoaded := false

	var out []*rules.Group
	for _, id := range sortedGroupIDs(rs) {
		g := rs.Groups[id]
		if g == nil {
			continue
		}
		if matchesIdentifier(g, candidates) {
			out = append(out, g)
			continue
		}

		worldIDs := worldIdentifiers(g)
		if len(worldIDs) == 0 {
			continue
		}
		if !rosterLoaded {
			var err error
			roster, err = r.roster.Actors(ctx)
			if err != nil {
				return nil, err
			}
			rosterLoaded = true
		}
		if matchesByName(worldIDs, roster, actorKey) {
			out = append(out, g)
		}
	}
	return out, nil
}

// FindFirst returns the first matching group, or nil when none matches. All
// groups are tried by identifier before the name fallback is consulted,
// preserving the historical single-group resolution order.
func (r *Resolver) FindFirst(ctx context.Context, rs *rules.RuleSet, actor *host.Actor) (*rules.Group, error) {
	candidates := identifierSet(actor)
	ids := sortedGroupIDs(rs)

	for _, id := range ids {
		if g := rs.Groups[id]; g != nil && matchesIdentifier(g, candidates) {
			return g, nil
		}
	}

	// Reverse index from world-actor identifier to owning group.
	index := make(map[string]*rules.Group)
	for _, id := range ids {
		g := rs.Groups[id]
		if g == nil {
			continue
		}
		for _, wid := range worldIdentifiers(g) {
			if _, taken := index[wid]; !taken {
				index[wid] = g
			}
		}
	}
	if len(index) == 0 {
		return nil, nil
	}

	roster, err := r.roster.Actors(ctx)
	if err != nil {
		return nil, err
	}
	actorKey := CanonicalName(actor.Name)
	for _, a := range roster {
		g, ok := index[a.UUID]
		if !ok {
			continue
		}
		if CanonicalName(a.Name) == actorKey {
			return g, nil
		}
	}
	return nil, nil
}

func identifierSet(actor *host.Actor) map[string]bool {
	set := make(map[string]bool)
	for _, id := range actor.CandidateIdentifiers() {
		set[id] = true
	}
	return set
}

func matchesIdentifier(g *rules.Group, candidates map[string]bool) bool {
	for _, id := range g.ActorIdentifiers {
		if candidates[id] {
			return true
		}
	}
	return false
}

func worldIdentifiers(g *rules.Group) []string {
	var out []string
	for _, id := range g.ActorIdentifiers {
		if strings.HasPrefix(id, worldActorPrefix) {
			out = append(out, id)
		}
	}
	return out
}

func matchesByName(worldIDs []string, roster []*host.Actor, actorKey string) bool {
	ids := make(map[string]bool, len(worldIDs))
	for _, id := range worldIDs {
		ids[id] = true
	}
	for _, a := range roster {
		if ids[a.UUID] && CanonicalName(a.Name) == actorKey {
			return true
		}
	}
	return false
}

func sortedGroupIDs(rs *rules.RuleSet) []string {
	ids := make([]string, 0, len(rs.Groups))
	for id := range rs.Groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
