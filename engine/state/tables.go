// Package state holds the world model the resolution engine operates on:
// the static game data tables, per-world mutable state, the entrance graph
// primitives, and the reachability search hook.
package state

import (
	"fmt"

	"github.com/nathoo/plando/types"
)

// AmmoRef describes the ammo granted alongside a countable equipment item:
// Counts is indexed by equipment level (count - 1) and the last entry caps
// the grant regardless of requested level.
type AmmoRef struct {
	Item   string
	Counts []int
}

// EntranceDef is the static definition of one entrance.
type EntranceDef struct {
	Name string
	Type string
	From string
	To   string
}

// DungeonDef is the static definition of one dungeon.
type DungeonDef struct {
	Name    string
	BossKey string
}

// Tables holds the immutable game data consulted throughout resolution.
type Tables struct {
	Title   string
	Version string

	Items     map[string]*types.ItemInfo
	ItemOrder []string // table order, for deterministic iteration

	Locations     map[string]*types.LocationInfo
	LocationOrder []string

	Entrances []EntranceDef
	Dungeons  []DungeonDef

	ItemGroups     map[string][]string
	LocationGroups map[string][]string

	GossipStones map[string]int // stone name → text id
	GossipOrder  []string

	Ammo map[string]AmmoRef

	// Trade sequences in ascending priority order; when several trade items
	// are requested as starters, only the highest-priority one survives.
	AdultTradeItems []string
	ChildTradeItems []string

	// WinCondition names the items that must stay obtainable for the game
	// to be completable.
	WinCondition []string
}

// NotFoundError reports a reference to an unknown item, location, entrance,
// or gossip stone, with a closest-match suggestion when one exists.
type NotFoundError struct {
	Kind       string
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
	if e.Suggestion != "" {
		msg += ". " + e.Suggestion
	}
	return msg
}

// IsItem reports whether name is a known item.
func (t *Tables) IsItem(name string) bool {
	_, ok := t.Items[name]
	return ok
}

// ItemFactory constructs a concrete item instance by exact name.
func (t *Tables) ItemFactory(name string, world int) (*types.Item, error) {
	info, ok := t.Items[name]
	if !ok {
		return nil, &NotFoundError{Kind: "item", Name: name, Suggestion: CloseMatch(name, t.ItemOrder)}
	}
	return &types.Item{Name: name, World: world, Info: info}, nil
}

// LocationFactory constructs a concrete location instance by exact name.
func (t *Tables) LocationFactory(name string, world int) (*types.Location, error) {
	info, ok := t.Locations[name]
	if !ok {
		return nil, &NotFoundError{Kind: "location", Name: name, Suggestion: CloseMatch(name, t.LocationOrder)}
	}
	loc := &types.Location{
		Name:    info.Name,
		Type:    info.Type,
		World:   world,
		Dungeon: info.Dungeon,
		Vanilla: info.Vanilla,
	}
	if info.Price != nil {
		price := *info.Price
		loc.Price = &price
	}
	return loc, nil
}

// SearchGroups merges the built-in location and item groups into the table
// consulted for "#Name" references. Item groups shadow location groups of
// the same name, as the original data never overlaps them.
func (t *Tables) SearchGroups() map[string][]string {
	groups := make(map[string][]string, len(t.LocationGroups)+len(t.ItemGroups))
	for name, members := range t.LocationGroups {
		groups[name] = members
	}
	for name, members := range t.ItemGroups {
		groups[name] = members
	}
	return groups
}

// ItemsOfType returns the names of all items of the given type, in table
// order.
func (t *Tables) ItemsOfType(itemType string) []string {
	var names []string
	for _, name := range t.ItemOrder {
		if t.Items[name].Type == itemType {
			names = append(names, name)
		}
	}
	return names
}
