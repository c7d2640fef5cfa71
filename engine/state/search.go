package state

import "github.com/nathoo/plando/types"

// Search reports whether the game can be completed given every world's
// current placements and the remaining unplaced item pool. The concrete
// search lives in the base generator; resolution only consumes this entry
// point.
type Search func(worlds []*World, itemPool []*types.Item) bool

// RequirementSearch returns a Search that requires every win-condition item
// to remain obtainable in its world: still in the remaining pool, placed at
// a location, or already granted to the save.
func RequirementSearch() Search {
	return func(worlds []*World, itemPool []*types.Item) bool {
		for _, w := range worlds {
			for _, required := range w.Tables.WinCondition {
				if !obtainable(w, worlds, itemPool, required) {
					return false
				}
			}
		}
		return true
	}
}

func obtainable(owner *World, worlds []*World, itemPool []*types.Item, name string) bool {
	if owner.Precollected[name] > 0 {
		return true
	}
	for _, item := range itemPool {
		if item.Name == name && item.World == owner.ID {
			return true
		}
	}
	for _, w := range worlds {
		for _, loc := range w.Locations {
			if loc.Item != nil && loc.Item.Name == name && loc.Item.World == owner.ID {
				return true
			}
		}
	}
	return false
}
