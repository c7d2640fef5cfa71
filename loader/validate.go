package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/plando/engine/state"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Entrance categories the resolution pipeline understands.
var validEntranceTypes = map[string]bool{
	"Overworld":       true,
	"Dungeon":         true,
	"Boss":            true,
	"Interior":        true,
	"SpecialInterior": true,
	"Grotto":          true,
	"Grave":           true,
	"Warp":            true,
}

// validate checks the compiled tables for referential integrity and
// consistency.
func validate(tables *state.Tables) error {
	ve := &ValidationError{}

	if tables.Title == "" {
		ve.Errors = append(ve.Errors, "Game.title is required")
	}
	if tables.Version == "" {
		ve.Errors = append(ve.Errors, "Game.version is required")
	}

	// Vanilla assignments reference defined items.
	for _, name := range tables.LocationOrder {
		info := tables.Locations[name]
		if info.Vanilla != "" && !tables.IsItem(info.Vanilla) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"location %q vanilla item %q is not defined", name, info.Vanilla))
		}
		if info.Dungeon != "" && !isDungeon(tables, info.Dungeon) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"location %q belongs to undefined dungeon %q", name, info.Dungeon))
		}
		if info.Price != nil && info.Type != "Shop" {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"location %q has a price but is not a shop", name))
		}
	}

	// Group members reference defined items and locations.
	for group, members := range tables.ItemGroups {
		for _, member := range members {
			if !tables.IsItem(member) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"item group %q member %q is not a defined item", group, member))
			}
		}
	}
	for group, members := range tables.LocationGroups {
		for _, member := range members {
			if _, ok := tables.Locations[member]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location group %q member %q is not a defined location", group, member))
			}
		}
	}

	for _, ent := range tables.Entrances {
		if ent.From == "" || ent.To == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"entrance %q must declare both from and to regions", ent.Name))
		}
		if !validEntranceTypes[ent.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"entrance %q has unknown type %q", ent.Name, ent.Type))
		}
	}

	for _, dungeon := range tables.Dungeons {
		if dungeon.BossKey != "" && !tables.IsItem(dungeon.BossKey) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"dungeon %q boss key %q is not a defined item", dungeon.Name, dungeon.BossKey))
		}
	}

	// Gossip stone text ids unique.
	seenIDs := map[int]string{}
	for _, name := range tables.GossipOrder {
		id := tables.GossipStones[name]
		if prev, ok := seenIDs[id]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"gossip stones %q and %q share text id 0x%04x", prev, name, id))
		}
		seenIDs[id] = name
	}

	for equipment, ammo := range tables.Ammo {
		if !tables.IsItem(equipment) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"ammo entry for undefined item %q", equipment))
		}
		if !tables.IsItem(ammo.Item) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"ammo item %q for %q is not defined", ammo.Item, equipment))
		}
		if len(ammo.Counts) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"ammo entry for %q has no counts", equipment))
		}
	}

	for _, name := range tables.AdultTradeItems {
		if !tables.IsItem(name) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"adult trade sequence item %q is not defined", name))
		}
	}
	for _, name := range tables.ChildTradeItems {
		if !tables.IsItem(name) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"child trade sequence item %q is not defined", name))
		}
	}
	for _, name := range tables.WinCondition {
		if !tables.IsItem(name) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"win condition item %q is not defined", name))
		}
	}

	// Warnings: weighted junk that the junk group never selects.
	junkGroup := map[string]bool{}
	for _, name := range tables.ItemGroups["Junk"] {
		junkGroup[name] = true
	}
	for _, name := range tables.ItemOrder {
		if tables.Items[name].JunkWeight > 0 && !junkGroup[name] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"item %q has a junk weight but is not in the Junk group", name))
		}
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func isDungeon(tables *state.Tables, name string) bool {
	for _, d := range tables.Dungeons {
		if d.Name == name {
			return true
		}
	}
	return false
}
