package engine

import (
	"fmt"

	"github.com/nathoo/plando/engine/record"
	"github.com/nathoo/plando/engine/state"
)

// addStartingAmmo grants the ammo implied by countable starting equipment,
// without overriding an explicit ammo count.
func addStartingAmmo(tables *state.Tables, items map[string]*record.StarterRecord) {
	for _, name := range tables.ItemOrder {
		ammo, ok := tables.Ammo[name]
		if !ok {
			continue
		}
		rec, ok := items[name]
		if !ok {
			continue
		}
		if _, ok := items[ammo.Item]; !ok {
			items[ammo.Item] = &record.StarterRecord{Count: ammoAtLevel(ammo, rec.Count)}
		}
	}
}

// addStartingItemWithAmmo adds count copies of a starting item and pins its
// ammo to the curve entry for the new level, capped at the curve maximum.
func addStartingItemWithAmmo(tables *state.Tables, items map[string]*record.StarterRecord, name string, count int) {
	if _, ok := items[name]; !ok {
		items[name] = &record.StarterRecord{}
	}
	items[name].Count += count
	if ammo, ok := tables.Ammo[name]; ok {
		if _, ok := items[ammo.Item]; !ok {
			items[ammo.Item] = &record.StarterRecord{}
		}
		items[ammo.Item].Count = ammoAtLevel(ammo, items[name].Count)
	}
}

func ammoAtLevel(ammo state.AmmoRef, level int) int {
	if len(ammo.Counts) == 0 {
		return 0
	}
	if level < 1 {
		level = 1
	}
	if level > len(ammo.Counts) {
		level = len(ammo.Counts)
	}
	return ammo.Counts[level-1]
}

// StartingItems merges the global starting-item settings with this world's
// own entries. A per-world entry for an item overrides the global one.
func (wd *WorldDistribution) StartingItems() map[string]*record.StarterRecord {
	items := map[string]*record.StarterRecord{}
	for name, rec := range wd.dist.startingItems {
		items[name] = rec.Copy()
	}
	for name, rec := range wd.dist.worldStartingItems[wd.ID] {
		items[name] = rec.Copy()
	}
	return items
}

// GetStartingItem returns the starting count for one item, zero if unset.
func (wd *WorldDistribution) GetStartingItem(name string) int {
	if rec, ok := wd.StartingItems()[name]; ok {
		return rec.Count
	}
	return 0
}

// ConfigureEffectiveStartingItems resolves the settings-level starting items
// into the final grant list: settings conveniences, items absorbed by
// skipped locations, key-ring boss key compensation, and trade sequence
// conflict resolution.
func (wd *WorldDistribution) ConfigureEffectiveStartingItems(worlds []*state.World, world *state.World) error {
	settings := wd.dist.Settings
	tables := wd.dist.Tables

	items := map[string]*record.StarterRecord{}
	for name, rec := range wd.StartingItems() {
		items[name] = rec.Copy()
	}

	if settings.StartWithRupees {
		addStartingItemWithAmmo(tables, items, "Rupees", 999)
	}
	if settings.StartWithConsumables {
		addStartingItemWithAmmo(tables, items, "Deku Sticks", 99)
		addStartingItemWithAmmo(tables, items, "Deku Nuts", 99)
	}

	skippedLocations := []string{"Links Pocket"}
	if settings.SkipChildZelda {
		skippedLocations = append(skippedLocations, "HC Zeldas Letter", "Song from Impa")
	}
	if settings.GerudoFortress == "open" && !settings.ShuffleGerudoCard {
		skippedLocations = append(skippedLocations, "Hideout Gerudo Membership Card")
	}
	if settings.EmptyDungeonsMode != "none" && settings.EmptyDungeonsMode != "" {
		var fromDungeons []string
		fromDungeons = append(fromDungeons, tables.LocationGroups["Boss"]...)
		switch settings.ShuffleSongItems {
		case "song":
			fromDungeons = append(fromDungeons, tables.LocationGroups["Song"]...)
		case "dungeon":
			fromDungeons = append(fromDungeons, tables.LocationGroups["BossHeart"]...)
		}
		for _, name := range fromDungeons {
			loc, err := world.GetLocation(name)
			if err != nil {
				continue
			}
			if loc.Dungeon != "" && world.EmptyDungeons[loc.Dungeon] {
				skippedLocations = append(skippedLocations, loc.Name)
				if loc.Item != nil {
					world.BarrenHintItems = append(world.BarrenHintItems, loc.Item.Name)
				}
			}
		}
	}

	for _, iterWorld := range worlds {
		for _, name := range skippedLocations {
			loc, err := iterWorld.GetLocation(name)
			if err != nil {
				continue
			}
			if iterWorld.ID == world.ID {
				wd.SkippedLocations = append(wd.SkippedLocations, loc)
				loc.Skipped = true
			}
			if loc.Item != nil && world.ID == loc.Item.World {
				addStartingItemWithAmmo(tables, items, loc.Item.Name, 1)
			}
		}
		// With free small keys via a key ring that also carries the boss key,
		// but boss keys still shuffled, logic can strand the real boss key.
		// Grant it outright.
		for _, dungeon := range world.Dungeons {
			if containsString(settings.KeyRings, dungeon.Name) && dungeon.Name != "Ganons Castle" &&
				dungeon.ShuffleSmallKeys == "remove" && dungeon.ShuffleBossKeys != "remove" &&
				settings.KeyringGiveBossKey && dungeon.BossKey != "" {
				items[dungeon.BossKey] = &record.StarterRecord{Count: 1}
			}
		}
	}

	// Each trade sequence keeps only its latest requested item.
	adultIndex, childIndex := -1, -1
	var adultRec, childRec *record.StarterRecord
	for _, name := range sortedRecordKeys(items) {
		if idx := indexOf(tables.AdultTradeItems, name); idx >= 0 {
			if !containsString(settings.AdultTradeStart, name) {
				return fmt.Errorf("an unshuffled trade item was included as a starting item: remove %s from starting items", name)
			}
			if idx > adultIndex {
				adultIndex = idx
				adultRec = items[name]
			}
			delete(items, name)
		}
		if idx := indexOf(tables.ChildTradeItems, name); idx >= 0 {
			if !containsString(settings.ShuffleChildTrade, name) && name != "Zeldas Letter" {
				return fmt.Errorf("an unshuffled trade item was included as a starting item: remove %s from starting items", name)
			}
			if idx > childIndex {
				childIndex = idx
				childRec = items[name]
			}
			delete(items, name)
		}
	}
	if childIndex >= 0 {
		items[tables.ChildTradeItems[childIndex]] = childRec
	}
	if adultIndex >= 0 {
		items[tables.AdultTradeItems[adultIndex]] = adultRec
		world.AdultTradeStartingItem = tables.AdultTradeItems[adultIndex]
	}

	wd.EffectiveStartingItems = items
	return nil
}

// GiveItems grants the effective starting items to the save. Triforce
// pieces are pooled across every world so all players share progress.
func (wd *WorldDistribution) GiveItems(world *state.World, save *state.SaveContext) {
	triforceCount := 0
	for _, other := range wd.dist.WorldDists {
		if rec, ok := other.EffectiveStartingItems["Triforce Piece"]; ok {
			triforceCount += rec.Count
		}
	}
	if triforceCount > 0 {
		save.GiveItem(world, "Triforce Piece", triforceCount)
	}
	for _, name := range sortedRecordKeys(wd.EffectiveStartingItems) {
		rec := wd.EffectiveStartingItems[name]
		if name == "Triforce Piece" || rec.Count == 0 {
			continue
		}
		save.GiveItem(world, name, rec.Count)
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
