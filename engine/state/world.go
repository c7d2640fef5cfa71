package state

import (
	"github.com/nathoo/plando/types"
)

// World is one player's live, mutable world state during a generation
// attempt. It is exclusively owned by that attempt and mutated in place.
type World struct {
	ID       int
	Settings *types.Settings
	Tables   *Tables

	Dungeons      []*types.Dungeon
	DungeonMQ     map[string]bool
	EmptyDungeons map[string]bool
	SkippedTrials map[string]bool
	SongNotes     map[string]string

	// ItemPool is this world's remaining unplaced items.
	ItemPool []*types.Item

	Locations map[string]*types.Location
	Entrances map[string]*types.Entrance

	// Precollected counts the items granted directly to the save file.
	Precollected map[string]int

	TriforceCount              int
	TotalStartingTriforceCount int
	AdultTradeStartingItem     string

	// BarrenHintItems collects item names absorbed by skipped empty-dungeon
	// locations, so the hint system can treat their areas as barren.
	BarrenHintItems []string
}

// NewWorld instantiates a world from the tables: every location with its
// vanilla default, every entrance connected as defined.
func NewWorld(id int, settings *types.Settings, tables *Tables) *World {
	w := &World{
		ID:            id,
		Settings:      settings,
		Tables:        tables,
		DungeonMQ:     map[string]bool{},
		EmptyDungeons: map[string]bool{},
		SkippedTrials: map[string]bool{},
		SongNotes:     map[string]string{},
		Locations:     map[string]*types.Location{},
		Entrances:     map[string]*types.Entrance{},
		Precollected:  map[string]int{},
	}
	for _, d := range tables.Dungeons {
		w.Dungeons = append(w.Dungeons, &types.Dungeon{
			Name:             d.Name,
			BossKey:          d.BossKey,
			ShuffleSmallKeys: settings.ShuffleSmallKeys,
			ShuffleBossKeys:  settings.ShuffleBossKeys,
		})
		w.DungeonMQ[d.Name] = false
		w.EmptyDungeons[d.Name] = false
	}
	for _, name := range tables.LocationOrder {
		loc, _ := tables.LocationFactory(name, id)
		for _, disabled := range settings.DisabledLocations {
			if disabled == name {
				loc.Skipped = true
			}
		}
		w.Locations[name] = loc
	}
	for _, def := range tables.Entrances {
		w.Entrances[def.Name] = &types.Entrance{
			Name:            def.Name,
			Type:            def.Type,
			World:           id,
			ParentRegion:    def.From,
			ConnectedRegion: def.To,
			Primary:         true,
		}
	}
	return w
}

// GetLocation returns the named location or a NotFoundError.
func (w *World) GetLocation(name string) (*types.Location, error) {
	loc, ok := w.Locations[name]
	if !ok {
		return nil, &NotFoundError{Kind: "location", Name: name, Suggestion: CloseMatch(name, w.Tables.LocationOrder)}
	}
	return loc, nil
}

// GetEntrance returns the named entrance or a NotFoundError.
func (w *World) GetEntrance(name string) (*types.Entrance, error) {
	ent, ok := w.Entrances[name]
	if !ok {
		names := make([]string, 0, len(w.Tables.Entrances))
		for _, def := range w.Tables.Entrances {
			names = append(names, def.Name)
		}
		return nil, &NotFoundError{Kind: "entrance", Name: name, Suggestion: CloseMatch(name, names)}
	}
	return ent, nil
}

// PushItem commits an item to a location, linking both sides.
func (w *World) PushItem(loc *types.Location, item *types.Item) {
	loc.Item = item
	item.Location = loc
	if loc.Price != nil && item.Price == nil {
		price := *loc.Price
		item.Price = &price
	}
}

// shuffledType reports whether entrances of this category are subject to
// shuffling under the world's settings.
func (w *World) shuffledType(entranceType string) bool {
	for _, t := range w.Settings.ShuffledEntranceTypes {
		if t == entranceType {
			return true
		}
	}
	return false
}

// EntrancePools builds the shuffled-entrance pools and their target pools,
// keyed by category. Shuffled entrances are disconnected (overworld ones
// keep their default connection); each target is a synthetic slot standing
// in for the original connection, consumed when a replacement is confirmed.
func (w *World) EntrancePools() (map[string][]*types.Entrance, map[string][]*types.Entrance) {
	entrancePools := map[string][]*types.Entrance{}
	targetPools := map[string][]*types.Entrance{}
	for _, def := range w.Tables.Entrances {
		if !w.shuffledType(def.Type) {
			continue
		}
		ent := w.Entrances[def.Name]
		if def.Type != "Overworld" {
			ent.ConnectedRegion = ""
		}
		target := &types.Entrance{
			Name:            def.Name + " (target)",
			Type:            def.Type,
			World:           w.ID,
			ParentRegion:    def.From,
			ConnectedRegion: def.To,
			Replaces:        ent,
			Primary:         ent.Primary,
		}
		entrancePools[def.Type] = append(entrancePools[def.Type], ent)
		targetPools[def.Type] = append(targetPools[def.Type], target)
	}
	return entrancePools, targetPools
}
