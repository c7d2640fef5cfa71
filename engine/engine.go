// Package engine resolves a plando distribution document against live world
// state: it alters item pools, places explicit items and dungeon rewards,
// applies entrance overrides, and resolves starting items, while keeping the
// generator's conservation and reachability invariants intact.
package engine

import (
	"fmt"
	"math"

	"github.com/nathoo/plando/engine/record"
	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
)

// perWorldKeys are the document sections that fan out to one value per
// world. Keys starting with ':' are output-only and never read back.
var perWorldKeys = []string{
	"dungeons",
	"empty_dungeons",
	"trials",
	"songs",
	"item_pool",
	"entrances",
	"locations",
	":skipped_locations",
	":woth_locations",
	":goal_locations",
	":barren_regions",
	"gossip_stones",
}

// documentSections are the legal top-level keys of a distribution document:
// the per-world sections plus the document-wide ones.
var documentSections = append([]string{
	"settings",
	"custom_groups",
	"file_hash",
	":version",
	":seed",
	":playthrough",
	":entrance_playthrough",
}, perWorldKeys...)

// Distribution is the document root: it owns the source document, the
// per-world distributions, and the output-only result sections.
type Distribution struct {
	Settings *types.Settings
	Tables   *state.Tables
	Search   state.Search
	RNG      *RNG

	SearchGroups map[string][]string
	WorldDists   []*WorldDistribution

	FileHash            []string
	Playthrough         map[string]map[string]*record.LocationRecord
	EntrancePlaythrough map[string]map[string]*record.EntranceRecord

	// src is the decoded source document, never mutated; Reset re-derives
	// all per-world state from it so retries start clean.
	src map[string]any

	startingItems      map[string]*record.StarterRecord
	worldStartingItems map[int]map[string]*record.StarterRecord
}

func worldKey(id int) string {
	return fmt.Sprintf("World %d", id+1)
}

// New builds a distribution from settings and a decoded document and runs
// the initial Reset.
func New(settings *types.Settings, tables *state.Tables, search state.Search, src map[string]any) (*Distribution, error) {
	if src == nil {
		src = map[string]any{}
	}
	d := &Distribution{
		Settings:     settings,
		Tables:       tables,
		Search:       search,
		RNG:          NewRNG(settings.Seed),
		SearchGroups: tables.SearchGroups(),
		src:          src,
	}

	if _, ok := src["starting_items"]; ok {
		return nil, fmt.Errorf(`"starting_items" at the top level is no longer supported, move it into "settings"`)
	}
	for _, key := range sortedRecordKeys(src) {
		if !containsString(documentSections, key) {
			return nil, fmt.Errorf("unknown section %q in distribution file. %s", key, state.CloseMatch(key, documentSections))
		}
	}
	if groups, ok := src["custom_groups"].(map[string]any); ok {
		for name, raw := range groups {
			members, ok := toStringList(raw)
			if !ok {
				return nil, fmt.Errorf("custom group %q must be a list of names", name)
			}
			d.SearchGroups[name] = members
		}
	}

	d.FileHash = make([]string, 5)
	if raw, ok := src["file_hash"]; ok {
		icons, ok := toStringList(raw)
		if !ok {
			return nil, fmt.Errorf(`"file_hash" must be a list of icon names`)
		}
		copy(d.FileHash, icons)
	}

	for id := range settings.WorldCount {
		d.WorldDists = append(d.WorldDists, newWorldDistribution(d, id))
	}
	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reset re-derives all per-world record state from the source document and
// normalizes the starting-item settings. It is called once up front and
// again before every retry, and always produces the same state.
func (d *Distribution) Reset() error {
	for _, wd := range d.WorldDists {
		wd.clear()
	}

	for _, key := range perWorldKeys {
		if key[0] == ':' {
			continue
		}
		raw, ok := d.src[key]
		if !ok {
			continue
		}
		section, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("section %q must be an object, got %T", key, raw)
		}
		// Entries keyed "World N" apply to that world alone; everything
		// else applies to every world.
		shared := map[string]any{}
		for name, value := range section {
			applied := false
			for _, wd := range d.WorldDists {
				if name == worldKey(wd.ID) {
					sub, ok := value.(map[string]any)
					if !ok {
						return fmt.Errorf("%s %q must be an object, got %T", key, name, value)
					}
					if err := wd.updateSection(key, sub); err != nil {
						return err
					}
					applied = true
					break
				}
			}
			if !applied {
				shared[name] = value
			}
		}
		if len(shared) > 0 {
			for _, wd := range d.WorldDists {
				if err := wd.updateSection(key, shared); err != nil {
					return err
				}
			}
		}
	}

	return d.normalizeStartingItems()
}

// normalizeStartingItems folds every starting-item source (the map settings,
// the per-world maps, and the legacy equipment/inventory/songs lists) into
// starter records with their ammo curves applied.
func (d *Distribution) normalizeStartingItems() error {
	settings := d.Settings
	d.startingItems = map[string]*record.StarterRecord{}
	d.worldStartingItems = map[int]map[string]*record.StarterRecord{}

	for name, count := range settings.StartingItems {
		d.startingItems[name] = &record.StarterRecord{Count: count}
	}
	if len(d.startingItems) > 0 {
		addStartingAmmo(d.Tables, d.startingItems)
	}
	for worldNum, items := range settings.WorldStartingItems {
		worldItems := map[string]*record.StarterRecord{}
		for name, count := range items {
			worldItems[name] = &record.StarterRecord{Count: count}
		}
		addStartingAmmo(d.Tables, worldItems)
		d.worldStartingItems[worldNum-1] = worldItems
	}

	var legacy []string
	legacy = append(legacy, settings.StartingEquipment...)
	legacy = append(legacy, settings.StartingSongs...)
	legacy = append(legacy, settings.StartingInventory...)
	for _, name := range legacy {
		switch {
		case name == "Rutos Letter" && settings.ZoraFountain != "open":
			d.starterAdd("Rutos Letter", 1)
		case name == "Rutos Letter" || name == "Bottle":
			d.starterAdd("Bottle", 1)
		case d.Tables.IsItem(name):
			addStartingItemWithAmmo(d.Tables, d.startingItems, name, 1)
		default:
			return fmt.Errorf("invalid starting item: %q. %s", name, state.CloseMatch(name, d.Tables.ItemOrder))
		}
	}

	_, hasPieces := d.startingItems["Piece of Heart"]
	_, hasContainers := d.startingItems["Heart Container"]
	if settings.StartingHearts > 3 && !hasPieces && !hasContainers {
		hearts := settings.StartingHearts - 3
		if settings.ItemPoolValue == "plentiful" {
			if settings.StartingHearts >= 20 {
				hearts--
				d.starterAdd("Piece of Heart", 4)
			}
			d.starterAdd("Heart Container", hearts)
		} else {
			// Split between pieces and containers removed from the pool; an
			// odd count takes an extra 4 pieces since there are 9*4 pieces
			// but only 8 containers.
			d.starterAdd("Piece of Heart", 4*int(math.Ceil(float64(hearts)/2)))
			d.starterAdd("Heart Container", hearts/2)
		}
	}
	return nil
}

func (d *Distribution) starterAdd(name string, count int) {
	if _, ok := d.startingItems[name]; !ok {
		d.startingItems[name] = &record.StarterRecord{}
	}
	d.startingItems[name].Count += count
}

// Fill checks the whole multiworld is beatable with the unplaced pools, then
// applies each world's explicit placements.
func (d *Distribution) Fill(worlds []*state.World, locationPools []*[]*types.Location, itemPools []*[]*types.Item) error {
	var remaining []*types.Item
	for _, p := range itemPools {
		remaining = append(remaining, *p...)
	}
	if !d.Search(worlds, remaining) {
		return fmt.Errorf("item pool does not contain items required to beat game")
	}
	for _, wd := range d.WorldDists {
		if err := wd.Fill(worlds, locationPools, itemPools); err != nil {
			return err
		}
	}
	return nil
}

// Cloak applies every world's model overrides.
func (d *Distribution) Cloak(worlds []*state.World, locationPools []*[]*types.Location, modelPools []*[]*types.Item) error {
	for _, wd := range d.WorldDists {
		if err := wd.Cloak(worlds, locationPools, modelPools); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureTriforceHunt totals the triforce pieces reachable across all
// worlds, validates the goal is attainable but not already met by starting
// items, and records the shared starting count on every world.
func (d *Distribution) ConfigureTriforceHunt(worlds []*state.World) error {
	totalCount := 0
	totalStarting := 0
	for _, world := range worlds {
		wd := d.WorldDists[world.ID]
		if rec, ok := wd.ItemPool["Triforce Piece"]; ok {
			world.TriforceCount = rec.Count
		}
		if count := wd.GetStartingItem("Triforce Piece"); count > 0 {
			world.TriforceCount += count
			totalStarting += count
		}
		if d.Settings.SkipChildZelda {
			if rec, ok := wd.Locations["Song from Impa"]; ok && rec.Item != nil && !rec.Item.IsList() && rec.Item.Name == "Triforce Piece" {
				totalStarting++
			}
		}
		totalCount += world.TriforceCount
	}
	goal := d.Settings.TriforceGoal
	if totalCount < goal {
		return fmt.Errorf("not enough Triforce Pieces in the worlds: there should be at least %d and there are only %d", goal, totalCount)
	}
	if totalStarting >= goal {
		return fmt.Errorf("too many Triforce Pieces in starting items: there should be at most %d and there are %d", goal-1, totalStarting)
	}
	for _, world := range worlds {
		world.TotalStartingTriforceCount = totalStarting
	}
	return nil
}

// AddLocation records an assignment in every world that does not already
// cover the location.
func (d *Distribution) AddLocation(location, item string) {
	for _, wd := range d.WorldDists {
		// A world whose records already cover the location keeps them.
		_ = wd.AddLocation(location, item)
	}
}

func toStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, elem := range list {
			s, ok := elem.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
