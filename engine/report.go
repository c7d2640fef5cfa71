package engine

import (
	"fmt"
	"strconv"

	"github.com/nathoo/plando/engine/record"
	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
)

// locationRecordFromItem builds the output record for a placed item. The
// player is spelled out for multiworld documents and for items that crossed
// into another player's world.
func locationRecordFromItem(item *types.Item, worldCount int) *record.LocationRecord {
	rec := &record.LocationRecord{Item: &record.ItemRef{Name: item.Name}}
	if worldCount > 1 || item.Location == nil || item.Location.World != item.World {
		player := item.World + 1
		rec.Player = &player
	}
	if item.LooksLike != "" {
		model := item.LooksLike
		rec.Model = &model
	}
	if item.Location != nil && item.Location.Price != nil {
		price := *item.Location.Price
		rec.Price = &price
	}
	return rec
}

// entranceRecordFromEntrance builds the output record for a shuffled
// entrance. Primary interior-style connections have an unambiguous origin,
// so it is omitted.
func entranceRecordFromEntrance(ent *types.Entrance) *record.EntranceRecord {
	region := ent.ConnectedRegion
	rec := &record.EntranceRecord{Region: &region}
	if ent.Replaces != nil {
		switch {
		case ent.Replaces.Primary &&
			(ent.Replaces.Type == "Interior" || ent.Replaces.Type == "SpecialInterior" ||
				ent.Replaces.Type == "Grotto" || ent.Replaces.Type == "Grave"):
			// origin omitted
		default:
			origin := ent.Replaces.ParentRegion
			rec.Origin = &origin
		}
	}
	return rec
}

// ToDocument renders one world's sections as decoded-document values.
func (wd *WorldDistribution) ToDocument() map[string]any {
	doc := map[string]any{
		"dungeons":       recordSection(wd.Dungeons),
		"empty_dungeons": recordSection(wd.EmptyDungeons),
		"trials":         recordSection(wd.Trials),
		"songs":          recordSection(wd.Songs),
		"item_pool":      recordSection(wd.ItemPool),
		"entrances":      recordSection(wd.Entrances),
		"locations":      recordSection(wd.Locations),
		"gossip_stones":  recordSection(wd.GossipStones),
	}

	skipped := map[string]any{}
	for _, loc := range wd.SkippedLocations {
		if loc.Item != nil {
			skipped[loc.Name] = locationRecordFromItem(loc.Item, wd.dist.Settings.WorldCount).ToDocument()
		}
	}
	doc[":skipped_locations"] = skipped

	if wd.WOTHLocations != nil {
		doc[":woth_locations"] = recordSection(wd.WOTHLocations)
	}
	if wd.GoalLocations != nil {
		doc[":goal_locations"] = wd.GoalLocations
	}
	if wd.BarrenRegions != nil {
		doc[":barren_regions"] = wd.BarrenRegions
	}
	return doc
}

type documentRecord interface {
	ToDocument() any
}

func recordSection[T documentRecord](records map[string]T) map[string]any {
	section := map[string]any{}
	for name, rec := range records {
		section[name] = rec.ToDocument()
	}
	return section
}

// ToDocument renders the whole distribution. With includeOutput false every
// output-only (':'-prefixed) key is stripped, leaving a document equivalent
// to the input. With spoiler false the per-world result sections are left
// out entirely.
func (d *Distribution) ToDocument(includeOutput, spoiler bool) map[string]any {
	doc := map[string]any{
		":version":  d.Tables.Version,
		"file_hash": d.FileHash,
		":seed":     d.Settings.Seed,
	}

	if spoiler {
		worldDocs := make([]map[string]any, len(d.WorldDists))
		for i, wd := range d.WorldDists {
			worldDocs[i] = wd.ToDocument()
		}
		for _, key := range perWorldKeys {
			if len(d.WorldDists) > 1 {
				section := map[string]any{}
				for id, worldDoc := range worldDocs {
					if value, ok := worldDoc[key]; ok {
						section[worldKey(id)] = value
					}
				}
				doc[key] = section
			} else if value, ok := worldDocs[0][key]; ok {
				doc[key] = value
			}
		}

		if d.Playthrough != nil {
			playthrough := map[string]any{}
			for sphere, placements := range d.Playthrough {
				playthrough[sphere] = recordSection(placements)
			}
			doc[":playthrough"] = playthrough
		}
		if len(d.EntrancePlaythrough) > 0 {
			playthrough := map[string]any{}
			for sphere, entrances := range d.EntrancePlaythrough {
				playthrough[sphere] = recordSection(entrances)
			}
			doc[":entrance_playthrough"] = playthrough
		}
	}

	if !includeOutput {
		stripOutputOnly(doc)
	}
	return doc
}

// UpdateReport folds a successful generation's results back into the record
// state so ToDocument produces the full resolved document.
func (d *Distribution) UpdateReport(worlds []*state.World, rep *state.Report, outputSpoiler bool) {
	if rep.FileHash != nil {
		d.FileHash = make([]string, 5)
		copy(d.FileHash, rep.FileHash)
	}
	if !outputSpoiler {
		return
	}

	idToName := make(map[int]string, len(d.Tables.GossipStones))
	for name, id := range d.Tables.GossipStones {
		idToName[id] = name
	}

	for _, world := range worlds {
		wd := d.WorldDists[world.ID]

		wd.Dungeons = map[string]*record.DungeonRecord{}
		for name, mq := range world.DungeonMQ {
			v := mq
			wd.Dungeons[name] = &record.DungeonRecord{MQ: &v}
		}
		wd.EmptyDungeons = map[string]*record.EmptyDungeonRecord{}
		for name, empty := range world.EmptyDungeons {
			v := empty
			wd.EmptyDungeons[name] = &record.EmptyDungeonRecord{Empty: &v}
		}
		wd.Trials = map[string]*record.TrialRecord{}
		for name, skipped := range world.SkippedTrials {
			active := !skipped
			wd.Trials[name] = &record.TrialRecord{Active: &active}
		}
		wd.Songs = map[string]*record.SongRecord{}
		for name, notes := range world.SongNotes {
			v := notes
			wd.Songs[name] = &record.SongRecord{Notes: &v}
		}

		wd.Entrances = map[string]*record.EntranceRecord{}
		for name, ent := range world.Entrances {
			if ent.Replaces != nil && ent.ConnectedRegion != "" {
				wd.Entrances[name] = entranceRecordFromEntrance(ent)
			}
		}

		wd.Locations = map[string]*record.LocationRecord{}
		for name, loc := range world.Locations {
			if loc.Item != nil {
				wd.Locations[name] = locationRecordFromItem(loc.Item, d.Settings.WorldCount)
			}
		}

		if world.ID < len(rep.WOTH) {
			wd.WOTHLocations = map[string]*record.LocationRecord{}
			for _, loc := range rep.WOTH[world.ID] {
				if loc.Item != nil {
					wd.WOTHLocations[loc.Name] = locationRecordFromItem(loc.Item, d.Settings.WorldCount)
				}
			}
		}
		if world.ID < len(rep.Goals) {
			wd.GoalLocations = map[string]map[string]map[string]any{}
			for category, goals := range rep.Goals[world.ID] {
				wd.GoalLocations[category] = map[string]map[string]any{}
				for goal, locs := range goals {
					placements := map[string]any{}
					for _, loc := range locs {
						if loc.Item != nil {
							placements[loc.Name] = locationRecordFromItem(loc.Item, d.Settings.WorldCount).ToDocument()
						}
					}
					wd.GoalLocations[category][goal] = placements
				}
			}
		}
		if world.ID < len(rep.Barren) {
			wd.BarrenRegions = rep.Barren[world.ID]
		}
		if world.ID < len(rep.Hints) {
			wd.GossipStones = map[string]*record.GossipRecord{}
			for id, hint := range rep.Hints[world.ID] {
				key, ok := idToName[id]
				if !ok {
					key = fmt.Sprintf("0x%04X", id)
				}
				text := hint.Text
				wd.GossipStones[key] = &record.GossipRecord{Text: &text, Colors: hint.Colors}
			}
		}
	}

	d.Playthrough = map[string]map[string]*record.LocationRecord{}
	for sphere, locs := range rep.Playthrough {
		placements := map[string]*record.LocationRecord{}
		for _, loc := range locs {
			if loc.Item != nil {
				placements[d.reportName(loc.Name, loc.World)] = locationRecordFromItem(loc.Item, d.Settings.WorldCount)
			}
		}
		d.Playthrough[strconv.Itoa(sphere)] = placements
	}
	d.EntrancePlaythrough = map[string]map[string]*record.EntranceRecord{}
	for sphere, ents := range rep.EntrancePlaythrough {
		entrances := map[string]*record.EntranceRecord{}
		for _, ent := range ents {
			entrances[d.reportName(ent.Name, ent.World)] = entranceRecordFromEntrance(ent)
		}
		d.EntrancePlaythrough[strconv.Itoa(sphere)] = entrances
	}
}

// reportName qualifies a name with its world for multiworld documents.
func (d *Distribution) reportName(name string, world int) string {
	if d.Settings.WorldCount > 1 {
		return fmt.Sprintf("%s [W%d]", name, world+1)
	}
	return name
}
