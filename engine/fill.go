package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nathoo/plando/engine/pattern"
	"github.com/nathoo/plando/engine/pool"
	"github.com/nathoo/plando/engine/record"
	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
)

// FillError reports a placement that passed record validation but broke the
// reachability requirement.
type FillError struct {
	Location  string
	World     int
	Item      string
	ItemWorld int
}

func (e *FillError) Error() string {
	return fmt.Sprintf("%s in world %d is not reachable without %s in world %d",
		e.Location, e.World+1, e.Item, e.ItemWorld+1)
}

type locationEntry struct {
	name string
	rec  *record.LocationRecord
}

// patternLocationItems expands pattern keys of a location-record map into
// one entry per matched known location, preserving key order. Inverted
// patterns expand over the full location table, so "!Queen Gohma" yields
// nearly every location; record authors rely on the later unfillable-name
// skip to prune the excess.
func (wd *WorldDistribution) patternLocationItems(keys []string, recs map[string]*record.LocationRecord) ([]locationEntry, error) {
	var entries []locationEntry
	for _, key := range keys {
		rec := recs[key]
		if pattern.IsPattern(key) {
			matcher, err := wd.patternMatcher(key)
			if err != nil {
				return nil, err
			}
			for _, name := range wd.dist.Tables.LocationOrder {
				if matcher(name) {
					entries = append(entries, locationEntry{name: name, rec: rec})
				}
			}
		} else {
			entries = append(entries, locationEntry{name: key, rec: rec})
		}
	}
	return entries, nil
}

// validItemsFromRecord filters the record's item reference down to the
// choices still present in the pool and not yet consumed by an earlier
// record. Group references stay symbolic: the group token itself is
// returned when any pool item satisfies it.
func (wd *WorldDistribution) validItemsFromRecord(itemPool []*types.Item, used []string, rec *record.LocationRecord) ([]string, error) {
	matcher, err := wd.refMatcher(rec.Item)
	if err != nil {
		return nil, err
	}
	var valid []string
	if rec.Item.IsList() {
		for _, choice := range rec.Item.List {
			if !strings.HasPrefix(choice, "#") {
				continue
			}
			if _, ok := wd.dist.SearchGroups[choice[1:]]; !ok {
				continue
			}
			for _, item := range itemPool {
				if matcher(item.Name) {
					valid = append(valid, choice)
					break
				}
			}
		}
		for _, item := range itemPool {
			if containsString(rec.Item.List, item.Name) && matcher(item.Name) {
				valid = append(valid, item.Name)
			}
		}
	} else {
		name := rec.Item.Name
		if strings.HasPrefix(name, "#") {
			if _, ok := wd.dist.SearchGroups[name[1:]]; ok {
				for _, item := range itemPool {
					if matcher(item.Name) {
						valid = append(valid, name)
						break
					}
				}
			}
		} else {
			valid = append(valid, name)
		}
	}
	for _, usedName := range used {
		for i, v := range valid {
			if v == usedName {
				valid = append(valid[:i], valid[i+1:]...)
				break
			}
		}
	}
	return valid, nil
}

// pullLocation removes (or just finds) a location by name or pattern from
// the pools, restricted to one world.
func (wd *WorldDistribution) pullLocation(pools []*[]*types.Location, worldID int, name string, remove bool) (*types.Location, error) {
	if pattern.IsPattern(name) {
		matcher, err := wd.patternMatcher(name)
		if err != nil {
			return nil, err
		}
		pred := func(loc *types.Location) bool { return loc.World == worldID && matcher(loc.Name) }
		if remove {
			loc, _ := pool.PullRandom(pools, pred, wd.dist.RNG)
			return loc, nil
		}
		loc, _ := pool.FindRandom(pools, pred, wd.dist.RNG)
		return loc, nil
	}
	pred := func(loc *types.Location) bool { return loc.World == worldID && loc.Name == name }
	if remove {
		loc, _ := pool.PullFirst(pools, pred)
		return loc, nil
	}
	loc, _ := pool.FindFirst(pools, pred)
	return loc, nil
}

// pullItem is the item-instance counterpart of pullLocation.
func (wd *WorldDistribution) pullItem(pools []*[]*types.Item, worldID int, name string, remove bool) (*types.Item, error) {
	if pattern.IsPattern(name) {
		matcher, err := wd.patternMatcher(name)
		if err != nil {
			return nil, err
		}
		pred := func(item *types.Item) bool { return item.World == worldID && matcher(item.Name) }
		if remove {
			item, _ := pool.PullRandom(pools, pred, wd.dist.RNG)
			return item, nil
		}
		item, _ := pool.FindRandom(pools, pred, wd.dist.RNG)
		return item, nil
	}
	pred := func(item *types.Item) bool { return item.World == worldID && item.Name == name }
	if remove {
		item, _ := pool.PullFirst(pools, pred)
		return item, nil
	}
	item, _ := pool.FindFirst(pools, pred)
	return item, nil
}

// FillBosses assigns dungeon rewards named by this world's location records
// to boss locations and returns how many were placed.
func (wd *WorldDistribution) FillBosses(world *state.World, prizeLocs *[]*types.Location, prizePool *[]*types.Item) (int, error) {
	tables := wd.dist.Tables
	count := 0
	var usedItems []string
	entries, err := wd.patternLocationItems(sortedRecordKeys(wd.Locations), wd.Locations)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		boss, err := wd.pullLocation([]*[]*types.Location{prizeLocs}, world.ID, entry.name, true)
		if err != nil {
			return 0, err
		}
		if boss == nil {
			location, err := tables.LocationFactory(entry.name, world.ID)
			if err != nil {
				return 0, fmt.Errorf("unknown location in world %d: %w", world.ID+1, err)
			}
			if location.Type == "Boss" {
				return 0, fmt.Errorf("boss reward already placed in world %d: %s", world.ID+1, entry.name)
			}
			continue
		}

		rec := entry.rec
		if rec.Player != nil && *rec.Player-1 != wd.ID {
			return 0, fmt.Errorf("a boss can only give rewards in its own world")
		}

		var validItems []string
		if rec.Item != nil && !rec.Item.IsList() && rec.Item.Name == "#Vanilla" {
			validItems = []string{boss.Vanilla}
		} else if rec.Item != nil {
			validItems, err = wd.validItemsFromRecord(*prizePool, usedItems, rec)
			if err != nil {
				return 0, err
			}
		}
		if len(validItems) > 0 {
			chosen := validItems[wd.dist.RNG.Intn(len(validItems))]
			rec.Item = &record.ItemRef{Name: chosen}
			usedItems = append(usedItems, chosen)
		}
		if rec.Item == nil {
			continue
		}

		reward, err := wd.pullItem([]*[]*types.Item{prizePool}, world.ID, rec.Item.Name, true)
		if err != nil {
			return 0, err
		}
		if reward == nil {
			name := rec.Item.Name
			if !containsString(tables.ItemGroups["DungeonReward"], name) {
				return 0, fmt.Errorf("cannot place non-dungeon reward %s in world %d on location %s", name, wd.ID+1, entry.name)
			}
			if tables.IsItem(name) {
				return 0, fmt.Errorf("reward already placed in world %d: %s", world.ID+1, name)
			}
			return 0, fmt.Errorf("reward unknown in world %d: %s", world.ID+1, name)
		}
		count++
		world.PushItem(boss, reward)
	}
	return count, nil
}

// Fill places this world's explicit location records. Layered pools keep
// shop, song, dungeon, and fill items apart; each placement of an
// advancement item is gated on the game staying completable with the
// remaining pool.
func (wd *WorldDistribution) Fill(worlds []*state.World, locationPools []*[]*types.Location, itemPools []*[]*types.Item) error {
	world := worlds[wd.ID]
	settings := wd.dist.Settings
	tables := wd.dist.Tables

	fillable := map[string]bool{}
	for _, p := range locationPools {
		for _, loc := range *p {
			if loc.World == world.ID {
				fillable[strings.ToLower(loc.Name)] = true
			}
		}
	}

	keys := sortedRecordKeys(wd.Locations)
	wd.dist.RNG.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	entries, err := wd.patternLocationItems(keys, wd.Locations)
	if err != nil {
		return err
	}

	var usedItems []string
	for _, entry := range entries {
		rec := entry.rec
		if rec.Item == nil {
			continue
		}
		locationName := entry.name

		lowered := strings.ToLower(locationName)
		pred := func(loc *types.Location) bool {
			return loc.World == world.ID && strings.ToLower(loc.Name) == lowered
		}
		location, ok := pool.PullFirst(locationPools, pred)
		if !ok {
			made, err := tables.LocationFactory(locationName, world.ID)
			if err != nil {
				return fmt.Errorf("unknown location in world %d: %w", world.ID+1, err)
			}
			if made.Type == "Boss" {
				continue
			}
			if containsString(settings.DisabledLocations, made.Name) {
				continue
			}
			if fillable[lowered] {
				return fmt.Errorf("location already filled in world %d: %s", wd.ID+1, locationName)
			}
			continue
		}

		var validItems []string
		if !rec.Item.IsList() && rec.Item.Name == "#Vanilla" {
			validItems = []string{location.Vanilla}
		} else {
			validItems, err = wd.validItemsFromRecord(world.ItemPool, usedItems, rec)
			if err != nil {
				return err
			}
		}
		if len(validItems) == 0 {
			// Pool exhausted for every choice. Limited-supply categories
			// cannot be conjured, so fall back to an unconstrained choice.
			if rec.Item.IsList() {
				var allowed []string
				for _, choice := range rec.Item.List {
					if choice == "#ChildTrade" || choice == "#AdultTrade" || choice == "#Bottle" ||
						containsString(tables.ItemGroups["Bottle"], choice) ||
						containsString(tables.ItemGroups["AdultTrade"], choice) ||
						containsString(tables.ItemGroups["ChildTrade"], choice) {
						continue
					}
					allowed = append(allowed, choice)
				}
				if len(allowed) == 0 {
					return fmt.Errorf("no eligible item for location %s in world %d", locationName, wd.ID+1)
				}
				rec.Item = &record.ItemRef{Name: allowed[wd.dist.RNG.Intn(len(allowed))]}
			}
		} else {
			chosen := validItems[wd.dist.RNG.Intn(len(validItems))]
			rec.Item = &record.ItemRef{Name: chosen}
			if !strings.HasPrefix(chosen, "#") {
				usedItems = append(usedItems, chosen)
			}
		}

		playerID := wd.ID
		if rec.Player != nil {
			playerID = *rec.Player - 1
		}

		if containsString(tables.ItemGroups["DungeonReward"], rec.Item.Name) {
			return fmt.Errorf("cannot place dungeon reward %s in world %d in location %s", rec.Item.Name, wd.ID+1, locationName)
		}

		if rec.Item.Name == "#Junk" && location.Type == "Song" && settings.ShuffleSongItems == "song" && !wd.startsWithSong() {
			rec.Item = &record.ItemRef{Name: "#JunkSong"}
		}

		var ignorePools []int
		isInvert := refInverted(rec.Item)
		if isInvert && location.Type != "Song" && settings.ShuffleSongItems == "song" {
			ignorePools = []int{state.ItemPoolSong}
		}
		if isInvert && location.Type == "Song" && settings.ShuffleSongItems == "song" {
			for i := range itemPools {
				if i != state.ItemPoolSong {
					ignorePools = append(ignorePools, i)
				}
			}
		}
		// Shop Buy slots carry no price; everything else must keep buy
		// items out.
		if location.Type == "Shop" && location.Price == nil {
			ignorePools = nil
			for i := range itemPools {
				if i != state.ItemPoolShop {
					ignorePools = append(ignorePools, i)
				}
			}
		} else {
			ignorePools = append(ignorePools, state.ItemPoolShop)
		}

		item, err := wd.getItem(ignorePools, itemPools, location, playerID, rec, worlds)
		if err != nil {
			return err
		}

		if location.Type == "Song" && item.Info.Type != "Song" {
			wd.SongAsItems = true
		}
		worlds[location.World].PushItem(location, item)

		if item.Info.Advancement {
			var remaining []*types.Item
			for _, p := range itemPools {
				remaining = append(remaining, *p...)
			}
			if !wd.dist.Search(worlds, remaining) {
				return &FillError{Location: location.Name, World: wd.ID, Item: item.Name, ItemWorld: playerID}
			}
		}
	}
	return nil
}

func (wd *WorldDistribution) startsWithSong() bool {
	songs := wd.dist.Tables.ItemGroups["Song"]
	for name, rec := range wd.StartingItems() {
		if rec.Count > 0 && containsString(songs, name) {
			return true
		}
	}
	return false
}

// getItem withdraws the record's item from the pools, or substitutes it in
// when the pool has run out: buy items displace another buy item, limited
// categories displace a member of their own group, anything else displaces
// junk. The pool adjustment records are updated to match.
func (wd *WorldDistribution) getItem(ignore []int, itemPools []*[]*types.Item, location *types.Location, playerID int, rec *record.LocationRecord, worlds []*state.World) (*types.Item, error) {
	settings := wd.dist.Settings
	tables := wd.dist.Tables
	name := rec.Item.Name

	pools := itemPools
	if len(ignore) > 0 {
		pools = make([]*[]*types.Item, len(itemPools))
		copy(pools, itemPools)
		for _, i := range ignore {
			empty := []*types.Item{}
			pools[i] = &empty
		}
	}

	pulled, err := wd.poolRemoveItems(pools, name, 1, playerID)
	if err == nil {
		return pulled[0], nil
	}
	var pullErr *pool.PullError
	if !errors.As(err, &pullErr) {
		return nil, err
	}

	var item *types.Item
	switch {
	case location.Type == "Shop" && strings.Contains(name, "Buy"):
		removed, err := wd.poolRemoveItems(pools, "Buy *", 1, playerID)
		if err != nil {
			return nil, fmt.Errorf("too many shop buy items were added to world %d, and not enough shop buy items are available in the item pool to be removed", wd.ID+1)
		}
		wd.poolRecordDecrement(removed[0].Name)
		item, err = tables.ItemFactory(name, playerID)
		if err != nil {
			return nil, wd.unknownItemError(name, location)
		}
	case containsString(tables.ItemGroups["Bottle"], name):
		item, err = wd.poolReplaceItem(pools, "#Bottle", playerID, name, worlds)
		if err != nil {
			if isUnknownItem(err) {
				return nil, wd.unknownItemError(name, location)
			}
			return nil, fmt.Errorf("too many bottles were added to world %d, and not enough bottles are available in the item pool to be removed", wd.ID+1)
		}
	case containsString(tables.ItemGroups["AdultTrade"], name) && !settings.AdultTradeShuffle:
		item, err = wd.poolReplaceItem(pools, "#AdultTrade", playerID, name, worlds)
		if err != nil {
			if isUnknownItem(err) {
				return nil, wd.unknownItemError(name, location)
			}
			return nil, fmt.Errorf("too many adult trade items were added to world %d, and not enough adult trade items are available in the item pool to be removed", wd.ID+1)
		}
	case containsString(tables.ItemGroups["ChildTrade"], name) && !containsString(settings.ShuffleChildTrade, name):
		item, err = wd.poolReplaceItem(pools, "#ChildTrade", playerID, name, worlds)
		if err != nil {
			if isUnknownItem(err) {
				return nil, wd.unknownItemError(name, location)
			}
			return nil, fmt.Errorf("too many child trade items were added to world %d, and not enough child trade items are available in the item pool to be removed", wd.ID+1)
		}
	case name == "Ice Arrows" && settings.BlueFireArrows:
		return nil, fmt.Errorf("cannot add Ice Arrows to item pool with Blue Fire Arrows enabled")
	case name == "Blue Fire Arrows" && !settings.BlueFireArrows:
		return nil, fmt.Errorf("cannot add Blue Fire Arrows to item pool with Blue Fire Arrows disabled")
	default:
		item, err = wd.poolReplaceItem(itemPools, "#Junk", playerID, name, worlds)
		if err != nil {
			if isUnknownItem(err) {
				return nil, wd.unknownItemError(name, location)
			}
			return nil, fmt.Errorf("too many items were added to world %d, and not enough junk is available to be removed", wd.ID+1)
		}
	}

	if _, ok := wd.ItemPool[item.Name]; ok {
		wd.ItemPool[item.Name].Count++
	} else {
		wd.ItemPool[item.Name] = &record.ItemPoolRecord{Type: "set", Count: 1}
	}
	return item, nil
}

func (wd *WorldDistribution) unknownItemError(name string, location *types.Location) error {
	return fmt.Errorf("unknown item %q being placed on location %s in world %d. %s",
		name, location.Name, wd.ID+1, state.CloseMatch(name, wd.dist.Tables.ItemOrder))
}

func isUnknownItem(err error) bool {
	var nf *state.NotFoundError
	return errors.As(err, &nf)
}

func (wd *WorldDistribution) poolRecordDecrement(name string) {
	rec, ok := wd.ItemPool[name]
	if !ok {
		return
	}
	if rec.Count <= 1 {
		delete(wd.ItemPool, name)
	} else {
		rec.Count--
	}
}

// poolReplaceItem withdraws one member of group from the pools and creates
// the named replacement in its place.
func (wd *WorldDistribution) poolReplaceItem(itemPools []*[]*types.Item, group string, playerID int, newItem string, worlds []*state.World) (*types.Item, error) {
	tables := wd.dist.Tables
	removed, err := wd.poolRemoveItems(itemPools, group, 1, playerID)
	if err != nil {
		return nil, err
	}
	wd.poolRecordDecrement(removed[0].Name)

	if newItem == "#Junk" {
		var junk []string
		if wd.dist.Settings.EnableDistributionFile {
			junk, err = tables.JunkItems(1, wd.basePool, wd.junkCaps(), wd.dist.RNG)
		} else {
			junk, err = tables.JunkItems(1, nil, nil, wd.dist.RNG)
		}
		if err != nil {
			return nil, err
		}
		return tables.ItemFactory(junk[0], playerID)
	}

	matcher, err := wd.patternMatcher(newItem)
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, name := range tables.ItemOrder {
		if matcher(name) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return nil, &state.NotFoundError{Kind: "item", Name: newItem, Suggestion: state.CloseMatch(newItem, tables.ItemOrder)}
	}
	return tables.ItemFactory(candidates[wd.dist.RNG.Intn(len(candidates))], playerID)
}

// Cloak applies model overrides: a trap item at a matched location is made
// to look like the named model.
func (wd *WorldDistribution) Cloak(worlds []*state.World, locationPools []*[]*types.Location, modelPools []*[]*types.Item) error {
	tables := wd.dist.Tables
	entries, err := wd.patternLocationItems(sortedRecordKeys(wd.Locations), wd.Locations)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		rec := entry.rec
		if rec.Model == nil {
			continue
		}
		playerID := wd.ID
		if rec.Player != nil {
			playerID = *rec.Player - 1
		}
		world := worlds[playerID]

		made, err := tables.LocationFactory(entry.name, world.ID)
		if err != nil {
			return fmt.Errorf("unknown location in world %d: %w", world.ID+1, err)
		}
		if made.Type == "Boss" {
			continue
		}

		location, err := wd.pullLocation(locationPools, wd.ID, entry.name, false)
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("location already cloaked in world %d: %s", wd.ID+1, entry.name)
		}
		model, err := wd.pullItem(modelPools, world.ID, *rec.Model, false)
		if err != nil {
			return err
		}
		if model == nil {
			return fmt.Errorf("unknown model in world %d: %s", wd.ID+1, *rec.Model)
		}
		if location.Item != nil && location.Item.Info.Trap {
			location.Item.LooksLike = model.Name
		}
	}
	return nil
}

var gossipTextID = regexp.MustCompile(`(?i)^(?:\$|x|0x)?([0-9a-fA-F]{4})$`)

// ConfigureGossip assigns explicit hint text to gossip stones, consuming the
// matched stones from the pool. A record key that matches no stone may name
// a raw hexadecimal text id instead.
func (wd *WorldDistribution) ConfigureGossip(stoneIDs *[]int) (map[int]state.Hint, error) {
	tables := wd.dist.Tables
	idToName := make(map[int]string, len(tables.GossipStones))
	for name, id := range tables.GossipStones {
		idToName[id] = name
	}
	stoneNames := tables.GossipOrder

	hints := map[int]state.Hint{}
	for _, name := range sortedRecordKeys(wd.GossipStones) {
		rec := wd.GossipStones[name]
		matcher, err := wd.patternMatcher(name)
		if err != nil {
			return nil, err
		}
		stoneID, ok := pool.PullRandom([]*[]int{stoneIDs}, func(id int) bool {
			return matcher(idToName[id])
		}, wd.dist.RNG)
		if !ok {
			m := gossipTextID.FindStringSubmatch(name)
			if m == nil {
				return nil, fmt.Errorf("gossip stone unknown or already assigned in world %d: %q. %s",
					wd.ID+1, name, state.CloseMatch(name, stoneNames))
			}
			parsed, err := strconv.ParseInt(m[1], 16, 32)
			if err != nil {
				return nil, err
			}
			stoneID = int(parsed)
		}
		text := ""
		if rec.Text != nil {
			text = *rec.Text
		}
		hints[stoneID] = state.Hint{Text: text, Colors: rec.Colors}
	}
	return hints, nil
}

// SetShuffledEntrances applies explicit entrance overrides against the
// shuffled-entrance pools. Each edge is validated in isolation and rolled
// back on failure, so an earlier confirmed override survives a later bad
// one up to the point of the error.
func (wd *WorldDistribution) SetShuffledEntrances(worlds []*state.World, entrancePools, targetPools map[string][]*types.Entrance, itemPool []*types.Item) error {
	for _, name := range sortedRecordKeys(wd.Entrances) {
		rec := wd.Entrances[name]
		if rec.Region == nil {
			continue
		}
		if _, err := worlds[wd.ID].GetEntrance(name); err != nil {
			return fmt.Errorf("unknown entrance in world %d: %w", wd.ID+1, err)
		}

		entranceFound := false
		for _, poolType := range sortedRecordKeys(entrancePools) {
			var matched *types.Entrance
			for _, ent := range entrancePools[poolType] {
				if ent.Name == name {
					matched = ent
					break
				}
			}
			if matched == nil {
				continue
			}
			entranceFound = true

			if matched.ConnectedRegion != "" {
				if matched.Type == "Overworld" {
					continue
				}
				return fmt.Errorf("entrance already shuffled in world %d: %s", wd.ID+1, name)
			}

			targetRegion := *rec.Region
			var candidates []*types.Entrance
			for _, target := range targetPools[poolType] {
				if target.ConnectedRegion != "" && target.ConnectedRegion == targetRegion {
					candidates = append(candidates, target)
				}
			}
			if len(candidates) == 0 {
				return fmt.Errorf("no entrance found to replace with %s that leads to %s in world %d",
					matched.Name, targetRegion, wd.ID+1)
			}

			var target *types.Entrance
			if rec.Origin != nil {
				for _, candidate := range candidates {
					if candidate.Replaces != nil && candidate.Replaces.ParentRegion == *rec.Origin {
						target = candidate
						break
					}
				}
				if target == nil {
					return fmt.Errorf("no entrance found to replace with %s that leads to %s from %s in world %d",
						matched.Name, targetRegion, *rec.Origin, wd.ID+1)
				}
			} else {
				target = candidates[0]
			}

			if err := state.CheckEntrancesCompatibility(matched, target); err != nil {
				return fmt.Errorf("cannot connect %s to %s in world %d: %w", matched.Name, target.ConnectedRegion, wd.ID+1, err)
			}
			restore := state.ChangeConnections(matched, target)
			if err := state.ValidateWorlds(worlds, wd.dist.Search, itemPool); err != nil {
				restore()
				return fmt.Errorf("cannot connect %s to %s in world %d: %w", matched.Name, target.ConnectedRegion, wd.ID+1, err)
			}
			state.ConfirmReplacement(matched, target)
		}
		if !entranceFound {
			return fmt.Errorf("entrance does not belong to a pool of shuffled entrances in world %d: %s", wd.ID+1, name)
		}
	}
	return nil
}
