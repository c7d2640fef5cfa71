package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/plando/engine/pattern"
	"github.com/nathoo/plando/engine/pool"
	"github.com/nathoo/plando/engine/record"
	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
)

// WorldDistribution aggregates one player's override records and owns the
// per-world resolution algorithms: pool alteration, boss and location fill,
// entrance overrides, cloak and gossip assignment, starting-item resolution.
// Records are mutated in place during fill, so the final state doubles as
// the output report.
type WorldDistribution struct {
	dist *Distribution
	ID   int

	Dungeons      map[string]*record.DungeonRecord
	EmptyDungeons map[string]*record.EmptyDungeonRecord
	Trials        map[string]*record.TrialRecord
	Songs         map[string]*record.SongRecord
	ItemPool      map[string]*record.ItemPoolRecord
	Entrances     map[string]*record.EntranceRecord
	Locations     map[string]*record.LocationRecord
	GossipStones  map[string]*record.GossipRecord

	// Output-only sections, populated after a successful generation.
	WOTHLocations map[string]*record.LocationRecord
	GoalLocations map[string]map[string]map[string]any
	BarrenRegions []string

	// basePool is this player's original item allocation, kept as a multiset
	// so removals can distinguish own items from borrowed ones.
	basePool   []string
	majorGroup []string

	SongAsItems            bool
	SkippedLocations       []*types.Location
	EffectiveStartingItems map[string]*record.StarterRecord
}

func newWorldDistribution(dist *Distribution, id int) *WorldDistribution {
	wd := &WorldDistribution{dist: dist, ID: id}
	wd.clear()
	return wd
}

// clear resets every record section to empty; Reset rebuilds them from the
// immutable source document.
func (wd *WorldDistribution) clear() {
	wd.Dungeons = map[string]*record.DungeonRecord{}
	wd.EmptyDungeons = map[string]*record.EmptyDungeonRecord{}
	wd.Trials = map[string]*record.TrialRecord{}
	wd.Songs = map[string]*record.SongRecord{}
	wd.ItemPool = map[string]*record.ItemPoolRecord{}
	wd.Entrances = map[string]*record.EntranceRecord{}
	wd.Locations = map[string]*record.LocationRecord{}
	wd.GossipStones = map[string]*record.GossipRecord{}
	wd.WOTHLocations = nil
	wd.GoalLocations = nil
	wd.BarrenRegions = nil
	wd.basePool = nil
	wd.majorGroup = nil
	wd.SongAsItems = false
	wd.SkippedLocations = nil
	wd.EffectiveStartingItems = map[string]*record.StarterRecord{}
}

// updateSection merges one document section into this world's records.
// Later updates override earlier records of the same name.
func (wd *WorldDistribution) updateSection(key string, value any) error {
	section, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("section %q must be an object, got %T", key, value)
	}
	names := sortedKeys(section)
	for _, name := range names {
		raw := section[name]
		var err error
		switch key {
		case "dungeons":
			wd.Dungeons[name], err = record.ParseDungeon(raw)
		case "empty_dungeons":
			wd.EmptyDungeons[name], err = record.ParseEmptyDungeon(raw)
		case "trials":
			wd.Trials[name], err = record.ParseTrial(raw)
		case "songs":
			wd.Songs[name], err = record.ParseSong(raw)
		case "item_pool":
			wd.ItemPool[name], err = record.ParseItemPool(raw)
		case "entrances":
			wd.Entrances[name], err = record.ParseEntrance(raw)
		case "locations":
			if pattern.IsOutputOnly(name) {
				continue
			}
			wd.Locations[name], err = record.ParseLocation(raw)
		case "gossip_stones":
			wd.GossipStones[name], err = record.ParseGossip(raw)
		default:
			return fmt.Errorf("unknown section %q", key)
		}
		if err != nil {
			return fmt.Errorf("world %d %s %q: %w", wd.ID+1, key, name, err)
		}
	}
	return nil
}

// groupLookup resolves named groups for pattern compilation. "#MajorItem" is
// special-cased through the memoized per-world derivation.
func (wd *WorldDistribution) groupLookup(name string) ([]string, bool) {
	if name == "MajorItem" {
		if _, ok := wd.dist.SearchGroups[name]; !ok {
			return nil, false
		}
		return wd.majorItemGroup(), true
	}
	members, ok := wd.dist.SearchGroups[name]
	return members, ok
}

func (wd *WorldDistribution) patternMatcher(pat string) (pattern.Matcher, error) {
	return pattern.Compile(pat, wd.groupLookup)
}

func (wd *WorldDistribution) refMatcher(ref *record.ItemRef) (pattern.Matcher, error) {
	if ref.IsList() {
		return pattern.CompileList(ref.List, wd.groupLookup)
	}
	return pattern.Compile(ref.Name, wd.groupLookup)
}

// refInverted reports whether any element of an item reference is an
// inverted pattern; inverted references widen which pool layers fill may
// draw from.
func refInverted(ref *record.ItemRef) bool {
	if ref.IsList() {
		for _, elem := range ref.List {
			if strings.HasPrefix(elem, "!") {
				return true
			}
		}
		return false
	}
	return strings.HasPrefix(ref.Name, "!")
}

// majorItemGroup derives the effective "#MajorItem" membership from the base
// pool and settings. The derivation is expensive and order-independent, so
// it is computed once per world and memoized; AlterPool triggers it eagerly
// right after the base pool snapshot is taken.
func (wd *WorldDistribution) majorItemGroup() []string {
	if wd.majorGroup != nil {
		return wd.majorGroup
	}
	settings := wd.dist.Settings
	tables := wd.dist.Tables

	var group []string
	for _, name := range wd.dist.SearchGroups["MajorItem"] {
		if containsString(wd.basePool, name) {
			group = append(group, name)
		}
	}
	// Songs are included by default; drop them unless shuffled anywhere.
	if settings.ShuffleSongItems != "any" {
		kept := group[:0]
		for _, name := range group {
			if !containsString(tables.ItemGroups["Song"], name) {
				kept = append(kept, name)
			}
		}
		group = kept
	}
	if settings.TriforceHunt {
		group = append(group, "Triforce Piece")
	}
	majorTokens := (settings.ShuffleGanonBossKey == "on_lacs" && settings.LACSCondition == "tokens") ||
		settings.ShuffleGanonBossKey == "tokens" || settings.Bridge == "tokens"
	if settings.Tokensanity == "all" && majorTokens {
		group = append(group, "Gold Skulltula Token")
	}
	majorHearts := (settings.ShuffleGanonBossKey == "on_lacs" && settings.LACSCondition == "hearts") ||
		settings.ShuffleGanonBossKey == "hearts" || settings.Bridge == "hearts"
	if majorHearts {
		group = append(group, "Heart Container", "Piece of Heart", "Piece of Heart (Treasure Chest Game)")
	}
	if settings.ShuffleSmallKeys == "keysanity" {
		for _, dungeon := range tables.Dungeons {
			if containsString(settings.KeyRings, dungeon.Name) {
				group = append(group, fmt.Sprintf("Small Key Ring (%s)", dungeon.Name))
			} else {
				group = append(group, fmt.Sprintf("Small Key (%s)", dungeon.Name))
			}
		}
	}
	if settings.ShuffleHideoutKeys == "keysanity" {
		if containsString(settings.KeyRings, "Thieves Hideout") {
			group = append(group, "Small Key Ring (Thieves Hideout)")
		} else {
			group = append(group, "Small Key (Thieves Hideout)")
		}
	}
	if settings.ShuffleTCGKeys == "keysanity" {
		if containsString(settings.KeyRings, "Treasure Chest Game") {
			group = append(group, "Small Key Ring (Treasure Chest Game)")
		} else {
			group = append(group, "Small Key (Treasure Chest Game)")
		}
	}
	if settings.ShuffleBossKeys == "keysanity" {
		for _, name := range tables.ItemsOfType("BossKey") {
			if name != "Boss Key" {
				group = append(group, name)
			}
		}
	}
	if settings.ShuffleGanonBossKey == "keysanity" {
		group = append(group, tables.ItemsOfType("GanonBossKey")...)
	}
	if settings.ShuffleSilverRupees == "anywhere" {
		group = append(group, tables.ItemsOfType("SilverRupee")...)
	}

	if group == nil {
		group = []string{}
	}
	wd.majorGroup = group
	return wd.majorGroup
}

func (wd *WorldDistribution) baseContains(name string) bool {
	return containsString(wd.basePool, name)
}

func (wd *WorldDistribution) baseRemove(name string) {
	for i, n := range wd.basePool {
		if n == name {
			wd.basePool = append(wd.basePool[:i], wd.basePool[i+1:]...)
			return
		}
	}
}

// junkCaps extracts the per-name junk limits implied by this world's pool
// adjustment records.
func (wd *WorldDistribution) junkCaps() map[string]int {
	caps := map[string]int{}
	for name, rec := range wd.ItemPool {
		if rec.Type == "set" {
			caps[name] = rec.Count
		}
	}
	return caps
}

// poolRemoveNames removes up to count entries matching pat, chosen uniformly
// at random across all pools. Removal first restricts to the base pool (this
// player's own allocation) and falls back to the full scope on exhaustion.
func (wd *WorldDistribution) poolRemoveNames(pools []*[]string, pat string, count int) ([]string, error) {
	matcher, err := wd.patternMatcher(pat)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0, count)
	useBase := true
	for len(removed) < count {
		pred := func(s string) bool {
			return matcher(s) && wd.baseContains(s) == useBase
		}
		name, ok := pool.PullRandom(pools, pred, wd.dist.RNG)
		if !ok {
			if useBase {
				useBase = false
				continue
			}
			return removed, &pool.PullError{Pattern: pat, Want: count, Found: len(removed)}
		}
		if useBase {
			wd.baseRemove(name)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// poolRemoveItems is the item-instance variant of poolRemoveNames, filtered
// to a single owning world.
func (wd *WorldDistribution) poolRemoveItems(pools []*[]*types.Item, pat string, count, worldID int) ([]*types.Item, error) {
	matcher, err := wd.patternMatcher(pat)
	if err != nil {
		return nil, err
	}
	removed := make([]*types.Item, 0, count)
	useBase := true
	for len(removed) < count {
		pred := func(item *types.Item) bool {
			return item.World == worldID && matcher(item.Name) && wd.baseContains(item.Name) == useBase
		}
		item, ok := pool.PullRandom(pools, pred, wd.dist.RNG)
		if !ok {
			if useBase {
				useBase = false
				continue
			}
			return removed, &pool.PullError{Pattern: pat, Want: count, Found: len(removed)}
		}
		if useBase {
			wd.baseRemove(item.Name)
		}
		removed = append(removed, item)
	}
	return removed, nil
}

// poolAddNames appends count entries to the pool. "#Junk" defers to the junk
// selector; any other pattern expands to all known items it matches (minus
// names zeroed out by an adjustment) and samples with replacement.
func (wd *WorldDistribution) poolAddNames(namePool *[]string, pat string, count int) ([]string, error) {
	tables := wd.dist.Tables
	var added []string
	switch {
	case pat == "#Junk":
		junk, err := tables.JunkItems(count, *namePool, wd.junkCaps(), wd.dist.RNG)
		if err != nil {
			return nil, err
		}
		added = junk
	case pattern.IsPattern(pat):
		matcher, err := wd.patternMatcher(pat)
		if err != nil {
			return nil, err
		}
		var candidates []string
		for _, name := range tables.ItemOrder {
			if !matcher(name) {
				continue
			}
			if rec, ok := wd.ItemPool[name]; ok && rec.Count == 0 {
				continue
			}
			candidates = append(candidates, name)
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("unknown item, or item set to 0 in the item pool could not be added: %q", pat)
		}
		for range count {
			added = append(added, candidates[wd.dist.RNG.Intn(len(candidates))])
		}
	default:
		if !tables.IsItem(pat) {
			return nil, &state.NotFoundError{Kind: "item", Name: pat, Suggestion: state.CloseMatch(pat, tables.ItemOrder)}
		}
		for range count {
			added = append(added, pat)
		}
	}
	*namePool = append(*namePool, added...)
	return added, nil
}

// AlterPool applies this world's item-pool adjustment records to the base
// pool: adds, removes, sets, bottle rebalancing, starting-item withdrawal,
// then a junk correction restoring the pool to its exact original size.
// Alteration is all-or-nothing; the first unsatisfiable step aborts it.
func (wd *WorldDistribution) AlterPool(world *state.World, namePool *[]string) error {
	wd.basePool = append([]string(nil), *namePool...)
	wd.majorGroup = nil
	wd.majorItemGroup()
	poolSize := len(*namePool)
	settings := wd.dist.Settings

	bottleMatcher, err := wd.patternMatcher("#Bottle")
	if err != nil {
		return err
	}
	adultTradeMatcher, err := wd.patternMatcher("#AdultTrade")
	if err != nil {
		return err
	}
	childTradeMatcher, err := wd.patternMatcher("#ChildTrade")
	if err != nil {
		return err
	}
	bottles := 0
	plentiful := settings.ItemPoolValue == "plentiful" || settings.ItemPoolValue == "ludicrous"

	names := sortedRecordKeys(wd.ItemPool)
	for _, name := range names {
		rec := wd.ItemPool[name]
		if rec.Type == "add" {
			if _, err := wd.poolAddNames(namePool, name, rec.Count); err != nil {
				return err
			}
		}
		if rec.Type == "remove" {
			if _, err := wd.poolRemoveNames([]*[]string{namePool}, name, rec.Count); err != nil {
				return err
			}
		}
	}

	var removeTrade []string
	for _, name := range names {
		rec := wd.ItemPool[name]
		if rec.Type != "set" {
			continue
		}
		switch {
		case name == "#Junk":
			return fmt.Errorf("#Junk item group cannot have a set number of items")
		case name == "Ice Arrows" && settings.BlueFireArrows:
			return fmt.Errorf("cannot add Ice Arrows to item pool with Blue Fire Arrows enabled")
		case name == "Blue Fire Arrows" && !settings.BlueFireArrows:
			return fmt.Errorf("cannot add Blue Fire Arrows to item pool with Blue Fire Arrows disabled")
		case childTradeMatcher(name) && !containsString(settings.ShuffleChildTrade, name):
			// Unshuffled child trade items are pruned rather than erroring,
			// so removed-tracking keys stay consistent.
			removeTrade = append(removeTrade, name)
			continue
		case childTradeMatcher(name) && !plentiful:
			rec.Count = 1
			continue
		}

		matcher, err := wd.patternMatcher(name)
		if err != nil {
			return err
		}
		matchCount := 0
		for _, poolName := range *namePool {
			if matcher(poolName) {
				wd.baseRemove(poolName)
				matchCount++
			}
		}

		delta := rec.Count - matchCount
		if delta > 0 {
			addedItems, err := wd.poolAddNames(namePool, name, delta)
			if err != nil {
				return err
			}
			for _, added := range addedItems {
				if bottleMatcher(added) {
					bottles++
				} else if adultTradeMatcher(added) && !(plentiful || settings.AdultTradeShuffle) {
					if _, err := wd.poolRemoveNames([]*[]string{namePool}, "#AdultTrade", 1); err != nil {
						return err
					}
				}
			}
		} else if delta < 0 {
			removedItems, err := wd.poolRemoveNames([]*[]string{namePool}, name, -delta)
			if err != nil {
				return err
			}
			for _, rem := range removedItems {
				if bottleMatcher(rem) {
					bottles--
				} else if adultTradeMatcher(rem) && !(plentiful || settings.AdultTradeShuffle) {
					if _, err := wd.poolAddNames(namePool, "#AdultTrade", 1); err != nil {
						return err
					}
				}
			}
		}
	}

	for _, name := range removeTrade {
		delete(wd.ItemPool, name)
	}

	// Bottles have a fixed total supply: one corrective operation brings the
	// net bottle delta back to zero.
	if bottles > 0 {
		if _, err := wd.poolRemoveNames([]*[]string{namePool}, "#Bottle", bottles); err != nil {
			return err
		}
	} else if bottles < 0 {
		if _, err := wd.poolAddNames(namePool, "#Bottle", -bottles); err != nil {
			return err
		}
	}

	if err := wd.removeStartingItems(world, namePool, bottleMatcher, adultTradeMatcher); err != nil {
		return err
	}

	junkToAdd := poolSize - len(*namePool)
	if junkToAdd > 0 {
		if _, err := wd.poolAddNames(namePool, "#Junk", junkToAdd); err != nil {
			return err
		}
	} else if junkToAdd < 0 {
		if _, err := wd.poolRemoveNames([]*[]string{namePool}, "#Junk", -junkToAdd); err != nil {
			return err
		}
	}
	return nil
}

// removeStartingItems withdraws one pool copy per starting item so items the
// player begins with are not also findable in the world. Paired trade items
// remove their unselected member; arrow variants follow the settings flag.
func (wd *WorldDistribution) removeStartingItems(world *state.World, namePool *[]string, bottleMatcher, adultTradeMatcher pattern.Matcher) error {
	settings := wd.dist.Settings
	tables := wd.dist.Tables
	pools := []*[]string{namePool}

	starters := wd.StartingItems()
	for _, name := range sortedRecordKeys(starters) {
		rec := starters[name]
		switch {
		case bottleMatcher(name):
			if _, err := wd.poolRemoveNames(pools, "#Bottle", rec.Count); err != nil {
				return err
			}
		case (name == "Pocket Egg" || name == "Pocket Cucco") && settings.AdultTradeShuffle:
			target := "Pocket Cucco"
			if containsString(settings.AdultTradeStart, "Pocket Egg") {
				target = "Pocket Egg"
			} else if !containsString(settings.AdultTradeStart, "Pocket Cucco") {
				return fmt.Errorf("an unshuffled trade item was included as a starting item: remove %s from starting items", name)
			}
			if _, err := wd.poolRemoveNames(pools, target, rec.Count); err != nil {
				return fmt.Errorf("tried to start with a Pocket Egg or Pocket Cucco but could not remove it from the item pool; are both shuffled?")
			}
		case adultTradeMatcher(name) && !settings.AdultTradeShuffle:
			if _, err := wd.poolRemoveNames(pools, "#AdultTrade", rec.Count); err != nil {
				return err
			}
		case name == "Ice Arrows" && settings.BlueFireArrows:
			if _, err := wd.poolRemoveNames(pools, "Blue Fire Arrows", rec.Count); err != nil {
				return err
			}
		case (name == "Weird Egg" || name == "Chicken") && len(settings.ShuffleChildTrade) > 0:
			target := "Chicken"
			if containsString(settings.ShuffleChildTrade, "Weird Egg") {
				target = "Weird Egg"
			} else if !containsString(settings.ShuffleChildTrade, "Chicken") {
				return fmt.Errorf("an unshuffled trade item was included as a starting item: remove %s from starting items", name)
			}
			if _, err := wd.poolRemoveNames(pools, target, rec.Count); err != nil {
				return fmt.Errorf("tried to start with a Weird Egg or Chicken but could not remove it from the item pool; are both shuffled?")
			}
		case tables.IsItem(name):
			// Best effort: a starting item absent from the pool is fine.
			wd.poolRemoveNames(pools, name, rec.Count)
			if containsString(tables.ItemGroups["Song"], name) {
				wd.SongAsItems = true
			}
		}
	}
	return nil
}

// SetCompleteItemPool replaces the pool adjustment records with a full
// set-record inventory of the final pool, for the output report.
func (wd *WorldDistribution) SetCompleteItemPool(items []*types.Item) {
	wd.ItemPool = map[string]*record.ItemPoolRecord{}
	for _, item := range items {
		if item.Info.DungeonItem || item.Info.Type == "Drop" || item.Info.Type == "Event" || item.Info.Type == "DungeonReward" {
			continue
		}
		if rec, ok := wd.ItemPool[item.Name]; ok {
			rec.Count++
		} else {
			wd.ItemPool[item.Name] = &record.ItemPoolRecord{Type: "set", Count: 1}
		}
	}
}

// ConfigureDungeons applies explicit dungeon variants, withdrawing them from
// the random pools, and returns how many master-quest and empty dungeons
// were fixed by the override.
func (wd *WorldDistribution) ConfigureDungeons(world *state.World, mqPool, emptyPool *[]string) (int, int, error) {
	numMQ, numEmpty := 0, 0
	for _, name := range sortedRecordKeys(wd.Dungeons) {
		rec := wd.Dungeons[name]
		if rec.MQ == nil {
			continue
		}
		if !removeString(mqPool, name) {
			return 0, 0, fmt.Errorf("dungeon %q is not eligible for a variant override in world %d", name, wd.ID+1)
		}
		if *rec.MQ {
			numMQ++
			world.DungeonMQ[name] = true
		}
	}
	for _, name := range sortedRecordKeys(wd.EmptyDungeons) {
		rec := wd.EmptyDungeons[name]
		if rec.Empty == nil {
			continue
		}
		if !removeString(emptyPool, name) {
			return 0, 0, fmt.Errorf("dungeon %q is not eligible for an empty override in world %d", name, wd.ID+1)
		}
		if *rec.Empty {
			numEmpty++
			world.EmptyDungeons[name] = true
		}
	}
	return numMQ, numEmpty, nil
}

// ConfigureTrials applies explicit trial states, withdrawing them from the
// random pool, and returns the trials fixed active.
func (wd *WorldDistribution) ConfigureTrials(trialPool *[]string) ([]string, error) {
	var chosen []string
	for _, name := range sortedRecordKeys(wd.Trials) {
		rec := wd.Trials[name]
		if rec.Active == nil {
			continue
		}
		if !removeString(trialPool, name) {
			return nil, fmt.Errorf("trial %q is not eligible for an override", name)
		}
		if *rec.Active {
			chosen = append(chosen, name)
		}
	}
	return chosen, nil
}

// ConfigureSongs returns the overridden song note sequences.
func (wd *WorldDistribution) ConfigureSongs() map[string]string {
	notes := map[string]string{}
	for name, rec := range wd.Songs {
		if rec.Notes != nil {
			notes[name] = *rec.Notes
		}
	}
	return notes
}

// AddLocation records a location assignment only if no existing record (or
// pattern) already covers that location.
func (wd *WorldDistribution) AddLocation(location, item string) error {
	for key := range wd.Locations {
		matcher, err := wd.patternMatcher(key)
		if err != nil {
			continue
		}
		if matcher(location) {
			return fmt.Errorf("location %q already has a record", location)
		}
	}
	wd.Locations[location] = &record.LocationRecord{Item: &record.ItemRef{Name: item}}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedRecordKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list *[]string, s string) bool {
	for i, v := range *list {
		if v == s {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
