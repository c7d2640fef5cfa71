package state

import "github.com/nathoo/plando/types"

// Layer indices shared with the resolution engine. Location pools come in
// three layers, item pools in six; fill restricts which layers a record may
// draw from.
const (
	LocationPoolShop = iota
	LocationPoolSong
	LocationPoolFill
	locationPoolCount
)

const (
	ItemPoolShop = iota
	ItemPoolDungeon
	ItemPoolSong
	ItemPoolProgression
	ItemPoolPriority
	ItemPoolRemainder
	itemPoolCount
)

// VanillaNames returns the base item-name pool implied by the world's
// unskipped, non-boss locations.
func (w *World) VanillaNames() []string {
	var names []string
	for _, locName := range w.Tables.LocationOrder {
		loc := w.Locations[locName]
		if loc.Skipped || loc.Type == "Boss" || loc.Vanilla == "" {
			continue
		}
		names = append(names, loc.Vanilla)
	}
	return names
}

// PoolsFromNames builds the layered location and item pools from each
// world's (possibly altered) item-name pool: every unskipped location enters
// a location layer by type, and each named item enters the matching item
// layer. Each world's ItemPool is populated with its share. Names that
// resolve to no known item are dropped.
func PoolsFromNames(worlds []*World, names [][]string) ([]*[]*types.Location, []*[]*types.Item) {
	locationPools := make([]*[]*types.Location, locationPoolCount)
	for i := range locationPools {
		locationPools[i] = &[]*types.Location{}
	}
	itemPools := make([]*[]*types.Item, itemPoolCount)
	for i := range itemPools {
		itemPools[i] = &[]*types.Item{}
	}

	for _, w := range worlds {
		for _, name := range w.Tables.LocationOrder {
			loc := w.Locations[name]
			if loc.Skipped || loc.Type == "Boss" {
				continue
			}
			switch loc.Type {
			case "Shop":
				*locationPools[LocationPoolShop] = append(*locationPools[LocationPoolShop], loc)
			case "Song":
				*locationPools[LocationPoolSong] = append(*locationPools[LocationPoolSong], loc)
			default:
				*locationPools[LocationPoolFill] = append(*locationPools[LocationPoolFill], loc)
			}
		}

		for _, name := range names[w.ID] {
			item, err := w.Tables.ItemFactory(name, w.ID)
			if err != nil {
				continue
			}
			w.ItemPool = append(w.ItemPool, item)
			layer := ItemPoolRemainder
			switch {
			case item.Info.Type == "Shop":
				layer = ItemPoolShop
			case item.Info.DungeonItem:
				layer = ItemPoolDungeon
			case item.Info.Type == "Song":
				layer = ItemPoolSong
			case item.Info.Advancement:
				layer = ItemPoolProgression
			case item.Info.Priority:
				layer = ItemPoolPriority
			}
			*itemPools[layer] = append(*itemPools[layer], item)
		}
	}
	return locationPools, itemPools
}

// BasePools derives the layered pools a vanilla-seeded base generation hands
// to resolution, with every location holding its vanilla item.
func BasePools(worlds []*World) ([]*[]*types.Location, []*[]*types.Item) {
	names := make([][]string, len(worlds))
	for _, w := range worlds {
		names[w.ID] = w.VanillaNames()
	}
	return PoolsFromNames(worlds, names)
}
