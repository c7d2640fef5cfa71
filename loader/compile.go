// Package loader loads Lua game data into Go tables at startup. The Lua VM
// is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"

	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
	lua "github.com/yuin/gopher-lua"
)

// rawItem holds an item table before compilation.
type rawItem struct {
	name  string
	table *lua.LTable
}

// rawLocation holds a location table before compilation.
type rawLocation struct {
	name  string
	table *lua.LTable
}

// rawEntrance holds an entrance table before compilation.
type rawEntrance struct {
	name  string
	table *lua.LTable
}

// rawDungeon holds a dungeon table before compilation.
type rawDungeon struct {
	name  string
	table *lua.LTable
}

// rawGroup holds a named member list before compilation.
type rawGroup struct {
	name    string
	members []string
}

type rawStone struct {
	name string
	id   int
}

type rawAmmo struct {
	equipment string
	item      string
	counts    []int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// hasField reports whether the table defines the key at all.
func hasField(tbl *lua.LTable, key string) bool {
	return tbl.RawGetString(key) != lua.LNil
}

// tableToStringList converts the array part of a Lua table to []string.
func tableToStringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var list []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			list = append(list, string(s))
		}
	}
	return list
}

// tableToIntList converts the array part of a Lua table to []int.
func tableToIntList(tbl *lua.LTable) []int {
	if tbl == nil {
		return nil
	}
	var list []int
	for i := 1; i <= tbl.MaxN(); i++ {
		if n, ok := tbl.RawGetInt(i).(lua.LNumber); ok {
			list = append(list, int(n))
		}
	}
	return list
}

// compile converts all collected Lua data into the Tables struct.
func compile(coll *collector) (*state.Tables, error) {
	tables := &state.Tables{
		Items:          map[string]*types.ItemInfo{},
		Locations:      map[string]*types.LocationInfo{},
		ItemGroups:     map[string][]string{},
		LocationGroups: map[string][]string{},
		GossipStones:   map[string]int{},
		Ammo:           map[string]state.AmmoRef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	tables.Title = getString(coll.game, "title")
	tables.Version = getString(coll.game, "version")

	for _, raw := range coll.items {
		if _, ok := tables.Items[raw.name]; ok {
			return nil, fmt.Errorf("duplicate item definition %q", raw.name)
		}
		tables.Items[raw.name] = compileItem(raw)
		tables.ItemOrder = append(tables.ItemOrder, raw.name)
	}

	for _, raw := range coll.locations {
		if _, ok := tables.Locations[raw.name]; ok {
			return nil, fmt.Errorf("duplicate location definition %q", raw.name)
		}
		tables.Locations[raw.name] = compileLocation(raw)
		tables.LocationOrder = append(tables.LocationOrder, raw.name)
	}

	for _, raw := range coll.entrances {
		tables.Entrances = append(tables.Entrances, state.EntranceDef{
			Name: raw.name,
			Type: getString(raw.table, "type"),
			From: getString(raw.table, "from"),
			To:   getString(raw.table, "to"),
		})
	}

	for _, raw := range coll.dungeons {
		tables.Dungeons = append(tables.Dungeons, state.DungeonDef{
			Name:    raw.name,
			BossKey: getString(raw.table, "boss_key"),
		})
	}

	for _, group := range coll.itemGroups {
		tables.ItemGroups[group.name] = group.members
	}
	for _, group := range coll.locGroups {
		tables.LocationGroups[group.name] = group.members
	}

	for _, stone := range coll.stones {
		if _, ok := tables.GossipStones[stone.name]; ok {
			return nil, fmt.Errorf("duplicate gossip stone definition %q", stone.name)
		}
		tables.GossipStones[stone.name] = stone.id
		tables.GossipOrder = append(tables.GossipOrder, stone.name)
	}

	for _, ammo := range coll.ammo {
		tables.Ammo[ammo.equipment] = state.AmmoRef{Item: ammo.item, Counts: ammo.counts}
	}

	tables.AdultTradeItems = coll.adultTrade
	tables.ChildTradeItems = coll.childTrade
	tables.WinCondition = coll.winItems

	return tables, nil
}

func compileItem(raw rawItem) *types.ItemInfo {
	tbl := raw.table
	return &types.ItemInfo{
		Name:        raw.name,
		Type:        getString(tbl, "type"),
		Advancement: getBool(tbl, "advancement", false),
		Priority:    getBool(tbl, "priority", false),
		DungeonItem: getBool(tbl, "dungeon_item", false),
		Trap:        getBool(tbl, "trap", false),
		JunkWeight:  getInt(tbl, "junk_weight"),
	}
}

func compileLocation(raw rawLocation) *types.LocationInfo {
	tbl := raw.table
	info := &types.LocationInfo{
		Name:    raw.name,
		Type:    getString(tbl, "type"),
		Vanilla: getString(tbl, "vanilla"),
		Dungeon: getString(tbl, "dungeon"),
	}
	// A shop buy slot leaves price unset; zero is a valid fixed price.
	if hasField(tbl, "price") {
		price := getInt(tbl, "price")
		info.Price = &price
	}
	return info
}
