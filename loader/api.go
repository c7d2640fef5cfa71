package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", version = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Item "name" { ... } — curried: Item("name") returns a function that
	// takes the definition table.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawItem{name: name, table: tbl})
			return 0
		}))
		return 1
	}))

	// Location "name" { ... } — curried.
	L.SetGlobal("Location", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.locations = append(coll.locations, rawLocation{name: name, table: tbl})
			return 0
		}))
		return 1
	}))

	// Entrance "name" { type = "...", from = "...", to = "..." } — curried.
	L.SetGlobal("Entrance", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.entrances = append(coll.entrances, rawEntrance{name: name, table: tbl})
			return 0
		}))
		return 1
	}))

	// Dungeon "name" { boss_key = "..." } — curried.
	L.SetGlobal("Dungeon", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.dungeons = append(coll.dungeons, rawDungeon{name: name, table: tbl})
			return 0
		}))
		return 1
	}))

	// ItemGroup "name" { "member", ... } — curried.
	L.SetGlobal("ItemGroup", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.itemGroups = append(coll.itemGroups, rawGroup{name: name, members: tableToStringList(tbl)})
			return 0
		}))
		return 1
	}))

	// LocationGroup "name" { "member", ... } — curried.
	L.SetGlobal("LocationGroup", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.locGroups = append(coll.locGroups, rawGroup{name: name, members: tableToStringList(tbl)})
			return 0
		}))
		return 1
	}))

	// GossipStone("name", text_id)
	L.SetGlobal("GossipStone", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		id := L.CheckInt(2)
		coll.stones = append(coll.stones, rawStone{name: name, id: id})
		return 0
	}))

	// Ammo("equipment", "ammo item", { counts... })
	L.SetGlobal("Ammo", L.NewFunction(func(L *lua.LState) int {
		equipment := L.CheckString(1)
		item := L.CheckString(2)
		counts := L.CheckTable(3)
		coll.ammo = append(coll.ammo, rawAmmo{
			equipment: equipment,
			item:      item,
			counts:    tableToIntList(counts),
		})
		return 0
	}))

	// AdultTrade { "item", ... } — the sequence in ascending priority order.
	L.SetGlobal("AdultTrade", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.adultTrade = tableToStringList(tbl)
		return 0
	}))

	// ChildTrade { "item", ... }
	L.SetGlobal("ChildTrade", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.childTrade = tableToStringList(tbl)
		return 0
	}))

	// WinCondition { "item", ... }
	L.SetGlobal("WinCondition", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.winItems = tableToStringList(tbl)
		return 0
	}))
}
