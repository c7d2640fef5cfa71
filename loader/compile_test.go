package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/plando/engine/state"
)

// loadFrom writes a single game.lua and loads it.
func loadFrom(t *testing.T, body string) (*state.Tables, error) {
	t.Helper()
	dir := t.TempDir()
	writeLua(t, dir, "game.lua", body)
	return Load(dir)
}

func TestCompile_ItemDefaults(t *testing.T) {
	tables, err := loadFrom(t, `
Game { title = "Defaults", version = "1.0.0" }
Item "Plain" {}
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	info := tables.Items["Plain"]
	if info.Advancement || info.Priority || info.DungeonItem || info.Trap {
		t.Errorf("boolean fields must default to false: %+v", info)
	}
	if info.Type != "" || info.JunkWeight != 0 {
		t.Errorf("zero-value fields set unexpectedly: %+v", info)
	}
}

func TestCompile_ZeroPriceIsKept(t *testing.T) {
	tables, err := loadFrom(t, `
Game { title = "Price", version = "1.0.0" }
Item "Buy Free Thing" { type = "Shop" }
Location "Free Slot" {
    type = "Shop",
    vanilla = "Buy Free Thing",
    price = 0,
}
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	loc := tables.Locations["Free Slot"]
	if loc.Price == nil || *loc.Price != 0 {
		t.Errorf("price = %v, want explicit 0", loc.Price)
	}
}

func TestCompile_MissingPriceIsNil(t *testing.T) {
	tables, err := loadFrom(t, `
Game { title = "Price", version = "1.0.0" }
Item "Buy Thing" { type = "Shop" }
Location "Buy Slot" {
    type = "Shop",
    vanilla = "Buy Thing",
}
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tables.Locations["Buy Slot"].Price != nil {
		t.Error("omitted price must stay nil, it marks a buy slot")
	}
}

func TestCompile_DuplicateItem(t *testing.T) {
	_, err := loadFrom(t, `
Game { title = "Dup", version = "1.0.0" }
Item "Sword" {}
Item "Sword" {}
`)
	if err == nil || !strings.Contains(err.Error(), "duplicate item") {
		t.Fatalf("error = %v, want duplicate-item error", err)
	}
}

func TestCompile_DuplicateLocation(t *testing.T) {
	_, err := loadFrom(t, `
Game { title = "Dup", version = "1.0.0" }
Location "Chest" {}
Location "Chest" {}
`)
	if err == nil || !strings.Contains(err.Error(), "duplicate location") {
		t.Fatalf("error = %v, want duplicate-location error", err)
	}
}

func TestCompile_DuplicateGossipStone(t *testing.T) {
	_, err := loadFrom(t, `
Game { title = "Dup", version = "1.0.0" }
GossipStone("Stone", 0x0401)
GossipStone("Stone", 0x0402)
`)
	if err == nil || !strings.Contains(err.Error(), "duplicate gossip stone") {
		t.Fatalf("error = %v, want duplicate-stone error", err)
	}
}

func TestCompile_GroupMembersKeepOrder(t *testing.T) {
	tables, err := loadFrom(t, `
Game { title = "Groups", version = "1.0.0" }
Item "A" {}
Item "B" {}
Item "C" {}
ItemGroup "Ordered" { "C", "A", "B" }
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := tables.ItemGroups["Ordered"]
	if len(got) != 3 || got[0] != "C" || got[1] != "A" || got[2] != "B" {
		t.Errorf("group order = %v", got)
	}
}

func TestCompile_LuaExpressionsInDefinitions(t *testing.T) {
	// Definitions may use the safe Lua libraries.
	tables, err := loadFrom(t, `
Game { title = "Expr", version = "1.0.0" }
for i = 1, 3 do
    Item(string.format("Rupees (%d)", i * 5)) { junk_weight = i }
end
ItemGroup "Junk" { "Rupees (5)", "Rupees (10)", "Rupees (15)" }
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tables.ItemOrder) != 3 {
		t.Fatalf("ItemOrder = %v", tables.ItemOrder)
	}
	if tables.Items["Rupees (10)"].JunkWeight != 2 {
		t.Errorf("junk weight = %d, want 2", tables.Items["Rupees (10)"].JunkWeight)
	}
}
