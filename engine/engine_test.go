package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
)

func testTables() *state.Tables {
	t := &state.Tables{
		Title:          "plando",
		Version:        "1.0.0",
		Items:          map[string]*types.ItemInfo{},
		Locations:      map[string]*types.LocationInfo{},
		ItemGroups:     map[string][]string{},
		LocationGroups: map[string][]string{},
		GossipStones:   map[string]int{},
		Ammo:           map[string]state.AmmoRef{},
	}
	addItem := func(info types.ItemInfo) {
		copied := info
		t.Items[info.Name] = &copied
		t.ItemOrder = append(t.ItemOrder, info.Name)
	}
	addLoc := func(info types.LocationInfo) {
		copied := info
		t.Locations[info.Name] = &copied
		t.LocationOrder = append(t.LocationOrder, info.Name)
	}

	addItem(types.ItemInfo{Name: "Kokiri Sword", Advancement: true})
	addItem(types.ItemInfo{Name: "Iron Boots", Advancement: true})
	addItem(types.ItemInfo{Name: "Bow", Advancement: true})
	addItem(types.ItemInfo{Name: "Arrows (30)"})
	addItem(types.ItemInfo{Name: "Rupees (5)", JunkWeight: 10})
	addItem(types.ItemInfo{Name: "Deku Nuts (5)", JunkWeight: 4})
	addItem(types.ItemInfo{Name: "Bombs (5)", JunkWeight: 8})
	addItem(types.ItemInfo{Name: "Buy Deku Shield", Type: "Shop"})
	addItem(types.ItemInfo{Name: "Buy Bombs", Type: "Shop"})
	addItem(types.ItemInfo{Name: "Bottle"})
	addItem(types.ItemInfo{Name: "Bottle with Milk"})
	addItem(types.ItemInfo{Name: "Pocket Egg"})
	addItem(types.ItemInfo{Name: "Pocket Cucco"})
	addItem(types.ItemInfo{Name: "Claim Check", Advancement: true})
	addItem(types.ItemInfo{Name: "Weird Egg"})
	addItem(types.ItemInfo{Name: "Chicken"})
	addItem(types.ItemInfo{Name: "Zeldas Letter"})
	addItem(types.ItemInfo{Name: "Zeldas Lullaby", Type: "Song", Advancement: true})
	addItem(types.ItemInfo{Name: "Kokiri Emerald", Type: "DungeonReward", Advancement: true})
	addItem(types.ItemInfo{Name: "Piece of Heart"})
	addItem(types.ItemInfo{Name: "Heart Container"})
	addItem(types.ItemInfo{Name: "Triforce Piece", Advancement: true})
	addItem(types.ItemInfo{Name: "Ice Trap", Trap: true})

	t.Ammo["Bow"] = state.AmmoRef{Item: "Arrows (30)", Counts: []int{30, 40, 50}}

	t.ItemGroups["MajorItem"] = []string{"Kokiri Sword", "Iron Boots", "Bow", "Zeldas Lullaby"}
	t.ItemGroups["Song"] = []string{"Zeldas Lullaby"}
	t.ItemGroups["Bottle"] = []string{"Bottle", "Bottle with Milk"}
	t.ItemGroups["AdultTrade"] = []string{"Pocket Egg", "Pocket Cucco", "Claim Check"}
	t.ItemGroups["ChildTrade"] = []string{"Weird Egg", "Chicken", "Zeldas Letter"}
	t.ItemGroups["DungeonReward"] = []string{"Kokiri Emerald"}
	t.ItemGroups["Junk"] = []string{"Rupees (5)", "Deku Nuts (5)", "Bombs (5)"}
	t.LocationGroups["Boss"] = []string{"Queen Gohma"}
	t.LocationGroups["Song"] = []string{"Song from Saria"}

	price := 40
	addLoc(types.LocationInfo{Name: "KF Kokiri Sword Chest", Type: "Chest", Vanilla: "Kokiri Sword"})
	addLoc(types.LocationInfo{Name: "Zora Fountain", Type: "Chest", Vanilla: "Iron Boots"})
	addLoc(types.LocationInfo{Name: "LW Target in Woods", Type: "Chest", Vanilla: "Rupees (5)"})
	addLoc(types.LocationInfo{Name: "KF Midos Top Chest", Type: "Chest", Vanilla: "Deku Nuts (5)"})
	addLoc(types.LocationInfo{Name: "Market Bazaar Item 1", Type: "Shop", Vanilla: "Buy Deku Shield", Price: &price})
	addLoc(types.LocationInfo{Name: "Song from Saria", Type: "Song", Vanilla: "Zeldas Lullaby"})
	addLoc(types.LocationInfo{Name: "Queen Gohma", Type: "Boss", Vanilla: "Kokiri Emerald", Dungeon: "Deku Tree"})

	t.Entrances = []state.EntranceDef{
		{Name: "KF Outside Deku Tree -> Deku Tree Lobby", Type: "Dungeon", From: "KF Outside Deku Tree", To: "Deku Tree Lobby"},
		{Name: "Death Mountain -> Dodongos Cavern Beginning", Type: "Dungeon", From: "Death Mountain", To: "Dodongos Cavern Beginning"},
		{Name: "Kokiri Forest -> Hyrule Field", Type: "Overworld", From: "Kokiri Forest", To: "Hyrule Field"},
	}
	t.Dungeons = []state.DungeonDef{{Name: "Deku Tree"}}
	t.GossipStones["DMC (Bombable Wall)"] = 0x0401
	t.GossipStones["ZR (Near Grottos)"] = 0x0402
	t.GossipOrder = []string{"DMC (Bombable Wall)", "ZR (Near Grottos)"}
	t.AdultTradeItems = []string{"Pocket Egg", "Pocket Cucco", "Claim Check"}
	t.ChildTradeItems = []string{"Weird Egg", "Chicken", "Zeldas Letter"}
	t.WinCondition = []string{"Kokiri Sword"}
	return t
}

func testSettings() *types.Settings {
	return &types.Settings{
		WorldCount:            1,
		Seed:                  42,
		ItemPoolValue:         "balanced",
		ShuffleSongItems:      "any",
		ZoraFountain:          "open",
		GerudoFortress:        "closed",
		EmptyDungeonsMode:     "none",
		ShuffledEntranceTypes: []string{"Dungeon"},
	}
}

func newTestDist(t *testing.T, settings *types.Settings, doc map[string]any) (*Distribution, []*state.World) {
	t.Helper()
	tables := testTables()
	var worlds []*state.World
	for id := range settings.WorldCount {
		worlds = append(worlds, state.NewWorld(id, settings, tables))
	}
	d, err := New(settings, tables, state.RequirementSearch(), doc)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return d, worlds
}

func TestNewRejectsTopLevelStartingItems(t *testing.T) {
	settings := testSettings()
	_, err := New(settings, testTables(), state.RequirementSearch(), map[string]any{
		"starting_items": map[string]any{"Bow": 1},
	})
	if err == nil {
		t.Fatal("top-level starting_items must be rejected")
	}
}

func TestNewRejectsUnknownSection(t *testing.T) {
	settings := testSettings()
	_, err := New(settings, testTables(), state.RequirementSearch(), map[string]any{
		"locatons": map[string]any{"Zora Fountain": "Bow"},
	})
	if err == nil {
		t.Fatal("unknown top-level section must be rejected")
	}
	if !strings.Contains(err.Error(), `"locatons"`) {
		t.Errorf("error must name the offending section, got %v", err)
	}
	if !strings.Contains(err.Error(), "locations") {
		t.Errorf("error should suggest the close match, got %v", err)
	}
}

func TestNewAcceptsOutputSections(t *testing.T) {
	settings := testSettings()
	_, err := New(settings, testTables(), state.RequirementSearch(), map[string]any{
		":version":      "1.0.0",
		":seed":         42,
		"file_hash":     []any{"Bow"},
		"locations":     map[string]any{},
		"gossip_stones": map[string]any{},
	})
	if err != nil {
		t.Fatalf("resolved-document sections must load, got %v", err)
	}
}

func TestUpdateReportGossipFallbackKey(t *testing.T) {
	settings := testSettings()
	d, worlds := newTestDist(t, settings, map[string]any{})

	text := "They say the fountain hides a treasure."
	rep := &state.Report{Hints: []map[int]state.Hint{{0x040A: {Text: text}}}}
	d.UpdateReport(worlds, rep, true)

	rec, ok := d.WorldDists[0].GossipStones["0x040A"]
	if !ok {
		t.Fatalf("unnamed stone must key by uppercase hex id, got %v", d.WorldDists[0].GossipStones)
	}
	if rec.Text == nil || *rec.Text != text {
		t.Errorf("hint text not carried into the record: %+v", rec)
	}
}

func TestResetWorldKeyMerge(t *testing.T) {
	settings := testSettings()
	settings.WorldCount = 2
	d, _ := newTestDist(t, settings, map[string]any{
		"locations": map[string]any{
			"World 2":               map[string]any{"Zora Fountain": "Bow"},
			"KF Kokiri Sword Chest": "Iron Boots",
		},
	})

	if _, ok := d.WorldDists[0].Locations["Zora Fountain"]; ok {
		t.Error("world 1 must not receive world 2's entry")
	}
	if _, ok := d.WorldDists[0].Locations["KF Kokiri Sword Chest"]; !ok {
		t.Error("world 1 missing shared entry")
	}
	if _, ok := d.WorldDists[1].Locations["Zora Fountain"]; !ok {
		t.Error("world 2 missing its own entry")
	}
	if _, ok := d.WorldDists[1].Locations["KF Kokiri Sword Chest"]; !ok {
		t.Error("world 2 missing shared entry")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	d, _ := newTestDist(t, testSettings(), map[string]any{
		"locations": map[string]any{"Zora Fountain": "Kokiri Sword"},
	})

	d.WorldDists[0].Locations["Zora Fountain"].Item.Name = "Bow"
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	if got := d.WorldDists[0].Locations["Zora Fountain"].Item.Name; got != "Kokiri Sword" {
		t.Errorf("record after Reset = %q, want the document value back", got)
	}
}

func TestFillPlacesExplicitItem(t *testing.T) {
	d, worlds := newTestDist(t, testSettings(), map[string]any{
		"locations": map[string]any{"Zora Fountain": "Kokiri Sword"},
	})
	locPools, itemPools := state.BasePools(worlds)

	if err := d.Fill(worlds, locPools, itemPools); err != nil {
		t.Fatalf("Fill error: %v", err)
	}
	loc := worlds[0].Locations["Zora Fountain"]
	if loc.Item == nil || loc.Item.Name != "Kokiri Sword" {
		t.Fatalf("Zora Fountain item = %+v, want Kokiri Sword", loc.Item)
	}
	// The displaced vanilla item stays in the pool.
	found := false
	for _, p := range itemPools {
		for _, item := range *p {
			if item.Name == "Iron Boots" {
				found = true
			}
		}
	}
	if !found {
		t.Error("Iron Boots should remain in the unplaced pool")
	}
}

func TestFillSubstitutesJunkForMissingItem(t *testing.T) {
	d, worlds := newTestDist(t, testSettings(), map[string]any{
		"locations": map[string]any{"Zora Fountain": "Bow"},
	})
	locPools, itemPools := state.BasePools(worlds)

	// Bow is not in the base pool; placing it must displace a junk item and
	// record the addition.
	if err := d.Fill(worlds, locPools, itemPools); err != nil {
		t.Fatalf("Fill error: %v", err)
	}
	loc := worlds[0].Locations["Zora Fountain"]
	if loc.Item == nil || loc.Item.Name != "Bow" {
		t.Fatalf("Zora Fountain item = %+v, want Bow", loc.Item)
	}
	rec, ok := d.WorldDists[0].ItemPool["Bow"]
	if !ok || rec.Count != 1 {
		t.Errorf("pool record for substituted Bow = %+v", rec)
	}
}

func TestFillUnknownLocation(t *testing.T) {
	d, worlds := newTestDist(t, testSettings(), map[string]any{
		"locations": map[string]any{"Zora Fountan": "Kokiri Sword"},
	})
	locPools, itemPools := state.BasePools(worlds)

	err := d.Fill(worlds, locPools, itemPools)
	if err == nil {
		t.Fatal("unknown location must abort the fill")
	}
}

func TestFillReachabilityGate(t *testing.T) {
	settings := testSettings()
	tables := testTables()
	worlds := []*state.World{state.NewWorld(0, settings, tables)}

	// A search that demands the sword stay in the unplaced pool: placing it
	// anywhere trips the gate.
	search := func(worlds []*state.World, pool []*types.Item) bool {
		for _, item := range pool {
			if item.Name == "Kokiri Sword" {
				return true
			}
		}
		return false
	}
	d, err := New(settings, tables, search, map[string]any{
		"locations": map[string]any{"Zora Fountain": "Kokiri Sword"},
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	locPools, itemPools := state.BasePools(worlds)

	fillErr := d.Fill(worlds, locPools, itemPools)
	var fe *FillError
	if !errors.As(fillErr, &fe) {
		t.Fatalf("error = %v, want FillError", fillErr)
	}
	if fe.Location != "Zora Fountain" || fe.Item != "Kokiri Sword" || fe.World != 0 || fe.ItemWorld != 0 {
		t.Errorf("FillError = %+v", fe)
	}
}

func TestFillDeterminism(t *testing.T) {
	run := func() []byte {
		d, worlds := newTestDist(t, testSettings(), map[string]any{
			"locations": map[string]any{
				"*Chest": []any{"Kokiri Sword", "Iron Boots"},
			},
		})
		locPools, itemPools := state.BasePools(worlds)
		if err := d.Fill(worlds, locPools, itemPools); err != nil {
			t.Fatalf("Fill error: %v", err)
		}
		data, err := json.Marshal(d.ToDocument(true, true))
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}
		return data
	}
	first := run()
	second := run()
	if string(first) != string(second) {
		t.Error("identical seed and document must produce identical output")
	}
}

func TestConfigureTriforceHunt(t *testing.T) {
	t.Run("not enough pieces", func(t *testing.T) {
		settings := testSettings()
		settings.TriforceHunt = true
		settings.TriforceGoal = 3
		d, worlds := newTestDist(t, settings, map[string]any{
			"item_pool": map[string]any{"Triforce Piece": 1},
		})
		if err := d.ConfigureTriforceHunt(worlds); err == nil {
			t.Fatal("expected a too-few-pieces error")
		}
	})

	t.Run("too many starting pieces", func(t *testing.T) {
		settings := testSettings()
		settings.TriforceHunt = true
		settings.TriforceGoal = 3
		settings.StartingItems = map[string]int{"Triforce Piece": 3}
		d, worlds := newTestDist(t, settings, map[string]any{
			"item_pool": map[string]any{"Triforce Piece": 5},
		})
		if err := d.ConfigureTriforceHunt(worlds); err == nil {
			t.Fatal("expected a too-many-starting-pieces error")
		}
	})

	t.Run("valid", func(t *testing.T) {
		settings := testSettings()
		settings.TriforceHunt = true
		settings.TriforceGoal = 3
		settings.StartingItems = map[string]int{"Triforce Piece": 1}
		d, worlds := newTestDist(t, settings, map[string]any{
			"item_pool": map[string]any{"Triforce Piece": 4},
		})
		if err := d.ConfigureTriforceHunt(worlds); err != nil {
			t.Fatalf("ConfigureTriforceHunt error: %v", err)
		}
		if worlds[0].TriforceCount != 5 {
			t.Errorf("TriforceCount = %d, want 5", worlds[0].TriforceCount)
		}
		if worlds[0].TotalStartingTriforceCount != 1 {
			t.Errorf("TotalStartingTriforceCount = %d, want 1", worlds[0].TotalStartingTriforceCount)
		}
	})
}

func TestAddLocationGuardsExistingRecords(t *testing.T) {
	d, _ := newTestDist(t, testSettings(), map[string]any{
		"locations": map[string]any{"Zora Fountain": "Kokiri Sword"},
	})
	d.AddLocation("Zora Fountain", "Bow")
	if got := d.WorldDists[0].Locations["Zora Fountain"].Item.Name; got != "Kokiri Sword" {
		t.Errorf("existing record overwritten: %q", got)
	}
	d.AddLocation("LW Target in Woods", "Bombs (5)")
	if _, ok := d.WorldDists[0].Locations["LW Target in Woods"]; !ok {
		t.Error("new record not added")
	}
}

func TestHeartNormalization(t *testing.T) {
	settings := testSettings()
	settings.StartingHearts = 6
	d, _ := newTestDist(t, settings, nil)

	// 3 extra hearts: an odd count takes 4*ceil(3/2)=8 pieces and 1 container.
	if got := d.startingItems["Piece of Heart"].Count; got != 8 {
		t.Errorf("Piece of Heart = %d, want 8", got)
	}
	if got := d.startingItems["Heart Container"].Count; got != 1 {
		t.Errorf("Heart Container = %d, want 1", got)
	}
}

func TestLegacyStartingListNormalization(t *testing.T) {
	settings := testSettings()
	settings.ZoraFountain = "closed"
	settings.StartingInventory = []string{"Rutos Letter", "Bow"}
	settings.StartingEquipment = []string{"Kokiri Sword"}
	tables := testTables()
	addRuto := types.ItemInfo{Name: "Rutos Letter"}
	tables.Items["Rutos Letter"] = &addRuto
	tables.ItemOrder = append(tables.ItemOrder, "Rutos Letter")

	d, err := New(settings, tables, state.RequirementSearch(), nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if got := d.startingItems["Rutos Letter"].Count; got != 1 {
		t.Errorf("Rutos Letter = %d, want 1", got)
	}
	if got := d.startingItems["Kokiri Sword"].Count; got != 1 {
		t.Errorf("Kokiri Sword = %d, want 1", got)
	}
	// Bow brings its ammo curve along.
	if got := d.startingItems["Arrows (30)"].Count; got != 30 {
		t.Errorf("Arrows (30) = %d, want 30", got)
	}
}
