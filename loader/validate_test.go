package loader

import (
	"errors"
	"strings"
	"testing"
)

// loadErr loads a single-file game and requires a ValidationError.
func loadErr(t *testing.T, body string) *ValidationError {
	t.Helper()
	_, err := loadFrom(t, body)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	return ve
}

func hasError(ve *ValidationError, substr string) bool {
	for _, e := range ve.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidate_MissingTitle(t *testing.T) {
	ve := loadErr(t, `Game { version = "1.0.0" }`)
	if !hasError(ve, "title is required") {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_MissingVersion(t *testing.T) {
	ve := loadErr(t, `Game { title = "NoVersion" }`)
	if !hasError(ve, "version is required") {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_UndefinedVanillaItem(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
Location "Chest" { type = "Chest", vanilla = "Missing Item" }
`)
	if !hasError(ve, `vanilla item "Missing Item"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_UndefinedDungeonRef(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
Item "Emerald" { type = "DungeonReward" }
Location "Boss Room" { type = "Boss", vanilla = "Emerald", dungeon = "Nowhere" }
`)
	if !hasError(ve, `undefined dungeon "Nowhere"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_GroupMemberUndefined(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
ItemGroup "MajorItem" { "Ghost Item" }
LocationGroup "Boss" { "Ghost Location" }
`)
	if !hasError(ve, `member "Ghost Item"`) || !hasError(ve, `member "Ghost Location"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_EntranceChecks(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
Entrance "A -> B" { type = "Wormhole", from = "A", to = "B" }
Entrance "Broken" { type = "Dungeon" }
`)
	if !hasError(ve, `unknown type "Wormhole"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
	if !hasError(ve, "must declare both from and to") {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_DungeonBossKeyUndefined(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
Dungeon "Deku Tree" { boss_key = "Missing Key" }
`)
	if !hasError(ve, `boss key "Missing Key"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_GossipStoneIDCollision(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
GossipStone("First", 0x0401)
GossipStone("Second", 0x0401)
`)
	if !hasError(ve, "share text id 0x0401") {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_AmmoChecks(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
Item "Bow" {}
Ammo("Bow", "Missing Arrows", {})
Ammo("Missing Sling", "Bow", { 30 })
`)
	if !hasError(ve, `ammo item "Missing Arrows"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
	if !hasError(ve, `undefined item "Missing Sling"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
	if !hasError(ve, "has no counts") {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_TradeAndWinConditionRefs(t *testing.T) {
	ve := loadErr(t, `
Game { title = "Bad", version = "1.0.0" }
AdultTrade { "Missing Egg" }
ChildTrade { "Missing Chicken" }
WinCondition { "Missing Triforce" }
`)
	if !hasError(ve, `adult trade sequence item "Missing Egg"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
	if !hasError(ve, `child trade sequence item "Missing Chicken"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
	if !hasError(ve, `win condition item "Missing Triforce"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate_WarningsDoNotFail(t *testing.T) {
	// A junk weight outside the Junk group and a priced non-shop location
	// warn but load fine.
	tables, err := loadFrom(t, `
Game { title = "Warned", version = "1.0.0" }
Item "Odd Filler" { junk_weight = 3 }
Location "Odd Chest" { type = "Chest", vanilla = "Odd Filler", price = 10 }
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tables.Title != "Warned" {
		t.Errorf("Title = %q", tables.Title)
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"first", "second"}}
	msg := ve.Error()
	if !strings.Contains(msg, "2 error(s)") || !strings.Contains(msg, "first") {
		t.Errorf("message = %q", msg)
	}
}
