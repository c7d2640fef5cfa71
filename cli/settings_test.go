package cli

import (
	"strings"
	"testing"

	"github.com/nathoo/plando/types"
)

func TestParseSettingsNilKeepsBase(t *testing.T) {
	base := testSettings()
	s, err := ParseSettings(nil, base)
	if err != nil {
		t.Fatalf("ParseSettings error: %v", err)
	}
	if s.WorldCount != base.WorldCount || s.Seed != base.Seed {
		t.Fatalf("base settings not preserved: %+v", s)
	}
}

func TestParseSettingsOverrides(t *testing.T) {
	section := map[string]any{
		"world_count":       float64(3), // JSON decodes numbers as float64
		"seed":              float64(99),
		"triforce_hunt":     true,
		"shuffle_song_items": "song",
		"key_rings":         []any{"Deku Tree"},
		"starting_items":    map[string]any{"Bow": float64(2)},
	}
	s, err := ParseSettings(section, testSettings())
	if err != nil {
		t.Fatalf("ParseSettings error: %v", err)
	}
	if s.WorldCount != 3 || s.Seed != 99 || !s.TriforceHunt {
		t.Fatalf("scalar overrides not applied: %+v", s)
	}
	if s.ShuffleSongItems != "song" {
		t.Fatalf("ShuffleSongItems = %q", s.ShuffleSongItems)
	}
	if len(s.KeyRings) != 1 || s.KeyRings[0] != "Deku Tree" {
		t.Fatalf("KeyRings = %v", s.KeyRings)
	}
	if s.StartingItems["Bow"] != 2 {
		t.Fatalf("StartingItems = %v", s.StartingItems)
	}
}

func TestParseSettingsWorldStartingItems(t *testing.T) {
	section := map[string]any{
		"starting_items": map[string]any{
			"Kokiri Sword": float64(1),
			"World 2":      map[string]any{"Bow": float64(3)},
		},
	}
	s, err := ParseSettings(section, testSettings())
	if err != nil {
		t.Fatalf("ParseSettings error: %v", err)
	}
	if s.StartingItems["Kokiri Sword"] != 1 {
		t.Fatalf("StartingItems = %v", s.StartingItems)
	}
	if _, shared := s.StartingItems["World 2"]; shared {
		t.Fatal("world override leaked into the shared starting items")
	}
	if s.WorldStartingItems[2]["Bow"] != 3 {
		t.Fatalf("WorldStartingItems = %v", s.WorldStartingItems)
	}
}

func TestParseSettingsWorldStartingItemsMistyped(t *testing.T) {
	section := map[string]any{
		"starting_items": map[string]any{
			"World 2": "Bow",
		},
	}
	if _, err := ParseSettings(section, testSettings()); err == nil {
		t.Fatal("non-object world override must be rejected")
	}
}

func TestParseSettingsYAMLIntegers(t *testing.T) {
	s, err := ParseSettings(map[string]any{"starting_hearts": 5}, testSettings())
	if err != nil {
		t.Fatalf("ParseSettings error: %v", err)
	}
	if s.StartingHearts != 5 {
		t.Fatalf("StartingHearts = %d", s.StartingHearts)
	}
}

func TestParseSettingsUnknownKeysIgnored(t *testing.T) {
	s, err := ParseSettings(map[string]any{"hint_dist": "tournament"}, testSettings())
	if err != nil {
		t.Fatalf("unknown keys must be ignored: %v", err)
	}
	if s.WorldCount != 1 {
		t.Fatalf("WorldCount = %d", s.WorldCount)
	}
}

func TestParseSettingsTypeErrors(t *testing.T) {
	cases := map[string]map[string]any{
		"number":  {"world_count": "three"},
		"boolean": {"triforce_hunt": "yes"},
		"string":  {"bridge": 6},
		"list":    {"key_rings": "Deku Tree"},
		"entries": {"key_rings": []any{1}},
		"object":  {"starting_items": []any{"Bow"}},
	}
	for name, section := range cases {
		if _, err := ParseSettings(section, testSettings()); err == nil {
			t.Errorf("%s: mistyped setting must be rejected", name)
		}
	}
}

func TestParseSettingsRejectsNonObjectSection(t *testing.T) {
	_, err := ParseSettings("open", testSettings())
	if err == nil || !strings.Contains(err.Error(), "must be an object") {
		t.Fatalf("err = %v", err)
	}
}

func TestParseSettingsWorldCountLowerBound(t *testing.T) {
	if _, err := ParseSettings(map[string]any{"world_count": float64(0)}, testSettings()); err == nil {
		t.Fatal("world_count 0 must be rejected")
	}
}

func TestParseSettingsDoesNotMutateBase(t *testing.T) {
	base := &types.Settings{WorldCount: 1, Seed: 42, Bridge: "medallions"}
	if _, err := ParseSettings(map[string]any{"bridge": "open"}, base); err != nil {
		t.Fatalf("ParseSettings error: %v", err)
	}
	if base.Bridge != "medallions" {
		t.Fatalf("base mutated: %q", base.Bridge)
	}
}
