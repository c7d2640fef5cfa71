package engine

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nathoo/plando/engine/record"
	"github.com/nathoo/plando/engine/state"
)

func TestLoadDocumentJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.json")
	body := `{"locations": {"Zora Fountain": "Kokiri Sword"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument error: %v", err)
	}
	locs, ok := doc["locations"].(map[string]any)
	if !ok || locs["Zora Fountain"] != "Kokiri Sword" {
		t.Errorf("decoded document = %#v", doc)
	}
}

func TestLoadDocumentYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.yaml")
	body := "locations:\n  Zora Fountain: Kokiri Sword\nitem_pool:\n  Bow: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument error: %v", err)
	}
	pool, ok := doc["item_pool"].(map[string]any)
	if !ok || pool["Bow"] != 2 {
		t.Errorf("decoded document = %#v", doc)
	}
}

func TestLoadDocumentUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadDocument(path)
	var ife *InvalidFileError
	if !errors.As(err, &ife) {
		t.Fatalf("error = %v, want InvalidFileError", err)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.json")
	body := `{"locations": {"Zora Fountain": "Kokiri Sword"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := FromFile(testSettings(), testTables(), state.RequirementSearch(), path)
	if err != nil {
		t.Fatalf("FromFile error: %v", err)
	}
	if got := d.WorldDists[0].Locations["Zora Fountain"].Item.Name; got != "Kokiri Sword" {
		t.Errorf("record = %q", got)
	}
}

func TestToDocumentStripsOutputSections(t *testing.T) {
	d, worlds := newTestDist(t, testSettings(), map[string]any{
		"locations": map[string]any{"Zora Fountain": "Kokiri Sword"},
	})
	locPools, itemPools := state.BasePools(worlds)
	if err := d.Fill(worlds, locPools, itemPools); err != nil {
		t.Fatalf("Fill error: %v", err)
	}
	d.Playthrough = map[string]map[string]*record.LocationRecord{
		"1": {"Zora Fountain": {Item: &record.ItemRef{Name: "Kokiri Sword"}}},
	}

	doc := d.ToDocument(false, true)
	var walk func(v any)
	walk = func(v any) {
		m, ok := v.(map[string]any)
		if !ok {
			return
		}
		for key, value := range m {
			if len(key) > 0 && key[0] == ':' {
				t.Errorf("output-only key %q survived", key)
			}
			walk(value)
		}
	}
	walk(doc)
}

func TestToDocumentKeepsOutputSections(t *testing.T) {
	d, _ := newTestDist(t, testSettings(), nil)
	doc := d.ToDocument(true, true)
	if _, ok := doc[":version"]; !ok {
		t.Error("missing :version")
	}
	if _, ok := doc[":seed"]; !ok {
		t.Error("missing :seed")
	}
}

func TestSaveDocumentRoundTrip(t *testing.T) {
	for _, ext := range []string{"json", "yaml"} {
		t.Run(ext, func(t *testing.T) {
			d, _ := newTestDist(t, testSettings(), map[string]any{
				"locations": map[string]any{"Zora Fountain": "Kokiri Sword"},
				"item_pool": map[string]any{"Bow": 2},
			})
			path := filepath.Join(t.TempDir(), "out."+ext)
			if err := d.SaveDocument(path, false, true); err != nil {
				t.Fatalf("SaveDocument error: %v", err)
			}

			doc, err := LoadDocument(path)
			if err != nil {
				t.Fatalf("LoadDocument error: %v", err)
			}
			locs, ok := doc["locations"].(map[string]any)
			if !ok || locs["Zora Fountain"] != "Kokiri Sword" {
				t.Errorf("round-tripped locations = %#v", doc["locations"])
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(data) == 0 || data[len(data)-1] != '\n' {
				t.Error("saved document must end with a newline")
			}
		})
	}
}

func TestSaveDocumentJSONIsValid(t *testing.T) {
	d, _ := newTestDist(t, testSettings(), nil)
	path := filepath.Join(t.TempDir(), "out.json")
	if err := d.SaveDocument(path, true, true); err != nil {
		t.Fatalf("SaveDocument error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Errorf("saved JSON does not parse: %v", err)
	}
}
