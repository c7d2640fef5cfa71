package tui

import (
	"strings"
	"testing"
)

func TestSectionTitle(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"locations", "Locations"},
		{"item_pool", "Item Pool"},
		{"gossip_stones", "Gossip Stones"},
		{":woth_locations", "Woth Locations"},
		{":playthrough", "Playthrough"},
	}
	for _, tt := range tests {
		got := sectionTitle(tt.key)
		if got != tt.want {
			t.Errorf("sectionTitle(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFlattenMapSortsKeys(t *testing.T) {
	lines := flattenValue(map[string]any{
		"Zora Fountain":         "Bow",
		"KF Kokiri Sword Chest": "Kokiri Sword",
	}, 0)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0].text, "KF Kokiri Sword Chest") {
		t.Errorf("lines[0] = %q", lines[0].text)
	}
	if !strings.HasPrefix(lines[1].text, "Zora Fountain") {
		t.Errorf("lines[1] = %q", lines[1].text)
	}
}

func TestFlattenMapWorldKeysSortNumerically(t *testing.T) {
	section := map[string]any{}
	for _, world := range []string{"World 10", "World 2", "World 1"} {
		section[world] = map[string]any{"Zora Fountain": "Bow"}
	}
	lines := flattenValue(section, 0)

	var headers []string
	for _, line := range lines {
		if line.header {
			headers = append(headers, line.text)
		}
	}
	want := []string{"World 1", "World 2", "World 10"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v", headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], want[i])
		}
	}
}

func TestFlattenNestedIndentation(t *testing.T) {
	lines := flattenValue(map[string]any{
		"World 1": map[string]any{"Kokiri Sword": 1},
	}, 0)
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %v", len(lines), lines)
	}
	if !lines[0].header || lines[0].indent != 0 {
		t.Errorf("header line = %+v", lines[0])
	}
	if lines[1].indent != 1 || lines[1].text != "Kokiri Sword: 1" {
		t.Errorf("entry line = %+v", lines[1])
	}
}

func TestBuildSectionsOrderAndDropsEmpty(t *testing.T) {
	sections := buildSections(map[string]any{
		":version":  "1.0.0",
		":seed":     int64(42),
		"locations": map[string]any{"Zora Fountain": "Bow"},
		"item_pool": map[string]any{"Bow": 1},
		"trials":    map[string]any{},
		"file_hash": []string{"Bow", "Bow", "Bow", "Bow", "Bow"},
	})

	var titles []string
	for _, sec := range sections {
		titles = append(titles, sec.title)
	}
	want := []string{"Item Pool", "Locations", "File Hash"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestVisibleLinesFilter(t *testing.T) {
	m := Model{
		sections: []section{{
			title: "Locations",
			lines: []docLine{
				{text: "World 1", key: "World 1", header: true},
				{text: "KF Kokiri Sword Chest: Kokiri Sword", key: "KF Kokiri Sword Chest", indent: 1},
				{text: "Zora Fountain: Bow", key: "Zora Fountain", indent: 1},
				{text: "World 2", key: "World 2", header: true},
				{text: "Zora Fountain: Rupees (5)", key: "Zora Fountain", indent: 1},
			},
		}},
		filterText: "zora",
	}
	visible := m.visibleLines()
	var texts []string
	for _, line := range visible {
		texts = append(texts, line.text)
	}
	want := []string{"World 1", "Zora Fountain: Bow", "World 2", "Zora Fountain: Rupees (5)"}
	if len(texts) != len(want) {
		t.Fatalf("visible = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("visible[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestVisibleLinesNoFilterReturnsAll(t *testing.T) {
	m := Model{
		sections: []section{{
			title: "Item Pool",
			lines: []docLine{{text: "Bow: 1", key: "Bow"}},
		}},
	}
	if got := len(m.visibleLines()); got != 1 {
		t.Fatalf("got %d lines", got)
	}
}

func TestVisibleLinesHeaderWithoutMatchesDropped(t *testing.T) {
	m := Model{
		sections: []section{{
			title: "Locations",
			lines: []docLine{
				{text: "World 1", key: "World 1", header: true},
				{text: "Zora Fountain: Bow", key: "Zora Fountain", indent: 1},
			},
		}},
		filterText: "no such entry",
	}
	if visible := m.visibleLines(); len(visible) != 0 {
		t.Fatalf("visible = %v, want none", visible)
	}
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"1", true},
		{"42", true},
		{"", false},
		{"Bow", false},
		{"0x0401", false},
	}
	for _, tt := range tests {
		if got := isNumber(tt.s); got != tt.want {
			t.Errorf("isNumber(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("sword")
	h.Push("bow")
	h.Push("rupee")

	prev, ok := h.Prev()
	if !ok || prev != "rupee" {
		t.Errorf("expected 'rupee', got %q (ok=%v)", prev, ok)
	}
	prev, ok = h.Prev()
	if !ok || prev != "bow" {
		t.Errorf("expected 'bow', got %q (ok=%v)", prev, ok)
	}
	prev, ok = h.Prev()
	if !ok || prev != "sword" {
		t.Errorf("expected 'sword', got %q (ok=%v)", prev, ok)
	}

	// At oldest, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "sword" {
		t.Errorf("expected 'sword' again, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("sword")
	h.Push("bow")

	h.Prev() // bow
	h.Prev() // sword

	next, ok := h.Next()
	if !ok || next != "bow" {
		t.Errorf("expected 'bow', got %q (ok=%v)", next, ok)
	}

	// Past the newest entry: back to fresh input.
	if next, ok := h.Next(); ok {
		t.Errorf("expected fresh input, got %q", next)
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("Prev on empty history must report not ok")
	}
	if _, ok := h.Next(); ok {
		t.Error("Next on empty history must report not ok")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(3)
	h.Push("a")
	h.Push("b")
	h.Push("c")
	h.Push("d")

	if len(h.entries) != 3 {
		t.Fatalf("len = %d, want 3", len(h.entries))
	}
	if h.entries[0] != "b" {
		t.Errorf("oldest = %q, want b", h.entries[0])
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("sword")
	h.Push("sword")
	if len(h.entries) != 1 {
		t.Fatalf("len = %d, want 1", len(h.entries))
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("sword")
	h.Prev()
	h.ResetCursor()

	prev, ok := h.Prev()
	if !ok || prev != "sword" {
		t.Errorf("expected 'sword' after reset, got %q (ok=%v)", prev, ok)
	}
}
