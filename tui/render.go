package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sectionTitle derives a display name from a document key.
// "item_pool" -> "Item Pool", ":woth_locations" -> "Woth Locations".
func sectionTitle(key string) string {
	key = strings.TrimPrefix(key, ":")
	words := strings.Split(key, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// docLine is one unstyled rendered line of a section, kept raw so the view
// can restyle and filter without re-walking the document.
type docLine struct {
	text   string
	key    string // the entry name this line belongs to, for filtering
	indent int
	header bool // a "World N" or nested-object header line
}

// flattenValue renders a document value into lines. Maps are sorted by key,
// "World N" keys numerically.
func flattenValue(value any, indent int) []docLine {
	switch v := value.(type) {
	case map[string]any:
		return flattenMap(v, indent)
	case []string:
		lines := make([]docLine, 0, len(v))
		for _, entry := range v {
			lines = append(lines, docLine{text: entry, key: entry, indent: indent})
		}
		return lines
	case []any:
		lines := make([]docLine, 0, len(v))
		for _, entry := range v {
			lines = append(lines, flattenValue(entry, indent)...)
		}
		return lines
	case nil:
		return nil
	default:
		text := fmt.Sprintf("%v", v)
		return []docLine{{text: text, key: text, indent: indent}}
	}
}

func flattenMap(section map[string]any, indent int) []docLine {
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		var a, b int
		aWorld, _ := fmt.Sscanf(keys[i], "World %d", &a)
		bWorld, _ := fmt.Sscanf(keys[j], "World %d", &b)
		if aWorld == 1 && bWorld == 1 {
			return a < b
		}
		return keys[i] < keys[j]
	})

	var lines []docLine
	for _, key := range keys {
		switch entry := section[key].(type) {
		case map[string]any:
			lines = append(lines, docLine{text: key, key: key, indent: indent, header: true})
			lines = append(lines, flattenValue(entry, indent+1)...)
		case []any, []string:
			lines = append(lines, docLine{text: key, key: key, indent: indent, header: true})
			lines = append(lines, flattenValue(entry, indent+1)...)
		default:
			lines = append(lines, docLine{
				text:   fmt.Sprintf("%s: %v", key, entry),
				key:    key,
				indent: indent,
			})
		}
	}
	return lines
}

// renderLine styles one document line at the current indentation.
func renderLine(line docLine) string {
	pad := strings.Repeat("  ", line.indent)
	if line.header {
		if strings.HasPrefix(line.text, "World ") {
			return pad + styleWorldHeader.Render(line.text)
		}
		return pad + styleKey.Render(line.text)
	}
	key, value, found := strings.Cut(line.text, ": ")
	if !found {
		return pad + styleValue.Render(line.text)
	}
	if isNumber(value) {
		return pad + styleKey.Render(key+": ") + styleCount.Render(value)
	}
	return pad + styleKey.Render(key+": ") + styleValue.Render(value)
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// renderStatusBar produces a full-width inverted status line showing the
// document identity, the active section, and any filter in effect.
func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s v%s | seed %d", m.title, m.version, m.seed)
	if m.filterText != "" {
		left += fmt.Sprintf(" | filter: %s", m.filterText)
	}
	right := fmt.Sprintf("section %d/%d ", m.active+1, len(m.sections))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderTabs lays out the section titles, highlighting the active one.
func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.sections))
	for i, sec := range m.sections {
		if i == m.active {
			tabs = append(tabs, styleTabActive.Render(sec.title))
		} else {
			tabs = append(tabs, styleTabInactive.Render(sec.title))
		}
	}
	return strings.Join(tabs, styleTabInactive.Render(" | "))
}
