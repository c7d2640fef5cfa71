package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/plando/engine"
)

// sectionOrder fixes the display order of the known document sections;
// anything else lands after these, alphabetically.
var sectionOrder = []string{
	"dungeons",
	"empty_dungeons",
	"trials",
	"songs",
	"item_pool",
	"entrances",
	"locations",
	"gossip_stones",
	":skipped_locations",
	":woth_locations",
	":goal_locations",
	":barren_regions",
	":playthrough",
	":entrance_playthrough",
}

// section is one browsable document section.
type section struct {
	title string
	lines []docLine
}

// Model is the Bubble Tea model for the document browser.
type Model struct {
	sections []section
	active   int

	viewport viewport.Model
	filter   textinput.Model
	history  *History

	title      string
	version    string
	seed       int64
	filterText string
	filtering  bool

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a browser over a resolved distribution.
func New(d *engine.Distribution) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 64
	ti.PromptStyle = styleFilterPrompt

	return Model{
		sections: buildSections(d.ToDocument(true, true)),
		filter:   ti,
		history:  NewHistory(50),
		title:    d.Tables.Title,
		version:  d.Tables.Version,
		seed:     d.Settings.Seed,
	}
}

// Run starts the Bubble Tea program.
func Run(d *engine.Distribution) error {
	p := tea.NewProgram(New(d), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// buildSections flattens the document into ordered browsable sections.
// Empty sections are dropped.
func buildSections(doc map[string]any) []section {
	seen := map[string]bool{}
	var sections []section
	add := func(key string) {
		value, ok := doc[key]
		if !ok {
			return
		}
		seen[key] = true
		lines := flattenValue(value, 0)
		if len(lines) == 0 {
			return
		}
		sections = append(sections, section{title: sectionTitle(key), lines: lines})
	}

	for _, key := range sectionOrder {
		add(key)
	}
	var rest []string
	for key := range doc {
		if !seen[key] && key != ":version" && key != ":seed" {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		add(key)
	}
	return sections
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 3 // status bar, tab row, filter line
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFiltering(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "tab", "right", "l":
			if len(m.sections) > 0 {
				m.active = (m.active + 1) % len(m.sections)
				m.refreshViewport()
			}
			return m, nil

		case "shift+tab", "left", "h":
			if len(m.sections) > 0 {
				m.active = (m.active + len(m.sections) - 1) % len(m.sections)
				m.refreshViewport()
			}
			return m, nil

		case "/":
			m.filtering = true
			m.filter.SetValue("")
			m.filter.Focus()
			return m, textinput.Blink

		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// updateFiltering handles keys while the filter input is focused.
func (m Model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.filtering = false
		m.filterText = ""
		m.filter.Blur()
		m.history.ResetCursor()
		m.refreshViewport()
		return m, nil

	case "enter":
		m.filterText = strings.TrimSpace(m.filter.Value())
		m.filtering = false
		m.filter.Blur()
		if m.filterText != "" {
			m.history.Push(m.filterText)
		}
		m.history.ResetCursor()
		m.refreshViewport()
		return m, nil

	case "up":
		if prev, ok := m.history.Prev(); ok {
			m.filter.SetValue(prev)
			m.filter.CursorEnd()
		}
		return m, nil

	case "down":
		if next, ok := m.history.Next(); ok {
			m.filter.SetValue(next)
			m.filter.CursorEnd()
		} else {
			m.filter.SetValue("")
			m.history.ResetCursor()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// visibleLines applies the filter to the active section. Headers survive as
// long as any of their entries match.
func (m Model) visibleLines() []docLine {
	if len(m.sections) == 0 {
		return nil
	}
	lines := m.sections[m.active].lines
	if m.filterText == "" {
		return lines
	}
	needle := strings.ToLower(m.filterText)

	var visible []docLine
	var pendingHeaders []docLine
	for _, line := range lines {
		if line.header {
			for len(pendingHeaders) > 0 && pendingHeaders[len(pendingHeaders)-1].indent >= line.indent {
				pendingHeaders = pendingHeaders[:len(pendingHeaders)-1]
			}
			pendingHeaders = append(pendingHeaders, line)
			continue
		}
		if strings.Contains(strings.ToLower(line.text), needle) {
			visible = append(visible, pendingHeaders...)
			pendingHeaders = nil
			visible = append(visible, line)
		}
	}
	return visible
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	lines := m.visibleLines()
	if len(lines) == 0 {
		m.viewport.SetContent(styleEmpty.Render("(empty)"))
		m.viewport.GotoTop()
		return
	}
	styled := make([]string, 0, len(lines))
	for _, line := range lines {
		styled = append(styled, renderLine(line))
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoTop()
}

// View renders the full layout: tabs, viewport, status bar, filter line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	bottom := styleTabInactive.Render("tab/←→ sections · ↑↓/pgup/pgdn scroll · / filter · q quit")
	if m.filtering {
		bottom = m.filter.View()
	}
	return m.renderTabs() + "\n" + m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + bottom
}

// viewportKeyMap returns a viewport keymap with plain up/down scrolling a
// single line.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
	}
}
