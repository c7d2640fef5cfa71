package tui

import "github.com/charmbracelet/lipgloss"

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleTabActive = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleTabInactive = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))

	styleKey = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleCount = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleWorldHeader = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	styleFilterPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleEmpty = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
