package tui

import "github.com/charmbracelet/lipgloss"

// Palette helpers. AdaptiveColor keeps the UI readable on both light and
// dark terminal backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    = ac("240", "243")
	colorAccent   = ac("25", "39")
	colorDanger   = ac("124", "203")
	colorSelected = ac("#e9e9e9", "#262626")

	styleTitle = lipgloss.NewStyle().Bold(true)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleTag   = lipgloss.NewStyle().Foreground(colorAccent)
	styleError = lipgloss.NewStyle().Foreground(colorDanger)

	styleSelectedRow = lipgloss.NewStyle().Background(colorSelected)
	styleHeader      = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleHelp        = lipgloss.NewStyle().Foreground(colorMuted)
)
