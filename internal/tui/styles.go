package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "26", Dark: "12"}
	colorIndex  = lipgloss.AdaptiveColor{Light: "28", Dark: "10"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "245", Dark: "240"}
	colorHit    = lipgloss.AdaptiveColor{Light: "130", Dark: "11"}
	colorFrame  = lipgloss.AdaptiveColor{Light: "250", Dark: "238"}

	styleFilterPrompt = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleFilterText   = lipgloss.NewStyle().Foreground(colorAccent)
	styleTitle        = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)

	styleCursor  = lipgloss.NewStyle().Foreground(colorHit).Bold(true)
	styleRank    = lipgloss.NewStyle().Foreground(colorMuted)
	styleIndex   = lipgloss.NewStyle().Foreground(colorIndex).Bold(true)
	styleKeyword = lipgloss.NewStyle().Foreground(colorHit)
	styleDetail  = lipgloss.NewStyle().Foreground(colorMuted)
	styleEmpty   = lipgloss.NewStyle().Foreground(colorMuted)

	styleListFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame)

	stylePreviewFrame = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent)

	styleStatus = lipgloss.NewStyle().Padding(0, 1)
)
