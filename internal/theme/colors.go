// Package theme holds the shared terminal palette and the score and timer
// styles used by the TUI and the CLI.
package theme

import "github.com/charmbracelet/lipgloss"

// Color palette - dark theme inspired by Catppuccin Mocha
var (
	ColorBase     = lipgloss.Color("#1e1e2e")
	ColorSurface0 = lipgloss.Color("#313244")
	ColorSurface1 = lipgloss.Color("#45475a")
	ColorSurface2 = lipgloss.Color("#585b70")
	ColorOverlay0 = lipgloss.Color("#6c7086")
	ColorText     = lipgloss.Color("#cdd6f4")
	ColorSubtext0 = lipgloss.Color("#a6adc8")
	ColorSubtext1 = lipgloss.Color("#bac2de")

	ColorRed      = lipgloss.Color("#f38ba8")
	ColorGreen    = lipgloss.Color("#a6e3a1")
	ColorYellow   = lipgloss.Color("#f9e2af")
	ColorBlue     = lipgloss.Color("#89b4fa")
	ColorMauve    = lipgloss.Color("#cba6f7")
	ColorTeal     = lipgloss.Color("#94e2d5")
	ColorPeach    = lipgloss.Color("#fab387")
	ColorFlamingo = lipgloss.Color("#f2cdcd")
	ColorLavender = lipgloss.Color("#b4befe")
)

// Timer styles by urgency.
var (
	TimerNormal  = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	TimerWarning = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	TimerDanger  = lipgloss.NewStyle().Foreground(ColorRed).Bold(true).Blink(true)
)

// TimerStyle picks the style for an urgency name ("normal", "warning",
// "danger").
func TimerStyle(urgency string) lipgloss.Style {
	switch urgency {
	case "danger":
		return TimerDanger
	case "warning":
		return TimerWarning
	default:
		return TimerNormal
	}
}

// ScoreColor grades a 0-10 score.
func ScoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 9:
		return ColorGreen
	case score >= 7:
		return ColorTeal
	case score >= 5:
		return ColorYellow
	default:
		return ColorRed
	}
}

// ScoreStyle renders a score in its grade color.
func ScoreStyle(score float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ScoreColor(score)).Bold(true)
}
