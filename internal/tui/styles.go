package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agusx1211/promptarena/internal/theme"
)

// Header and status bar
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBase).
			Background(theme.ColorBlue).
			Padding(0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(theme.ColorSubtext0).
			Background(theme.ColorSurface0).
			Padding(0, 1)

	statusKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorLavender).
			Background(theme.ColorSurface0)

	statusValueStyle = lipgloss.NewStyle().
				Foreground(theme.ColorSubtext0).
				Background(theme.ColorSurface0)
)

// Cards
var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorSurface2).
			Padding(0, 1)

	focusedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(theme.ColorMauve).
				Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorLavender)
)

// Text
var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorMauve)

	valueStyle = lipgloss.NewStyle().Foreground(theme.ColorText)

	dimStyle = lipgloss.NewStyle().Foreground(theme.ColorOverlay0)

	goodStyle = lipgloss.NewStyle().Foreground(theme.ColorGreen)

	warnStyle = lipgloss.NewStyle().Foreground(theme.ColorPeach)

	errorStyle = lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(theme.ColorBase).
			Background(theme.ColorMauve)
)
