package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/agusx1211/promptarena/internal/theme"
)

func newStyledTextInput(placeholder string, charLimit int) textinput.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = placeholder
	input.PromptStyle = lipgloss.NewStyle().Foreground(theme.ColorMauve)
	input.TextStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorText)
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(theme.ColorOverlay0)
	input.Cursor.Style = lipgloss.NewStyle().Foreground(theme.ColorMauve)
	if charLimit > 0 {
		input.CharLimit = charLimit
	}
	return input
}

func newStyledTextarea(charLimit int) textarea.Model {
	editor := textarea.New()
	editor.Prompt = ""
	editor.ShowLineNumbers = false
	editor.Placeholder = "Write your prompt..."
	editor.CharLimit = max(charLimit, 0)
	return editor
}
