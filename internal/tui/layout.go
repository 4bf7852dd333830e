package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// fitLines pads or truncates to exactly w cols and h lines.
func fitLines(lines []string, w, h int) string {
	emptyLine := strings.Repeat(" ", w)
	result := make([]string, h)

	for i := 0; i < h; i++ {
		if i >= len(lines) {
			result[i] = emptyLine
			continue
		}
		line := ansi.Truncate(lines[i], w, "")
		if pad := w - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		result[i] = line
	}
	return strings.Join(result, "\n")
}

// splitRenderableLines splits rendered output on any newline convention.
func splitRenderableLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// clip shortens plain text to max display cells with an ellipsis.
func clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return ansi.Truncate(s, max, "…")
}

// wrap hard-wraps plain text to width.
func wrap(s string, width int) string {
	if width < 10 {
		width = 10
	}
	return ansi.Wrap(s, width, " ")
}

func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
