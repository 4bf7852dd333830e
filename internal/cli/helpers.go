package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agusx1211/promptarena/internal/progression"
)

// printHeader prints a formatted section header.
func printHeader(title string) {
	fmt.Printf("\n%s%s%s\n", styleBoldCyan, title, colorReset)
	fmt.Println(colorDim + strings.Repeat("-", len(title)+2) + colorReset)
}

// printField prints a labeled field.
func printField(label, value string) {
	fmt.Printf("  %s%-16s%s %s\n", colorBold, label+":", colorReset, value)
}

// printFieldColored prints a labeled field with colored value.
func printFieldColored(label, value, color string) {
	fmt.Printf("  %s%-16s%s %s%s%s\n", colorBold, label+":", colorReset, color, value, colorReset)
}

// printList prints items as an indented bullet list under label.
func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n  %s%s%s\n", colorBold, label, colorReset)
	for _, item := range items {
		fmt.Printf("    - %s\n", item)
	}
}

// scoreColor returns an ANSI color for a 0-10 round score.
func scoreColor(score float64) string {
	switch {
	case score >= 9:
		return styleBoldGreen
	case progression.IsWin(score):
		return colorGreen
	case score >= 5:
		return colorYellow
	default:
		return colorRed
	}
}

// formatScore renders a score with one decimal, e.g. "8.5/10".
func formatScore(score float64) string {
	return fmt.Sprintf("%.1f/10", score)
}

// progressBar renders progress (0..1) as a fixed-width bar.
func progressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))
	return colorGreen + strings.Repeat("#", filled) + colorDim + strings.Repeat(".", width-filled) + colorReset
}

// printTable prints a simple table with headers and rows.
func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println(colorDim + "  (none)" + colorReset)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := visibleLen(cell); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	headerLine := "  "
	for i, h := range headers {
		headerLine += fmt.Sprintf("%s%-*s%s", colorBold, widths[i]+2, h, colorReset)
	}
	fmt.Println(headerLine)

	sepLine := "  "
	for _, w := range widths {
		sepLine += colorDim + strings.Repeat("-", w+2) + colorReset
	}
	fmt.Println(sepLine)

	for _, row := range rows {
		rowLine := "  "
		for i, cell := range row {
			if i < len(widths) {
				padding := max(widths[i]-visibleLen(cell), 0)
				rowLine += cell + strings.Repeat(" ", padding+2)
			}
		}
		fmt.Println(rowLine)
	}
}

// visibleLen counts the runes of s that a terminal would display.
func visibleLen(s string) int {
	return len([]rune(stripAnsi(s)))
}

// stripAnsi removes ANSI escape codes from a string (for width calculation).
func stripAnsi(s string) string {
	var out strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// truncate shortens s to maxLen runes, adding "..." if needed.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// firstLine returns the first line of a multi-line string.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// resolveTextFlag returns the content of filePath when set ("-" reads
// stdin), otherwise value.
func resolveTextFlag(value, filePath string) (string, error) {
	filePath = strings.TrimSpace(filePath)
	switch filePath {
	case "":
		return value, nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filePath, err)
		}
		return string(data), nil
	}
}
