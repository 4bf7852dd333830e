package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/theme"
)

func (m AppModel) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit
	case km.String() == "b":
		return m.startBattle()
	case key.Matches(km, m.keys.Continue), key.Matches(km, m.keys.Back):
		m.state = stateLobby
		m.notice = ""
	}
	return m, nil
}

func (m AppModel) viewResults() string {
	o := m.outcome
	if o == nil {
		return ""
	}
	w := max(m.width-2, 20)
	var b strings.Builder

	verdict := warnStyle.Render("Keep practicing")
	if o.Win {
		verdict = goodStyle.Render("Victory!")
	}
	b.WriteString(theme.ScoreStyle(o.Score).Render(fmt.Sprintf("%.1f / 10", o.Score)) + "  " + verdict)
	b.WriteString("  " + goodStyle.Render(fmt.Sprintf("+%d XP", o.XPEarned)))
	if o.LeveledUp() {
		info := progression.LevelForXP(m.deps.Session.Profile().XP)
		b.WriteString("  " + badgeStyle.Render(fmt.Sprintf("LEVEL UP → %d %s", o.NewLevel, info.Name)))
	}
	b.WriteString("\n")
	if o.Evaluation.Source == evaluator.SourceHeuristic {
		b.WriteString(dimStyle.Render("Scored offline by the local heuristic.") + "\n")
	}
	b.WriteString("\n")

	sc := o.Evaluation.Scores
	row := func(label string, v, limit float64) string {
		return fmt.Sprintf("%s %s", labelStyle.Width(20).Render(label), valueStyle.Render(fmt.Sprintf("%.1f / %.0f", v, limit)))
	}
	b.WriteString(row("AI evaluation", sc.AIEvaluation, evaluator.MaxAIEvaluation) + "\n")
	b.WriteString(row("Format quality", sc.FormatQuality, evaluator.MaxFormatQuality) + "\n")
	b.WriteString(row("Efficiency", sc.Efficiency, evaluator.MaxEfficiency) + "\n")
	b.WriteString(row("Technical accuracy", sc.TechnicalAccuracy, evaluator.MaxTechnicalAccuracy) + "\n\n")

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(cardTitleStyle.Render(title) + "\n")
		for _, it := range items {
			b.WriteString("  • " + clip(it, w-4) + "\n")
		}
	}
	list("Strengths", o.Evaluation.Feedback.Strengths)
	list("Improvements", o.Evaluation.Feedback.Improvements)
	list("Tips", o.Evaluation.Feedback.Tips)

	if out := strings.TrimSpace(o.Execution.Output); out != "" {
		b.WriteString("\n" + cardTitleStyle.Render("Model output") + "\n")
		b.WriteString(dimStyle.Render(clip(out, w*3)) + "\n")
	}
	for _, a := range o.NewAchievements {
		b.WriteString(goodStyle.Render("Achievement unlocked: "+a.Icon+" "+a.Name) + "\n")
	}
	if len(o.GrantedPowerUps) > 0 {
		b.WriteString(goodStyle.Render("Power-ups earned: "+strings.Join(o.GrantedPowerUps, ", ")) + "\n")
	}
	if o.Rank > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Local leaderboard rank: #%d", o.Rank)) + "\n")
	}
	for _, warn := range o.Warnings {
		b.WriteString(errorStyle.Render(warn) + "\n")
	}
	return b.String()
}
