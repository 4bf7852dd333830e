package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/theme"
)

func (m AppModel) updateLobby(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(km, m.keys.Battle):
		return m.startBattle()
	case key.Matches(km, m.keys.History):
		m.state = stateHistory
		return m, nil
	}
	return m, nil
}

func (m AppModel) viewLobby() string {
	p := m.deps.Session.Profile()
	if p == nil {
		return ""
	}
	info := progression.LevelForXP(p.XP)
	w := min(m.width-2, 72)

	var card strings.Builder
	name := p.Username
	if m.deps.Catalog != nil {
		if av, ok := m.deps.Catalog.Avatar(p.AvatarID); ok && av.Icon != "" {
			name = av.Icon + " " + name
		}
	}
	card.WriteString(cardTitleStyle.Render(name))
	if p.TeamName != "" {
		card.WriteString(dimStyle.Render("  [" + p.TeamName + "]"))
	}
	card.WriteString("\n")
	card.WriteString(badgeStyle.Render(fmt.Sprintf("Lv %d", info.Level)) + " " + valueStyle.Render(info.Name) + "\n")
	bar := m.xpBar
	bar.Width = max(w-24, 10)
	card.WriteString(bar.ViewAs(info.Progress) + dimStyle.Render(fmt.Sprintf("  %d / %d XP", p.XP, info.XPForNextLevel)) + "\n\n")

	stat := func(label, value string) string {
		return labelStyle.Render(label) + " " + valueStyle.Render(value)
	}
	card.WriteString(strings.Join([]string{
		stat("Battles", fmt.Sprint(p.TotalBattles)),
		stat("Wins", fmt.Sprint(p.TotalWins)),
		stat("Win rate", fmt.Sprintf("%.0f%%", p.WinRate()*100)),
	}, "   ") + "\n")
	card.WriteString(strings.Join([]string{
		stat("Best", theme.ScoreStyle(p.BestScore).Render(fmt.Sprintf("%.1f", p.BestScore))),
		stat("Streak", fmt.Sprint(p.CurrentStreak)),
		stat("Perfect", fmt.Sprint(p.PerfectScores)),
	}, "   "))

	sections := []string{cardStyle.Width(w).Render(card.String())}

	if len(p.PowerUps) > 0 {
		var pu []string
		for _, def := range progression.PowerUps {
			if n := p.PowerUps[def.ID]; n > 0 {
				pu = append(pu, fmt.Sprintf("%s ×%d", def.Name, n))
			}
		}
		sections = append(sections, labelStyle.Render("Power-ups ")+valueStyle.Render(strings.Join(pu, ", ")))
	}

	if recent := progression.RecentAchievements(p, 3); len(recent) > 0 {
		var lines []string
		for _, a := range recent {
			lines = append(lines, a.Icon+" "+a.Name)
		}
		sections = append(sections, labelStyle.Render("Recent achievements ")+valueStyle.Render(strings.Join(lines, "  ")))
	}

	sections = append(sections, dimStyle.Render("Tip: "+m.tip))
	if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AppModel) viewHistory() string {
	records := m.deps.Engine.History.Battles()
	if len(records) == 0 {
		return dimStyle.Render("No battles yet. Press esc and start one.")
	}
	lines := []string{cardTitleStyle.Render("Recent battles"), ""}
	for i, r := range records {
		if i >= max(m.height-6, 5) {
			break
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s",
			dimStyle.Render(r.Date.Local().Format("Jan 02 15:04")),
			theme.ScoreStyle(r.Score).Render(fmt.Sprintf("%4.1f", r.Score)),
			goodStyle.Render(fmt.Sprintf("+%d XP", r.XPEarned)),
			valueStyle.Render(clip(r.ScenarioTitle, max(m.width-34, 10))),
		))
	}
	return strings.Join(lines, "\n")
}

func (m AppModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && (key.Matches(km, m.keys.Back) || key.Matches(km, m.keys.Quit)) {
		m.state = stateLobby
	}
	return m, nil
}
