package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/profile"
)

func (m AppModel) updateOnboarding(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, isKey := msg.(tea.KeyMsg)
	if isKey && km.Type == tea.KeyEnter {
		if m.state == stateOnboardName {
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				m.notice = "Pick a name to enter the arena."
				return m, nil
			}
			m.pendingName = name
			m.notice = ""
			m.state = stateOnboardTeam
			m.teamInput = newStyledTextInput("team (optional)", profile.MaxTeamNameLength)
			focus := m.teamInput.Focus()
			return m, focus
		}
		return m.finishOnboarding()
	}
	if isKey && key.Matches(km, m.keys.Back) && m.state == stateOnboardTeam {
		m.state = stateOnboardName
		focus := m.nameInput.Focus()
		return m, focus
	}

	var cmd tea.Cmd
	if m.state == stateOnboardName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.teamInput, cmd = m.teamInput.Update(msg)
	}
	return m, cmd
}

func (m AppModel) finishOnboarding() (tea.Model, tea.Cmd) {
	avatarID, avatarURL := "", ""
	if cat := m.deps.Catalog; cat != nil && len(cat.Avatars) > 0 {
		avatarID, avatarURL = cat.Avatars[0].ID, cat.Avatars[0].URL
	}
	p, err := profile.New(m.pendingName, avatarID, avatarURL, m.teamInput.Value(), m.deps.Now())
	if err != nil {
		m.notice = err.Error()
		m.state = stateOnboardName
		focus := m.nameInput.Focus()
		return m, focus
	}
	if err := m.deps.Engine.Profiles.Save(p); err != nil {
		debug.LogKV("tui", "saving new profile failed", "error", err)
		m.notice = "Profile not saved: " + err.Error()
	} else {
		m.notice = "Welcome to the arena, " + p.Username + "!"
	}
	m.deps.Session.SetProfile(p)
	m.state = stateLobby
	return m, nil
}

func (m AppModel) viewOnboarding() string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Create your fighter"))
	b.WriteString("\n\n")
	if m.state == stateOnboardName {
		b.WriteString(labelStyle.Render("Username") + "\n")
		b.WriteString(m.nameInput.View())
	} else {
		b.WriteString(labelStyle.Render("Username") + " " + valueStyle.Render(m.pendingName) + "\n\n")
		b.WriteString(labelStyle.Render("Team") + "\n")
		b.WriteString(m.teamInput.View())
	}
	if m.notice != "" {
		b.WriteString("\n\n" + noticeStyle.Render(m.notice))
	}
	return focusedCardStyle.Width(min(m.width-2, 60)).Render(b.String())
}
