package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agusx1211/promptarena/internal/battle"
	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/prompt"
	"github.com/agusx1211/promptarena/internal/theme"
)

func (m AppModel) startBattle() (tea.Model, tea.Cmd) {
	if m.deps.Session.Profile() == nil {
		m.state = stateOnboardName
		focus := m.nameInput.Focus()
		return m, focus
	}
	ch, unsub := m.deps.Session.Events.Subscribe(64)
	r, err := m.deps.Engine.StartRound(m.deps.Session, "")
	if err != nil {
		unsub()
		m.notice = err.Error()
		return m, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.round = r
	m.phase = r.Phase()
	m.remaining = r.Remaining()
	m.urgency = battle.UrgencyNormal
	m.events = ch
	m.unsubscribe = unsub
	m.cancelRound = cancel
	m.hint, m.feedback, m.notice = "", "", ""
	m.outcome = nil
	m.editor = newStyledTextarea(m.deps.Engine.Limits.Max)
	m.state = stateBattle
	return m, tea.Batch(waitEvent(ch), runRound(ctx, m.deps.Engine, m.deps.Session))
}

func (m AppModel) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok || m.state != stateBattle {
		return m, nil
	}
	ev := msg.ev
	switch ev.Kind {
	case battle.EventTick:
		m.remaining = ev.Remaining
		m.urgency = ev.Urgency
	case battle.EventPhase:
		prev := m.phase
		m.phase = ev.Phase
		m.remaining = ev.Remaining
		if prev != battle.PhaseCrafting && ev.Phase == battle.PhaseCrafting {
			focus := m.editor.Focus()
			return m, tea.Batch(waitEvent(m.events), focus)
		}
		if ev.Phase == battle.PhaseEvaluation {
			m.editor.Blur()
			return m, tea.Batch(waitEvent(m.events), m.spinner.Tick)
		}
	}
	return m, waitEvent(m.events)
}

func (m AppModel) handleRoundDone(msg roundDoneMsg) (tea.Model, tea.Cmd) {
	m.stopRound()
	m.tip = catalog.Tip(m.deps.Rand)
	if msg.err != nil {
		m.state = stateLobby
		if errors.Is(msg.err, battle.ErrCancelled) {
			m.notice = "Round cancelled: " + m.round.CancelReason()
		} else {
			m.notice = msg.err.Error()
		}
		return m, nil
	}
	m.outcome = msg.out
	m.state = stateResults
	return m, nil
}

func (m AppModel) handlePowerUp(msg powerUpMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notice = msg.err.Error()
		return m, nil
	}
	eff := msg.eff
	switch eff.ID {
	case progression.PowerUpHint:
		m.hint = eff.Hint
	case progression.PowerUpPeerReview:
		m.feedback = eff.Feedback
	case progression.PowerUpTimeExtension:
		m.remaining = eff.Remaining
		m.notice = fmt.Sprintf("+%ds on the clock", eff.AddedSeconds)
	case progression.PowerUpDoubleSubmission:
		m.notice = "Double submission armed: your best of two prompts counts."
	}
	return m, nil
}

func (m AppModel) usePowerUp(id string) tea.Cmd {
	eng, sess := m.deps.Engine, m.deps.Session
	return func() tea.Msg {
		eff, err := eng.UsePowerUp(context.Background(), sess, id)
		return powerUpMsg{eff: eff, err: err}
	}
}

func (m AppModel) updateBattle(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sm, ok := msg.(spinner.TickMsg); ok {
		if m.phase != battle.PhaseEvaluation {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(sm)
		return m, cmd
	}

	km, isKey := msg.(tea.KeyMsg)
	if isKey && key.Matches(km, m.keys.Back) {
		m.round.Cancel("left the arena")
		return m, nil
	}

	switch m.phase {
	case battle.PhaseScenario:
		if isKey && key.Matches(km, m.keys.Continue) && m.round.SkipCountdown() {
			m.phase = battle.PhaseCrafting
			m.remaining = m.round.Remaining()
			focus := m.editor.Focus()
			return m, focus
		}
		return m, nil
	case battle.PhaseCrafting:
		if isKey {
			switch {
			case key.Matches(km, m.keys.Submit):
				return m.submit()
			case key.Matches(km, m.keys.Finish):
				if err := m.round.Finish(); err != nil {
					m.notice = "Nothing submitted yet."
				}
				return m, nil
			case key.Matches(km, m.keys.Hint):
				return m, m.usePowerUp(progression.PowerUpHint)
			case key.Matches(km, m.keys.TimeExtend):
				return m, m.usePowerUp(progression.PowerUpTimeExtension)
			case key.Matches(km, m.keys.PeerReview):
				m.feedback = "Reviewing your draft..."
				return m, m.usePowerUp(progression.PowerUpPeerReview)
			case key.Matches(km, m.keys.DoubleShot):
				return m, m.usePowerUp(progression.PowerUpDoubleSubmission)
			}
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		m.round.SetDraft(m.editor.Value())
		return m, cmd
	}
	return m, nil
}

func (m AppModel) submit() (tea.Model, tea.Cmd) {
	final, err := m.deps.Engine.Submit(m.deps.Session, m.editor.Value())
	var verr *prompt.ValidationError
	switch {
	case errors.As(err, &verr):
		m.notice = verr.Error()
		return m, nil
	case err != nil:
		m.notice = err.Error()
		return m, nil
	}
	if final {
		m.phase = battle.PhaseEvaluation
		m.editor.Blur()
		return m, m.spinner.Tick
	}
	m.notice = "First prompt locked in. Submit one more or press ctrl+f to finish."
	m.editor.Reset()
	return m, nil
}

func (m AppModel) viewBattle() string {
	if m.round == nil {
		return ""
	}
	sc := m.round.Scenario
	w := max(m.width-2, 20)

	timer := theme.TimerStyle(m.urgency.String()).Render(formatClock(m.remaining))
	head := badgeStyle.Render(strings.ToUpper(m.phase.String())) + "  " + timer
	if sc.Difficulty != "" {
		head += dimStyle.Render("  " + sc.Difficulty)
	}

	var b strings.Builder
	b.WriteString(head + "\n\n")
	b.WriteString(cardTitleStyle.Render(sc.Title) + "\n")
	b.WriteString(wrap(sc.Description, w) + "\n")

	switch m.phase {
	case battle.PhaseScenario:
		b.WriteString("\n" + labelStyle.Render("Criteria") + "\n")
		for _, c := range sc.Criteria {
			b.WriteString("  • " + c + "\n")
		}
		b.WriteString("\n" + labelStyle.Render("Data") + "\n")
		b.WriteString(dimStyle.Render(wrap(sc.Data, w)) + "\n\n")
		b.WriteString(noticeStyle.Render(fmt.Sprintf("Crafting starts in %ds. Press enter to start now.", m.remaining)))
	case battle.PhaseCrafting:
		b.WriteString(dimStyle.Render("Criteria: "+strings.Join(sc.Criteria, " · ")) + "\n\n")
		editorH := max(m.height-16, 3)
		b.WriteString(focusedCardStyle.Width(w).Render(m.viewEditor(w-4, editorH)) + "\n")
		st := prompt.Measure(m.editor.Value())
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d chars · %d words · ~%d tokens · %d submission(s) left",
			st.Chars, st.Words, st.Tokens, m.round.SubmissionsLeft())) + "\n")
		if m.hint != "" {
			b.WriteString(goodStyle.Render("Hint: "+m.hint) + "\n")
		}
		if m.feedback != "" {
			b.WriteString(warnStyle.Render("Peer review: "+clip(m.feedback, w*2)) + "\n")
		}
		if pu := m.powerUpSummary(); pu != "" {
			b.WriteString(dimStyle.Render(pu) + "\n")
		}
	case battle.PhaseEvaluation:
		b.WriteString("\n" + m.spinner.View() + " Evaluating your prompt...")
	}
	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice))
	}
	return b.String()
}

func (m AppModel) viewEditor(width, height int) string {
	editor := m.editor
	editor.SetWidth(max(width, 8))
	editor.SetHeight(max(height, 3))
	return editor.View()
}

func (m AppModel) powerUpSummary() string {
	p := m.deps.Session.Profile()
	if p == nil || len(p.PowerUps) == 0 {
		return ""
	}
	var parts []string
	for _, def := range progression.PowerUps {
		if n := p.PowerUps[def.ID]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s×%d", def.Name, n))
		}
	}
	return "Power-ups: " + strings.Join(parts, "  ")
}
