package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"

	"github.com/agusx1211/promptarena/internal/battle"
	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/profile"
	"github.com/agusx1211/promptarena/internal/storage"
)

var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestDeps(t *testing.T, withProfile bool) Deps {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	kv := storage.Open(storage.NewMemoryBackend())
	eng := battle.NewEngine(kv, evaluator.NewService(nil, "", 0.7), cat)
	eng.Clock = clockwork.NewFakeClockAt(testNow)
	var p *profile.Profile
	if withProfile {
		if p, err = profile.New("ada", cat.Avatars[0].ID, "", "Core", testNow); err != nil {
			t.Fatal(err)
		}
	}
	return Deps{
		Engine:  eng,
		Session: battle.NewSession(p),
		Catalog: cat,
		Now:     func() time.Time { return testNow },
	}
}

func send(t *testing.T, m AppModel, msgs ...tea.Msg) AppModel {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(AppModel)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func sized(t *testing.T, m AppModel) AppModel {
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func TestOnboardingCreatesProfile(t *testing.T) {
	d := newTestDeps(t, false)
	m := sized(t, NewApp(d))
	if m.state != stateOnboardName {
		t.Fatalf("state = %v, want onboarding", m.state)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateOnboardName || m.notice == "" {
		t.Fatalf("empty name accepted: state %v notice %q", m.state, m.notice)
	}

	m = send(t, m, runes("grace"), tea.KeyMsg{Type: tea.KeyEnter}, runes("Navy"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateLobby {
		t.Fatalf("state = %v, want lobby", m.state)
	}
	p := d.Session.Profile()
	if p == nil || p.Username != "grace" || p.TeamName != "Navy" {
		t.Fatalf("profile = %+v", p)
	}
	saved, err := d.Engine.Profiles.Load()
	if err != nil || saved.Username != "grace" {
		t.Fatalf("saved = %+v, %v", saved, err)
	}
}

func TestLobbyView(t *testing.T) {
	m := sized(t, NewApp(newTestDeps(t, true)))
	view := ansi.Strip(m.View())
	for _, want := range []string{"ada", "Prompt Apprentice", "Battles", "Tip:"} {
		if !strings.Contains(view, want) {
			t.Fatalf("lobby view missing %q:\n%s", want, view)
		}
	}
	lines := strings.Split(view, "\n")
	if len(lines) != 40 {
		t.Fatalf("view has %d lines, want 40", len(lines))
	}
}

func TestBattleFlow(t *testing.T) {
	d := newTestDeps(t, true)
	m := sized(t, NewApp(d))

	m = send(t, m, runes("b"))
	if m.state != stateBattle || m.phase != battle.PhaseScenario {
		t.Fatalf("state %v phase %s", m.state, m.phase)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Crafting starts in") {
		t.Fatalf("scenario view:\n%s", view)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != battle.PhaseCrafting {
		t.Fatalf("phase = %s", m.phase)
	}

	m = send(t, m, runes("short"), tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.phase != battle.PhaseCrafting || !strings.Contains(m.notice, "at least") {
		t.Fatalf("short prompt: phase %s notice %q", m.phase, m.notice)
	}

	m.editor.Reset()
	good := "You are an editor. Summarize the email as a bullet list."
	m = send(t, m, runes(good))
	if got := m.round.Draft(); got != good {
		t.Fatalf("draft = %q", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.phase != battle.PhaseEvaluation {
		t.Fatalf("phase after submit = %s (notice %q)", m.phase, m.notice)
	}

	out, err := d.Engine.Resolve(context.Background(), d.Session)
	if err != nil {
		t.Fatal(err)
	}
	m = send(t, m, roundDoneMsg{out: out})
	if m.state != stateResults {
		t.Fatalf("state = %v", m.state)
	}
	view := ansi.Strip(m.View())
	for _, want := range []string{"8.0 / 10", "Victory!", "+180 XP", "LEVEL UP", "local heuristic"} {
		if !strings.Contains(view, want) {
			t.Fatalf("results view missing %q:\n%s", want, view)
		}
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateLobby {
		t.Fatalf("state = %v", m.state)
	}
}

func TestEscCancelsRound(t *testing.T) {
	d := newTestDeps(t, true)
	m := sized(t, NewApp(d))
	m = send(t, m, runes("b"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.round.Phase() != battle.PhaseCancelled {
		t.Fatalf("phase = %s", m.round.Phase())
	}
	m = send(t, m, roundDoneMsg{err: battle.ErrCancelled})
	if m.state != stateLobby || !strings.Contains(m.notice, "left the arena") {
		t.Fatalf("state %v notice %q", m.state, m.notice)
	}
}

func TestEventsUpdateTimer(t *testing.T) {
	d := newTestDeps(t, true)
	m := sized(t, NewApp(d))
	m = send(t, m, runes("b"))
	m = send(t, m, eventMsg{ok: true, ev: battle.Event{Kind: battle.EventPhase, Phase: battle.PhaseCrafting, Remaining: 120}})
	m = send(t, m, eventMsg{ok: true, ev: battle.Event{Kind: battle.EventTick, Phase: battle.PhaseCrafting, Remaining: 9, Urgency: battle.UrgencyDanger}})
	if m.phase != battle.PhaseCrafting || m.remaining != 9 || m.urgency != battle.UrgencyDanger {
		t.Fatalf("phase %s remaining %d urgency %s", m.phase, m.remaining, m.urgency)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "00:09") {
		t.Fatalf("timer not rendered:\n%s", view)
	}
}

func TestHistoryView(t *testing.T) {
	d := newTestDeps(t, true)
	m := sized(t, NewApp(d))
	m = send(t, m, runes("h"))
	if m.state != stateHistory || !strings.Contains(ansi.Strip(m.View()), "No battles yet") {
		t.Fatalf("history state %v", m.state)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateLobby {
		t.Fatalf("state = %v", m.state)
	}
}

func TestFitLines(t *testing.T) {
	got := strings.Split(fitLines([]string{"abcdef", "xy"}, 4, 3), "\n")
	want := []string{"abcd", "xy  ", "    "}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock(125); got != "02:05" {
		t.Fatalf("formatClock(125) = %q", got)
	}
	if got := formatClock(-3); got != "00:00" {
		t.Fatalf("formatClock(-3) = %q", got)
	}
}
