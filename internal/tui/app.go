// Package tui is the interactive battle arena: onboarding, lobby, timed
// rounds and results, rendered with bubbletea.
package tui

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agusx1211/promptarena/internal/battle"
	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/theme"
)

// appState distinguishes the screens.
type appState int

const (
	stateLobby appState = iota
	stateOnboardName
	stateOnboardTeam
	stateBattle
	stateResults
	stateHistory
)

// Deps are the collaborators the TUI drives.
type Deps struct {
	Engine  *battle.Engine
	Session *battle.Session
	Catalog *catalog.Catalog
	Rand    *rand.Rand
	Now     func() time.Time
}

// AppModel is the top-level bubbletea model.
type AppModel struct {
	deps  Deps
	keys  keyMap
	state appState

	width  int
	height int

	// Onboarding.
	nameInput   textinput.Model
	teamInput   textinput.Model
	pendingName string

	// Round in flight.
	round       *battle.Round
	phase       battle.Phase
	remaining   int
	urgency     battle.Urgency
	editor      textarea.Model
	spinner     spinner.Model
	events      <-chan battle.Event
	unsubscribe func()
	cancelRound context.CancelFunc
	hint        string
	feedback    string

	outcome *battle.Outcome
	xpBar   progress.Model
	tip     string
	notice  string
}

type eventMsg struct {
	ev battle.Event
	ok bool
}

type roundDoneMsg struct {
	out *battle.Outcome
	err error
}

type powerUpMsg struct {
	eff battle.PowerUpEffect
	err error
}

// NewApp builds the model. A session without a profile starts onboarding.
func NewApp(d Deps) AppModel {
	if d.Now == nil {
		d.Now = time.Now
	}
	m := AppModel{
		deps:    d,
		keys:    defaultKeyMap(),
		state:   stateLobby,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.ColorMauve))),
		xpBar:   progress.New(progress.WithSolidFill(string(theme.ColorGreen)), progress.WithoutPercentage()),
		tip:     catalog.Tip(d.Rand),
	}
	if d.Session.Profile() == nil {
		m.state = stateOnboardName
		m.nameInput = newStyledTextInput("your arena name", 20)
		m.nameInput.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("promptarena")}
	if m.state == stateOnboardName {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			m.stopRound()
			return m, tea.Quit
		}
	case eventMsg:
		return m.handleEvent(msg)
	case roundDoneMsg:
		return m.handleRoundDone(msg)
	case powerUpMsg:
		return m.handlePowerUp(msg)
	}

	switch m.state {
	case stateOnboardName, stateOnboardTeam:
		return m.updateOnboarding(msg)
	case stateBattle:
		return m.updateBattle(msg)
	case stateResults:
		return m.updateResults(msg)
	case stateHistory:
		return m.updateHistory(msg)
	default:
		return m.updateLobby(msg)
	}
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.width == 0 || m.height < 3 {
		return "Loading..."
	}
	var body string
	switch m.state {
	case stateOnboardName, stateOnboardTeam:
		body = m.viewOnboarding()
	case stateBattle:
		body = m.viewBattle()
	case stateResults:
		body = m.viewResults()
	case stateHistory:
		body = m.viewHistory()
	default:
		body = m.viewLobby()
	}
	bodyH := m.height - 2
	if bodyH < 1 {
		bodyH = 1
	}
	return m.renderHeader() + "\n" + fitLines(splitRenderableLines(body), m.width, bodyH) + "\n" + m.renderStatusBar()
}

func (m AppModel) renderHeader() string {
	title := " promptarena"
	if p := m.deps.Session.Profile(); p != nil {
		title += " · " + p.Username
	}
	if m.state == stateBattle && m.round != nil {
		title += " · " + m.round.Scenario.Title
	}
	return headerStyle.Width(m.width).MaxWidth(m.width).Render(title + " ")
}

func (m AppModel) renderStatusBar() string {
	var parts []string
	add := func(b key.Binding) {
		h := b.Help()
		parts = append(parts, statusKeyStyle.Render(h.Key)+statusValueStyle.Render(" "+h.Desc))
	}
	switch m.state {
	case stateLobby:
		add(m.keys.Battle)
		add(m.keys.History)
		add(m.keys.Quit)
	case stateOnboardName, stateOnboardTeam:
		add(key.NewBinding(key.WithHelp("enter", "next")))
		add(m.keys.ForceQuit)
	case stateBattle:
		switch m.phase {
		case battle.PhaseScenario:
			add(m.keys.Continue)
		case battle.PhaseCrafting:
			add(m.keys.Submit)
			add(m.keys.Hint)
			add(m.keys.TimeExtend)
			add(m.keys.PeerReview)
			add(m.keys.DoubleShot)
		}
		add(m.keys.Back)
	case stateResults:
		add(m.keys.Continue)
		add(key.NewBinding(key.WithHelp("b", "rematch")))
		add(m.keys.Quit)
	case stateHistory:
		add(m.keys.Back)
	}
	sep := statusValueStyle.Render("  ")
	return statusBarStyle.Width(m.width).MaxWidth(m.width).Render(strings.Join(parts, sep))
}

func (m *AppModel) stopRound() {
	if m.cancelRound != nil {
		m.cancelRound()
		m.cancelRound = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func waitEvent(ch <-chan battle.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{ev: ev, ok: ok}
	}
}

func runRound(ctx context.Context, eng *battle.Engine, s *battle.Session) tea.Cmd {
	return func() tea.Msg {
		out, err := eng.Run(ctx, s)
		return roundDoneMsg{out: out, err: err}
	}
}

// Run starts the program in the alternate screen.
func Run(d Deps) error {
	debug.LogKV("tui", "starting")
	p := tea.NewProgram(NewApp(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
