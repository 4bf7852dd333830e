// Package battle runs prompt battle rounds: an explicit phase state machine
// driven by one-second ticks, and an engine that scores submissions and
// applies progression.
package battle

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/config"
	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/prompt"
)

var (
	// ErrNotCrafting is returned for submissions and power-ups outside the
	// crafting phase, including every submit after the first final one.
	ErrNotCrafting = errors.New("round is not accepting submissions")
	// ErrPowerUpUsed is returned when a power-up was already used this round.
	ErrPowerUpUsed = errors.New("power-up already used this round")
	// ErrNoRound is returned when a session has no round in flight.
	ErrNoRound = errors.New("no round in progress")
)

// Phase is a round state.
type Phase int

const (
	PhaseScenario Phase = iota
	PhaseCrafting
	PhaseEvaluation
	PhaseResults
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseScenario:
		return "scenario"
	case PhaseCrafting:
		return "crafting"
	case PhaseEvaluation:
		return "evaluation"
	case PhaseResults:
		return "results"
	case PhaseCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Urgency classifies the crafting time left.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyWarning
	UrgencyDanger
)

func (u Urgency) String() string {
	switch u {
	case UrgencyWarning:
		return "warning"
	case UrgencyDanger:
		return "danger"
	default:
		return "normal"
	}
}

// MarshalText encodes the urgency by name.
func (u Urgency) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// Timings are the per-phase durations, whole seconds.
type Timings struct {
	Countdown time.Duration
	Crafting  time.Duration
	Warning   time.Duration
	Danger    time.Duration
}

// DefaultTimings is 15s of scenario countdown and 120s of crafting.
func DefaultTimings() Timings {
	return Timings{
		Countdown: 15 * time.Second,
		Crafting:  120 * time.Second,
		Warning:   30 * time.Second,
		Danger:    10 * time.Second,
	}
}

// TimingsFromConfig converts the game config. Non-positive values keep the
// defaults.
func TimingsFromConfig(gc config.GameConfig) Timings {
	t := DefaultTimings()
	set := func(dst *time.Duration, secs int) {
		if secs > 0 {
			*dst = time.Duration(secs) * time.Second
		}
	}
	set(&t.Countdown, gc.ScenarioCountdownSecs)
	set(&t.Crafting, gc.PromptTimeLimitSecs)
	set(&t.Warning, gc.TimerWarningSecs)
	set(&t.Danger, gc.TimerDangerSecs)
	return t
}

// TickResult reports the round state after a tick.
type TickResult struct {
	Phase     Phase   `json:"phase"`
	Remaining int     `json:"remaining"` // seconds left in the phase
	Urgency   Urgency `json:"urgency"`
	Changed   bool    `json:"changed"` // the tick moved to a new phase
	Expired   bool    `json:"expired"` // crafting ran out
}

// Round is one scenario attempt. All methods are safe for concurrent use;
// the ticker and the player's input typically live on different goroutines.
type Round struct {
	Scenario catalog.Scenario

	mu          sync.Mutex
	timings     Timings
	limits      prompt.Limits
	phase       Phase
	remaining   int
	elapsed     int
	draft       string
	submissions []string
	maxSubmit   int
	used        map[string]bool
	reason      string
	closed      chan struct{}
}

// NewRound starts in the scenario phase.
func NewRound(sc catalog.Scenario, t Timings, l prompt.Limits) *Round {
	return &Round{
		Scenario:  sc,
		timings:   t,
		limits:    l,
		phase:     PhaseScenario,
		remaining: secs(t.Countdown),
		maxSubmit: 1,
		used:      map[string]bool{},
		closed:    make(chan struct{}),
	}
}

func secs(d time.Duration) int { return int(d / time.Second) }

// Tick advances the round by one second. Ticks outside the scenario and
// crafting phases are no-ops. When crafting runs out the draft goes through
// the submission path; a draft that fails validation cancels the round
// unless an earlier submission exists.
func (r *Round) Tick() TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := TickResult{}
	switch r.phase {
	case PhaseScenario:
		r.elapsed++
		r.remaining--
		if r.remaining <= 0 {
			r.startCraftingLocked()
			res.Changed = true
		}
	case PhaseCrafting:
		r.elapsed++
		r.remaining--
		if r.remaining <= 0 {
			r.remaining = 0
			res.Expired = true
			res.Changed = true
			r.expireLocked()
		}
	}
	res.Phase = r.phase
	res.Remaining = r.remaining
	res.Urgency = r.urgencyLocked()
	return res
}

func (r *Round) startCraftingLocked() {
	r.phase = PhaseCrafting
	r.remaining = secs(r.timings.Crafting)
}

func (r *Round) expireLocked() {
	if len(r.submissions) < r.maxSubmit && prompt.Validate(r.draft, r.limits) == nil {
		r.submissions = append(r.submissions, strings.TrimSpace(r.draft))
	}
	if len(r.submissions) == 0 {
		r.cancelLocked("time expired without a valid prompt")
		return
	}
	r.finishCraftingLocked()
}

func (r *Round) finishCraftingLocked() {
	r.phase = PhaseEvaluation
	close(r.closed)
}

func (r *Round) cancelLocked(reason string) {
	wasOpen := r.phase == PhaseScenario || r.phase == PhaseCrafting
	r.phase = PhaseCancelled
	r.reason = reason
	if wasOpen {
		close(r.closed)
	}
}

// SkipCountdown jumps from the scenario phase straight to crafting.
func (r *Round) SkipCountdown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseScenario {
		return false
	}
	r.startCraftingLocked()
	return true
}

// SetDraft records the in-progress prompt used on expiry.
func (r *Round) SetDraft(text string) {
	r.mu.Lock()
	r.draft = text
	r.mu.Unlock()
}

// Draft returns the in-progress prompt.
func (r *Round) Draft() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draft
}

// Submit validates and records text. The final allowed submission moves the
// round to evaluation; with an extra submission granted the first one keeps
// the round in crafting. A *prompt.ValidationError leaves the round
// unchanged. Every call after the final submission returns ErrNotCrafting.
func (r *Round) Submit(text string) (final bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseCrafting {
		return false, ErrNotCrafting
	}
	if err := prompt.Validate(text, r.limits); err != nil {
		return false, err
	}
	r.submissions = append(r.submissions, strings.TrimSpace(text))
	r.draft = ""
	if len(r.submissions) >= r.maxSubmit {
		r.finishCraftingLocked()
		return true, nil
	}
	return false, nil
}

// Finish ends crafting early with the submissions recorded so far. It
// returns ErrNotCrafting when there are none or crafting is over.
func (r *Round) Finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseCrafting || len(r.submissions) == 0 {
		return ErrNotCrafting
	}
	r.finishCraftingLocked()
	return nil
}

// Cancel abandons the round. It is a no-op once results are in.
func (r *Round) Cancel(reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.phase {
	case PhaseResults, PhaseCancelled:
		return false
	case PhaseEvaluation:
		r.phase = PhaseCancelled
		r.reason = reason
		return true
	}
	r.cancelLocked(reason)
	return true
}

// complete moves an evaluated round to results.
func (r *Round) complete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseEvaluation {
		return false
	}
	r.phase = PhaseResults
	return true
}

// Extend adds d to the crafting clock.
func (r *Round) Extend(d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseCrafting {
		return ErrNotCrafting
	}
	r.remaining += secs(d)
	return nil
}

// AllowExtraSubmission raises the submission limit to two.
func (r *Round) AllowExtraSubmission() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseCrafting {
		return ErrNotCrafting
	}
	r.maxSubmit = 2
	return nil
}

// markPowerUp records id as used. It fails outside crafting or on reuse.
func (r *Round) markPowerUp(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseCrafting {
		return ErrNotCrafting
	}
	if r.used[id] {
		return fmt.Errorf("%s: %w", id, ErrPowerUpUsed)
	}
	r.used[id] = true
	return nil
}

func (r *Round) unmarkPowerUp(id string) {
	r.mu.Lock()
	delete(r.used, id)
	r.mu.Unlock()
}

// spend charges d to the round's elapsed time, capped at the crafting limit
// plus countdown. One-shot rounds use it to record the caller's figure.
func (r *Round) spend(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := secs(d)
	if limit := secs(r.timings.Countdown + r.timings.Crafting); n > limit {
		n = limit
	}
	if n > r.elapsed {
		r.elapsed = n
	}
}

// Closed is closed when crafting ends by submission, expiry or cancel.
func (r *Round) Closed() <-chan struct{} { return r.closed }

// Phase returns the current phase.
func (r *Round) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Remaining returns seconds left in the current timed phase.
func (r *Round) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Elapsed returns whole seconds since the round started, countdown
// included.
func (r *Round) Elapsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

// Urgency classifies the remaining crafting time.
func (r *Round) Urgency() Urgency {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.urgencyLocked()
}

func (r *Round) urgencyLocked() Urgency {
	if r.phase != PhaseCrafting {
		return UrgencyNormal
	}
	switch {
	case r.remaining <= secs(r.timings.Danger):
		return UrgencyDanger
	case r.remaining <= secs(r.timings.Warning):
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// Submissions returns the recorded prompts in order.
func (r *Round) Submissions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.submissions...)
}

// SubmissionsLeft returns how many more prompts may be submitted.
func (r *Round) SubmissionsLeft() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseCrafting {
		return 0
	}
	return r.maxSubmit - len(r.submissions)
}

// CancelReason explains a cancelled round.
func (r *Round) CancelReason() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reason
}

// Snapshot is a point-in-time view for rendering.
type Snapshot struct {
	ScenarioID      string   `json:"scenarioId"`
	Phase           Phase    `json:"phase"`
	Remaining       int      `json:"remaining"`
	Elapsed         int      `json:"elapsed"`
	Urgency         Urgency  `json:"urgency"`
	SubmissionsLeft int      `json:"submissionsLeft"`
	PowerUpsUsed    []string `json:"powerUpsUsed"`
	CancelReason    string   `json:"cancelReason,omitempty"`
}

// Snapshot captures the round state.
func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		ScenarioID:   r.Scenario.ID,
		Phase:        r.phase,
		Remaining:    r.remaining,
		Elapsed:      r.elapsed,
		Urgency:      r.urgencyLocked(),
		PowerUpsUsed: []string{},
		CancelReason: r.reason,
	}
	if r.phase == PhaseCrafting {
		s.SubmissionsLeft = r.maxSubmit - len(r.submissions)
	}
	for _, pu := range progression.PowerUps {
		if r.used[pu.ID] {
			s.PowerUpsUsed = append(s.PowerUpsUsed, pu.ID)
		}
	}
	return s
}
