package battle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/history"
	"github.com/agusx1211/promptarena/internal/ids"
	"github.com/agusx1211/promptarena/internal/leaderboard"
	"github.com/agusx1211/promptarena/internal/profile"
	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/prompt"
	"github.com/agusx1211/promptarena/internal/storage"
)

// ErrCancelled is returned when a round ends without results.
var ErrCancelled = errors.New("round cancelled")

// Outcome is everything a completed round produced.
type Outcome struct {
	Record          history.BattleRecord      `json:"record"`
	Evaluation      evaluator.Result          `json:"evaluation"`
	Execution       evaluator.Execution       `json:"execution"`
	Score           float64                   `json:"score"`
	XPEarned        int                       `json:"xpEarned"`
	OldLevel        int                       `json:"oldLevel"`
	NewLevel        int                       `json:"newLevel"`
	Win             bool                      `json:"win"`
	Submissions     int                       `json:"submissions"`
	NewAchievements []progression.Achievement `json:"newAchievements"`
	GrantedPowerUps []string                  `json:"grantedPowerUps"`
	Rank            int                       `json:"rank,omitempty"`
	Warnings        []string                  `json:"warnings,omitempty"`
}

// LeveledUp reports whether the round crossed a level boundary.
func (o *Outcome) LeveledUp() bool { return o.NewLevel > o.OldLevel }

// Engine wires rounds to scoring and persistence. Zero-valued optional
// fields fall back to defaults: a real clock, default timings and limits,
// and the global random source.
type Engine struct {
	KV        *storage.Store
	Profiles  *profile.Store
	History   *history.Store
	Evaluator *evaluator.Service
	Catalog   *catalog.Catalog
	Clock     clockwork.Clock
	Timings   Timings
	Limits    prompt.Limits
	Rand      *rand.Rand
}

// NewEngine builds an engine over kv with default timings.
func NewEngine(kv *storage.Store, ev *evaluator.Service, cat *catalog.Catalog) *Engine {
	return &Engine{
		KV:        kv,
		Profiles:  profile.NewStore(kv),
		History:   history.NewStore(kv),
		Evaluator: ev,
		Catalog:   cat,
		Clock:     clockwork.NewRealClock(),
		Timings:   DefaultTimings(),
		Limits:    prompt.DefaultLimits(),
	}
}

func (e *Engine) clock() clockwork.Clock {
	if e.Clock == nil {
		return clockwork.NewRealClock()
	}
	return e.Clock
}

func (e *Engine) timings() Timings {
	if e.Timings.Crafting <= 0 {
		return DefaultTimings()
	}
	return e.Timings
}

func (e *Engine) limits() prompt.Limits {
	if e.Limits.Min <= 0 && e.Limits.Max <= 0 {
		return prompt.DefaultLimits()
	}
	return e.Limits
}

// StartRound opens a round on scenarioID, or a random scenario when empty.
// A round already in flight is cancelled.
func (e *Engine) StartRound(s *Session, scenarioID string) (*Round, error) {
	if e.Catalog == nil || len(e.Catalog.Scenarios) == 0 {
		return nil, errors.New("no scenarios loaded")
	}
	var sc catalog.Scenario
	if scenarioID != "" {
		var ok bool
		if sc, ok = e.Catalog.Scenario(scenarioID); !ok {
			return nil, fmt.Errorf("unknown scenario %q", scenarioID)
		}
	} else {
		sc = e.Catalog.Random(e.Rand)
	}
	r := NewRound(sc, e.timings(), e.limits())
	if prev := s.setRound(r); prev != nil && prev.Cancel("replaced by a new round") {
		s.publish(Event{Kind: EventCancelled, Phase: PhaseCancelled, Detail: prev.CancelReason(), Time: e.clock().Now()})
	}
	debug.LogKV("battle", "round started", "session", s.ID, "scenario", sc.ID)
	s.publish(Event{Kind: EventPhase, Phase: PhaseScenario, Remaining: r.Remaining(), Detail: sc.ID, Time: e.clock().Now()})
	return r, nil
}

// Submit forwards a submission to the current round.
func (e *Engine) Submit(s *Session, text string) (bool, error) {
	r := s.Round()
	if r == nil {
		return false, ErrNoRound
	}
	final, err := r.Submit(text)
	if err != nil {
		return false, err
	}
	s.publish(Event{Kind: EventSubmitted, Phase: r.Phase(), Remaining: r.Remaining(), Time: e.clock().Now()})
	return final, nil
}

// Play runs a one-shot round: open scenarioID, submit text straight away
// and resolve. timeTaken is recorded as the round's elapsed time.
func (e *Engine) Play(ctx context.Context, s *Session, scenarioID, text string, timeTaken time.Duration) (*Outcome, error) {
	r, err := e.StartRound(s, scenarioID)
	if err != nil {
		return nil, err
	}
	r.SkipCountdown()
	final, err := r.Submit(text)
	if err != nil {
		r.Cancel("invalid prompt")
		return nil, err
	}
	if !final {
		if err := r.Finish(); err != nil {
			return nil, err
		}
	}
	r.spend(timeTaken)
	s.publish(Event{Kind: EventPhase, Phase: PhaseEvaluation, Time: e.clock().Now()})
	return e.Resolve(ctx, s)
}

// Run ticks the current round until crafting ends, then resolves it. A
// cancelled context or round yields an error wrapping ErrCancelled and
// leaves the profile untouched.
func (e *Engine) Run(ctx context.Context, s *Session) (*Outcome, error) {
	r := s.Round()
	if r == nil {
		return nil, ErrNoRound
	}
	return e.RunRound(ctx, s, r)
}

// RunRound is Run pinned to r, for callers that start the runner on another
// goroutine. A round replaced before it resolves counts as cancelled.
func (e *Engine) RunRound(ctx context.Context, s *Session, r *Round) (*Outcome, error) {
	t := StartTicker(e.clock(), r, func(res TickResult) {
		now := e.clock().Now()
		if res.Changed && res.Phase == PhaseCrafting {
			s.publish(Event{Kind: EventPhase, Phase: res.Phase, Remaining: res.Remaining, Time: now})
			return
		}
		if res.Phase == PhaseScenario || res.Phase == PhaseCrafting {
			s.publish(Event{Kind: EventTick, Phase: res.Phase, Remaining: res.Remaining, Urgency: res.Urgency, Time: now})
		}
	})
	select {
	case <-ctx.Done():
		r.Cancel("context done")
	case <-r.Closed():
	}
	t.Stop()

	if r.Phase() == PhaseCancelled {
		return nil, e.cancelled(s, r)
	}
	if s.Round() != r {
		r.Cancel("replaced by a new round")
		return nil, e.cancelled(s, r)
	}
	s.publish(Event{Kind: EventPhase, Phase: PhaseEvaluation, Time: e.clock().Now()})
	return e.Resolve(ctx, s)
}

func (e *Engine) cancelled(s *Session, r *Round) error {
	reason := r.CancelReason()
	debug.LogKV("battle", "round cancelled", "session", s.ID, "reason", reason)
	s.publish(Event{Kind: EventCancelled, Phase: PhaseCancelled, Detail: reason, Time: e.clock().Now()})
	return fmt.Errorf("%w: %s", ErrCancelled, reason)
}

// Resolve scores a round in the evaluation phase and applies the result.
// Each submission is evaluated then executed, one call at a time; the best
// total wins.
func (e *Engine) Resolve(ctx context.Context, s *Session) (*Outcome, error) {
	r := s.Round()
	if r == nil {
		return nil, ErrNoRound
	}
	if ph := r.Phase(); ph != PhaseEvaluation {
		return nil, fmt.Errorf("round is in %s, not evaluation", ph)
	}
	subs := r.Submissions()
	var (
		best       evaluator.Result
		bestExec   evaluator.Execution
		bestPrompt string
	)
	for i, text := range subs {
		ev := e.Evaluator.Evaluate(ctx, text, r.Scenario)
		ex := e.Evaluator.Execute(ctx, text, r.Scenario.Data)
		if i == 0 || ev.TotalScore > best.TotalScore {
			best, bestExec, bestPrompt = ev, ex, text
		}
	}
	if err := ctx.Err(); err != nil {
		r.Cancel("context done")
	}
	if !r.complete() {
		return nil, e.cancelled(s, r)
	}

	now := e.clock().Now()
	score := progression.RoundScore(best.TotalScore)
	out := &Outcome{
		Evaluation:  best,
		Execution:   bestExec,
		Score:       score,
		Win:         progression.IsWin(score),
		Submissions: len(subs),
	}

	s.mu.Lock()
	p := s.profile
	out.OldLevel = p.Level
	out.XPEarned = progression.ApplyRoundResult(p, score)
	out.NewLevel = p.Level
	out.GrantedPowerUps = progression.GrantLevelRewards(p, out.OldLevel, out.NewLevel)
	out.NewAchievements = progression.EvaluateAchievements(p)
	out.Record = history.BattleRecord{
		ID:                  ids.Battle(now),
		ScenarioID:          r.Scenario.ID,
		ScenarioTitle:       r.Scenario.Title,
		ScenarioDescription: r.Scenario.Description,
		ScenarioData:        r.Scenario.Data,
		ScenarioCriteria:    r.Scenario.Criteria,
		Prompt:              bestPrompt,
		Score:               score,
		XPEarned:            out.XPEarned,
		Date:                now.UTC(),
		TimeTaken:           r.Elapsed(),
	}
	out.Warnings = e.persistLocked(p, out, now)
	s.mu.Unlock()

	debug.LogKV("battle", "round resolved",
		"session", s.ID,
		"scenario", r.Scenario.ID,
		"score", score,
		"source", best.Source,
		"xp", out.XPEarned,
		"level", out.NewLevel,
	)
	s.publish(Event{Kind: EventResult, Phase: PhaseResults, Outcome: out, Time: now})
	return out, nil
}

// persistLocked saves the profile, history and local leaderboard. Failures
// degrade to warnings; the in-memory profile stays authoritative.
func (e *Engine) persistLocked(p *profile.Profile, out *Outcome, now time.Time) []string {
	var warnings []string
	note := func(what string, err error) {
		if err == nil {
			return
		}
		debug.LogKV("battle", "persist failed", "what", what, "error", err)
		if errors.Is(err, storage.ErrUnavailable) {
			warnings = append(warnings, what+" not saved: storage unavailable, progress is session-only")
			return
		}
		warnings = append(warnings, fmt.Sprintf("%s not saved: %v", what, err))
	}
	if e.Profiles != nil {
		note("profile", e.Profiles.Save(p))
	}
	if e.History != nil {
		_, err := e.History.AddBattle(out.Record)
		note("history", err)
	}
	if e.KV != nil {
		b := leaderboard.Load(e.KV)
		b.Sync(p, now)
		out.Rank = b.Rank(p.Username)
		note("leaderboard", leaderboard.Save(e.KV, b))
	}
	return dedupe(warnings)
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range in {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// PowerUpEffect describes what a power-up did to the round.
type PowerUpEffect struct {
	ID           string `json:"id"`
	Hint         string `json:"hint,omitempty"`
	Feedback     string `json:"feedback,omitempty"`
	AddedSeconds int    `json:"addedSeconds,omitempty"`
	Remaining    int    `json:"remaining"`
}

// UsePowerUp spends one charge of id on the current round. Each power-up
// works once per round and only while crafting.
func (e *Engine) UsePowerUp(ctx context.Context, s *Session, id string) (PowerUpEffect, error) {
	r := s.Round()
	if r == nil {
		return PowerUpEffect{}, ErrNoRound
	}
	if _, ok := progression.FindPowerUp(id); !ok {
		return PowerUpEffect{}, fmt.Errorf("unknown power-up %q", id)
	}
	if err := r.markPowerUp(id); err != nil {
		return PowerUpEffect{}, err
	}
	s.mu.Lock()
	err := progression.ConsumePowerUp(s.profile, id)
	s.mu.Unlock()
	if err != nil {
		r.unmarkPowerUp(id)
		return PowerUpEffect{}, err
	}

	eff := PowerUpEffect{ID: id}
	switch id {
	case progression.PowerUpTimeExtension:
		err = r.Extend(progression.TimeExtension)
		eff.AddedSeconds = int(progression.TimeExtension.Seconds())
	case progression.PowerUpDoubleSubmission:
		err = r.AllowExtraSubmission()
	case progression.PowerUpHint:
		eff.Hint = hintFor(r.Scenario)
	case progression.PowerUpPeerReview:
		eff.Feedback = e.peerReview(ctx, r.Draft())
	}
	if err != nil {
		s.mu.Lock()
		s.profile.PowerUps[id]++
		s.mu.Unlock()
		r.unmarkPowerUp(id)
		return PowerUpEffect{}, err
	}
	eff.Remaining = r.Remaining()

	s.mu.Lock()
	if e.Profiles != nil {
		if err := e.Profiles.Save(s.profile); err != nil {
			debug.LogKV("battle", "persist failed", "what", "profile", "error", err)
		}
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventPowerUp, Phase: r.Phase(), Remaining: eff.Remaining, PowerUp: id, Detail: eff.Hint + eff.Feedback, Time: e.clock().Now()})
	return eff, nil
}

func hintFor(sc catalog.Scenario) string {
	if h := strings.TrimSpace(sc.Hint); h != "" {
		return h
	}
	if len(sc.Criteria) > 0 {
		return "Focus on: " + strings.Join(sc.Criteria, ", ")
	}
	return "Define a role for the model and name the output format."
}

// peerReview asks the analyzer about the draft, falling back to the local
// heuristic's improvement notes.
func (e *Engine) peerReview(ctx context.Context, draft string) string {
	if strings.TrimSpace(draft) == "" {
		return "Write a draft first; there is nothing to review yet."
	}
	if text, err := e.Evaluator.Analyze(ctx, draft); err == nil && text != "" {
		return text
	}
	return strings.Join(evaluator.Heuristic(draft).Feedback.Improvements, ". ") + "."
}
