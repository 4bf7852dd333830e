package battle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/leaderboard"
	"github.com/agusx1211/promptarena/internal/profile"
	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/prompt"
	"github.com/agusx1211/promptarena/internal/storage"
)

const scenarioID = "customer-email-summary"

type fixture struct {
	eng   *Engine
	clock *clockwork.FakeClock
	sess  *Session
	kv    *storage.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	kv := storage.Open(storage.NewMemoryBackend())
	clk := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	eng := NewEngine(kv, evaluator.NewService(nil, "", 0.7), cat)
	eng.Clock = clk
	eng.Timings = shortTimings()

	p, err := profile.New("ada", "robot", "", "Core", clk.Now())
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{eng: eng, clock: clk, sess: NewSession(p), kv: kv}
}

func next(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestEngineRunExpiresAndResolves(t *testing.T) {
	f := newFixture(t)
	events, unsub := f.sess.Events.Subscribe(64)
	defer unsub()

	r, err := f.eng.StartRound(f.sess, scenarioID)
	if err != nil {
		t.Fatal(err)
	}
	if ev := next(t, events); ev.Kind != EventPhase || ev.Phase != PhaseScenario {
		t.Fatalf("first event = %+v", ev)
	}
	r.SetDraft(goodPrompt)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	type result struct {
		out *Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := f.eng.Run(ctx, f.sess)
		done <- result{out, err}
	}()

	want := []struct {
		kind  EventKind
		phase Phase
	}{
		{EventTick, PhaseScenario},
		{EventPhase, PhaseCrafting},
		{EventTick, PhaseCrafting},
		{EventTick, PhaseCrafting},
		{EventPhase, PhaseEvaluation},
	}
	for i, w := range want {
		if err := f.clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		f.clock.Advance(time.Second)
		ev := next(t, events)
		if ev.Kind != w.kind || ev.Phase != w.phase {
			t.Fatalf("tick %d event = %s/%s, want %s/%s", i, ev.Kind, ev.Phase, w.kind, w.phase)
		}
	}

	res := <-done
	if res.err != nil {
		t.Fatalf("Run: %v", res.err)
	}
	out := res.out
	if ev := next(t, events); ev.Kind != EventResult || ev.Outcome != out {
		t.Fatalf("result event = %+v", ev)
	}

	// Heuristic: role + format + sweet spot = 8.
	if out.Score != 8 || !out.Win || out.Evaluation.Source != evaluator.SourceHeuristic {
		t.Fatalf("outcome = %+v", out)
	}
	if out.XPEarned != 180 || out.OldLevel != 1 || out.NewLevel != 2 || !out.LeveledUp() {
		t.Fatalf("xp %d level %d->%d", out.XPEarned, out.OldLevel, out.NewLevel)
	}
	if len(out.GrantedPowerUps) != 2 {
		t.Fatalf("granted = %v", out.GrantedPowerUps)
	}
	if out.Record.TimeTaken != 5 || out.Record.Prompt != goodPrompt || out.Record.ID != "battle_1777626005000" {
		t.Fatalf("record = %+v", out.Record)
	}
	if r.Phase() != PhaseResults {
		t.Fatalf("phase = %s", r.Phase())
	}

	saved, err := f.eng.Profiles.Load()
	if err != nil || saved.XP != 180 || saved.TotalWins != 1 {
		t.Fatalf("saved profile = %+v, %v", saved, err)
	}
	if h := f.eng.History.Battles(); len(h) != 1 || h[0].Score != 8 {
		t.Fatalf("history = %+v", h)
	}
	if b := leaderboard.Load(f.kv); len(b.Entries) != 1 || b.Entries[0].XP != 180 || out.Rank != 1 {
		t.Fatalf("leaderboard = %+v rank %d", b, out.Rank)
	}
}

func TestEngineManualSubmit(t *testing.T) {
	f := newFixture(t)
	r, err := f.eng.StartRound(f.sess, scenarioID)
	if err != nil {
		t.Fatal(err)
	}
	r.SkipCountdown()
	if final, err := f.eng.Submit(f.sess, goodPrompt); err != nil || !final {
		t.Fatalf("Submit = %v, %v", final, err)
	}
	if _, err := f.eng.Submit(f.sess, goodPrompt); !errors.Is(err, ErrNotCrafting) {
		t.Fatalf("second Submit err = %v", err)
	}
	out, err := f.eng.Run(context.Background(), f.sess)
	if err != nil {
		t.Fatal(err)
	}
	if out.Record.TimeTaken != 0 || f.sess.Profile().TotalBattles != 1 {
		t.Fatalf("outcome = %+v", out.Record)
	}
}

func TestEngineCancelLeavesProfileUntouched(t *testing.T) {
	f := newFixture(t)
	if _, err := f.eng.StartRound(f.sess, scenarioID); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.eng.Run(ctx, f.sess)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run err = %v", err)
	}
	p := f.sess.Profile()
	if p.XP != 0 || p.TotalBattles != 0 {
		t.Fatalf("profile mutated: %+v", p)
	}
	if len(f.eng.History.Battles()) != 0 {
		t.Fatal("history written for cancelled round")
	}
}

func TestEngineExpiryWithoutValidDraftCancels(t *testing.T) {
	f := newFixture(t)
	r, _ := f.eng.StartRound(f.sess, scenarioID)
	r.SkipCountdown()
	r.SetDraft("nope")
	for i := 0; i < 3; i++ {
		r.Tick()
	}
	if _, err := f.eng.Run(context.Background(), f.sess); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run err = %v", err)
	}
	if f.sess.Profile().TotalBattles != 0 {
		t.Fatal("cancelled round counted")
	}
}

func TestEngineUnknownScenario(t *testing.T) {
	f := newFixture(t)
	if _, err := f.eng.StartRound(f.sess, "nope"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := f.eng.Run(context.Background(), f.sess); !errors.Is(err, ErrNoRound) {
		t.Fatalf("Run without round err = %v", err)
	}
}

func TestEngineStartRoundReplacesRound(t *testing.T) {
	f := newFixture(t)
	first, _ := f.eng.StartRound(f.sess, scenarioID)
	second, _ := f.eng.StartRound(f.sess, "")
	if first.Phase() != PhaseCancelled {
		t.Fatalf("first round phase = %s", first.Phase())
	}
	if f.sess.Round() != second {
		t.Fatal("session does not hold the new round")
	}
}

func TestEnginePowerUps(t *testing.T) {
	f := newFixture(t)
	p := f.sess.Profile()
	p.PowerUps = map[string]int{
		progression.PowerUpTimeExtension:    1,
		progression.PowerUpHint:             1,
		progression.PowerUpPeerReview:       1,
		progression.PowerUpDoubleSubmission: 1,
	}
	r, _ := f.eng.StartRound(f.sess, scenarioID)
	ctx := context.Background()

	if _, err := f.eng.UsePowerUp(ctx, f.sess, progression.PowerUpHint); !errors.Is(err, ErrNotCrafting) {
		t.Fatalf("power-up during countdown err = %v", err)
	}
	if p.PowerUps[progression.PowerUpHint] != 1 {
		t.Fatal("charge consumed on failure")
	}
	r.SkipCountdown()

	eff, err := f.eng.UsePowerUp(ctx, f.sess, progression.PowerUpTimeExtension)
	if err != nil || eff.AddedSeconds != 60 || eff.Remaining != 63 {
		t.Fatalf("time extension = %+v, %v", eff, err)
	}
	if _, err := f.eng.UsePowerUp(ctx, f.sess, progression.PowerUpTimeExtension); err == nil {
		t.Fatal("second time extension should fail")
	}

	eff, err = f.eng.UsePowerUp(ctx, f.sess, progression.PowerUpHint)
	if err != nil || eff.Hint == "" {
		t.Fatalf("hint = %+v, %v", eff, err)
	}

	r.SetDraft("Summarize the email.")
	eff, err = f.eng.UsePowerUp(ctx, f.sess, progression.PowerUpPeerReview)
	if err != nil || eff.Feedback != "Consider defining a role for the AI. Specify the desired output format." {
		t.Fatalf("peer review = %+v, %v", eff, err)
	}

	if _, err := f.eng.UsePowerUp(ctx, f.sess, progression.PowerUpDoubleSubmission); err != nil {
		t.Fatal(err)
	}
	if r.SubmissionsLeft() != 2 {
		t.Fatalf("left = %d", r.SubmissionsLeft())
	}
	if len(p.PowerUps) != 0 {
		t.Fatalf("charges left = %v", p.PowerUps)
	}

	// Lower-scoring first, better second; the best is kept.
	f.eng.Submit(f.sess, "Summarize the customer email please.")
	f.eng.Submit(f.sess, goodPrompt)
	out, err := f.eng.Run(ctx, f.sess)
	if err != nil {
		t.Fatal(err)
	}
	if out.Submissions != 2 || out.Score != 8 || out.Record.Prompt != goodPrompt {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestEngineUnavailableStorageWarns(t *testing.T) {
	f := newFixture(t)
	f.eng.KV = storage.Open(nil)
	f.eng.Profiles = profile.NewStore(f.eng.KV)
	f.eng.History = nil
	r, _ := f.eng.StartRound(f.sess, scenarioID)
	r.SkipCountdown()
	r.Submit(goodPrompt)
	out, err := f.eng.Run(context.Background(), f.sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Warnings) != 2 {
		t.Fatalf("warnings = %v", out.Warnings)
	}
	if f.sess.Profile().XP != 180 {
		t.Fatal("in-memory profile not updated")
	}
}

func TestEnginePlayOneShot(t *testing.T) {
	f := newFixture(t)
	out, err := f.eng.Play(context.Background(), f.sess, scenarioID, goodPrompt, 4*time.Second)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if out.Score != 8 || out.Record.TimeTaken != 4 || out.Submissions != 1 {
		t.Fatalf("outcome = %+v", out)
	}
	if got := f.sess.Round().Phase(); got != PhaseResults {
		t.Fatalf("phase = %s, want results", got)
	}

	// Reported time is capped at countdown plus crafting.
	out, err = f.eng.Play(context.Background(), f.sess, scenarioID, goodPrompt, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if out.Record.TimeTaken != 5 {
		t.Fatalf("TimeTaken = %d, want 5", out.Record.TimeTaken)
	}
}

func TestEnginePlayRejectsShortPrompt(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.Play(context.Background(), f.sess, scenarioID, "hi", 0)
	var verr *prompt.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if f.sess.Profile().TotalBattles != 0 {
		t.Fatal("profile changed by a rejected prompt")
	}
}
