package progression

import (
	"testing"
	"time"

	"github.com/agusx1211/promptarena/internal/profile"
	"pgregory.net/rapid"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newProfile(t fataler) *profile.Profile {
	t.Helper()
	p, err := profile.New("ada", "robot", "", "", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}
	return p
}

func TestApplyRoundResultPerfect(t *testing.T) {
	p := newProfile(t)
	got := ApplyRoundResult(p, 10)
	if got != 300 {
		t.Fatalf("ApplyRoundResult(10) = %d, want 300", got)
	}
	if p.PerfectScores != 1 || p.TotalWins != 1 || p.CurrentStreak != 1 || p.LongestStreak != 1 {
		t.Fatalf("profile after perfect = %+v", p)
	}
	if p.XP != 300 || p.Level != 3 || p.TotalBattles != 1 || p.BestScore != 10 {
		t.Fatalf("profile after perfect = %+v", p)
	}
}

func TestApplyRoundResultLoss(t *testing.T) {
	p := newProfile(t)
	p.CurrentStreak, p.LongestStreak, p.TotalWins = 2, 2, 2

	got := ApplyRoundResult(p, 4)
	if got != 90 {
		t.Fatalf("ApplyRoundResult(4) = %d, want 90", got)
	}
	if p.CurrentStreak != 0 || p.LongestStreak != 2 {
		t.Fatalf("streaks = %d/%d, want 0/2", p.CurrentStreak, p.LongestStreak)
	}
	if p.TotalWins != 2 || p.PerfectScores != 0 {
		t.Fatalf("wins/perfects = %d/%d, want 2/0", p.TotalWins, p.PerfectScores)
	}
}

func TestApplyRoundResultWinFloorsScoreXP(t *testing.T) {
	p := newProfile(t)
	p.BestScore = 9
	if got := ApplyRoundResult(p, 7.86); got != 50+78+50 {
		t.Fatalf("ApplyRoundResult(7.86) = %d, want %d", got, 50+78+50)
	}
	if p.BestScore != 9 {
		t.Fatalf("BestScore = %v, want unchanged 9", p.BestScore)
	}
}

func TestApplyRoundResultDoesNotClamp(t *testing.T) {
	p := newProfile(t)
	if got := ApplyRoundResult(p, 15); got != 50+150+100+50 {
		t.Fatalf("ApplyRoundResult(15) = %d, want %d", got, 50+150+100+50)
	}
	if got := ApplyRoundResult(p, -3); got != 50-30 {
		t.Fatalf("ApplyRoundResult(-3) = %d, want %d", got, 20)
	}
}

func TestApplyRoundResultKeepsInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := newProfile(t)
		scores := rapid.SliceOfN(rapid.Float64Range(0, 10), 1, 40).Draw(t, "scores")
		prevXP := 0
		for _, s := range scores {
			awarded := ApplyRoundResult(p, s)
			if awarded < BaseXP {
				t.Fatalf("awarded %d < base %d for score %v", awarded, BaseXP, s)
			}
			if p.XP != prevXP+awarded {
				t.Fatalf("xp = %d, want %d", p.XP, prevXP+awarded)
			}
			prevXP = p.XP
			if p.LongestStreak < p.CurrentStreak {
				t.Fatalf("longest %d < current %d", p.LongestStreak, p.CurrentStreak)
			}
			if p.Level != LevelForXP(p.XP).Level {
				t.Fatalf("level %d not derived from xp %d", p.Level, p.XP)
			}
		}
		if p.TotalBattles != len(scores) {
			t.Fatalf("TotalBattles = %d, want %d", p.TotalBattles, len(scores))
		}
	})
}

func TestRoundScore(t *testing.T) {
	tests := map[float64]float64{7.84: 7.8, 7.86: 7.9, 10: 10, 0.04: 0}
	for in, want := range tests {
		if got := RoundScore(in); got != want {
			t.Fatalf("RoundScore(%v) = %v, want %v", in, got, want)
		}
	}
}
