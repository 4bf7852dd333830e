package progression

import (
	"math"

	"github.com/agusx1211/promptarena/internal/profile"
)

// XP and scoring constants.
const (
	BaseXP           = 50
	XPPerScorePoint  = 10
	PerfectBonus     = 100
	WinBonus         = 50
	PerfectThreshold = 10.0
	WinThreshold     = 7.0
	MaxScore         = 10.0
)

// ApplyRoundResult folds one round's score into p and returns the XP
// awarded. score is not clamped: out-of-range input produces out-of-range XP.
func ApplyRoundResult(p *profile.Profile, score float64) int {
	scoreXP := int(math.Floor(score * XPPerScorePoint))
	bonusXP := 0

	if score >= PerfectThreshold {
		bonusXP += PerfectBonus
		p.PerfectScores++
	}
	if score >= WinThreshold {
		bonusXP += WinBonus
		p.TotalWins++
		p.CurrentStreak++
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
	} else {
		p.CurrentStreak = 0
	}

	total := BaseXP + scoreXP + bonusXP
	p.XP += total
	p.TotalBattles++
	if score > p.BestScore {
		p.BestScore = score
	}
	p.Level = LevelForXP(p.XP).Level
	return total
}

// IsWin reports whether score meets the win threshold.
func IsWin(score float64) bool {
	return score >= WinThreshold
}

// RoundScore rounds an evaluator total to one decimal, the precision shown
// to players and fed to ApplyRoundResult.
func RoundScore(total float64) float64 {
	return math.Round(total*10) / 10
}
