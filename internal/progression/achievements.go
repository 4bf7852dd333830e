package progression

import "github.com/agusx1211/promptarena/internal/profile"

// Achievement is a one-time unlock triggered by a profile threshold.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	unlocked    func(p *profile.Profile) bool
}

// Achievements is the catalog in unlock-check order.
var Achievements = []Achievement{
	{ID: "first_battle", Name: "First Blood", Description: "Complete your first battle", Icon: "⚔",
		unlocked: func(p *profile.Profile) bool { return p.TotalBattles >= 1 }},
	{ID: "first_win", Name: "Winner Winner", Description: "Score 7 or higher in a battle", Icon: "🏆",
		unlocked: func(p *profile.Profile) bool { return p.TotalWins >= 1 }},
	{ID: "perfect_score", Name: "Flawless", Description: "Score a perfect 10", Icon: "💯",
		unlocked: func(p *profile.Profile) bool { return p.PerfectScores >= 1 }},
	{ID: "streak_3", Name: "On Fire", Description: "Win 3 battles in a row", Icon: "🔥",
		unlocked: func(p *profile.Profile) bool { return p.LongestStreak >= 3 }},
	{ID: "streak_5", Name: "Unstoppable", Description: "Win 5 battles in a row", Icon: "⚡",
		unlocked: func(p *profile.Profile) bool { return p.LongestStreak >= 5 }},
	{ID: "veteran_10", Name: "Veteran", Description: "Complete 10 battles", Icon: "🎖",
		unlocked: func(p *profile.Profile) bool { return p.TotalBattles >= 10 }},
	{ID: "veteran_50", Name: "Battle Hardened", Description: "Complete 50 battles", Icon: "🛡",
		unlocked: func(p *profile.Profile) bool { return p.TotalBattles >= 50 }},
	{ID: "level_3", Name: "Specialist", Description: "Reach Prompt Specialist", Icon: "⭐",
		unlocked: func(p *profile.Profile) bool { return p.Level >= 3 }},
	{ID: "level_5", Name: "Expert", Description: "Reach Prompt Engineering Expert", Icon: "🌟",
		unlocked: func(p *profile.Profile) bool { return p.Level >= 5 }},
	{ID: "high_scorer", Name: "High Scorer", Description: "Reach a best score of 9 or more", Icon: "🎯",
		unlocked: func(p *profile.Profile) bool { return p.BestScore >= 9 }},
}

// FindAchievement looks up a catalog entry by id.
func FindAchievement(id string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// EvaluateAchievements appends every newly met achievement to
// p.UnlockedAchievements and returns them in catalog order.
func EvaluateAchievements(p *profile.Profile) []Achievement {
	var earned []Achievement
	for _, a := range Achievements {
		if p.HasAchievement(a.ID) || !a.unlocked(p) {
			continue
		}
		p.UnlockedAchievements = append(p.UnlockedAchievements, a.ID)
		earned = append(earned, a)
	}
	return earned
}

// RecentAchievements returns up to n of the most recently unlocked
// achievements, newest first. Unknown ids are skipped.
func RecentAchievements(p *profile.Profile, n int) []Achievement {
	var out []Achievement
	for i := len(p.UnlockedAchievements) - 1; i >= 0 && len(out) < n; i-- {
		if a, ok := FindAchievement(p.UnlockedAchievements[i]); ok {
			out = append(out, a)
		}
	}
	return out
}
