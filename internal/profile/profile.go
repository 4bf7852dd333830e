// Package profile holds the player record and its persistence.
package profile

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits.
const (
	MaxUsernameLength = 20
	MaxTeamNameLength = 20
)

// Profile is the single mutable player record. Level is always derived from
// XP through the level table; progression.ApplyRoundResult keeps it in sync.
type Profile struct {
	Username             string         `json:"username"`
	AvatarID             string         `json:"avatarId"`
	AvatarURL            string         `json:"avatarUrl,omitempty"`
	TeamName             string         `json:"teamName"`
	Level                int            `json:"level"`
	XP                   int            `json:"xp"`
	TotalBattles         int            `json:"totalBattles"`
	TotalWins            int            `json:"totalWins"`
	PerfectScores        int            `json:"perfectScores"`
	BestScore            float64        `json:"bestScore"`
	CurrentStreak        int            `json:"currentStreak"`
	LongestStreak        int            `json:"longestStreak"`
	UnlockedAchievements []string       `json:"unlockedAchievements"`
	PowerUps             map[string]int `json:"powerUps"`
	CreatedAt            time.Time      `json:"createdAt"`
}

// New creates a level 1 profile with zeroed counters.
func New(username, avatarID, avatarURL, teamName string, now time.Time) (*Profile, error) {
	p := &Profile{
		Username:             strings.TrimSpace(username),
		AvatarID:             strings.TrimSpace(avatarID),
		AvatarURL:            strings.TrimSpace(avatarURL),
		TeamName:             strings.TrimSpace(teamName),
		Level:                1,
		UnlockedAchievements: []string{},
		PowerUps:             map[string]int{},
		CreatedAt:            now.UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the user-editable fields and counter invariants.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	n := utf8.RuneCountInString(p.Username)
	if n == 0 {
		return fmt.Errorf("username is required")
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if utf8.RuneCountInString(p.TeamName) > MaxTeamNameLength {
		return fmt.Errorf("team name must be at most %d characters", MaxTeamNameLength)
	}
	if p.XP < 0 || p.TotalBattles < 0 || p.TotalWins < 0 || p.PerfectScores < 0 {
		return fmt.Errorf("profile counters must be non-negative")
	}
	if p.LongestStreak < p.CurrentStreak {
		return fmt.Errorf("longest streak %d below current streak %d", p.LongestStreak, p.CurrentStreak)
	}
	return nil
}

// EditRequest carries the fields a player may change after onboarding.
// Nil fields are left untouched.
type EditRequest struct {
	AvatarID  *string `json:"avatarId,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	TeamName  *string `json:"teamName,omitempty"`
}

// Edit applies req. Username, XP and counters are not editable.
func (p *Profile) Edit(req EditRequest) error {
	next := *p
	if req.AvatarID != nil {
		next.AvatarID = strings.TrimSpace(*req.AvatarID)
	}
	if req.AvatarURL != nil {
		next.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.TeamName != nil {
		next.TeamName = strings.TrimSpace(*req.TeamName)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

// WinRate returns wins/battles in [0,1], or 0 before the first battle.
func (p *Profile) WinRate() float64 {
	if p.TotalBattles == 0 {
		return 0
	}
	return float64(p.TotalWins) / float64(p.TotalBattles)
}

// HasAchievement reports whether id is unlocked.
func (p *Profile) HasAchievement(id string) bool {
	for _, a := range p.UnlockedAchievements {
		if a == id {
			return true
		}
	}
	return false
}

// normalize repairs blobs written by older versions.
func (p *Profile) normalize() {
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = []string{}
	}
	if p.PowerUps == nil {
		p.PowerUps = map[string]int{}
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.LongestStreak < p.CurrentStreak {
		p.LongestStreak = p.CurrentStreak
	}
}
