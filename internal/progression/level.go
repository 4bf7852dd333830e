// Package progression turns round scores into XP, levels, achievements and
// power-up grants.
package progression

import "math"

// LevelMultiplier scales the last table requirement for levels past the
// table. Changing it shifts every persisted profile's level display.
const LevelMultiplier = 1.5

// Level is one row of the static level table.
type Level struct {
	Level      int    `json:"level"`
	Name       string `json:"name"`
	XPRequired int    `json:"xpRequired"`
}

// Levels is the level table. Levels and XP requirements strictly increase
// and the first entry requires 0 XP.
var Levels = []Level{
	{Level: 1, Name: "Prompt Apprentice", XPRequired: 0},
	{Level: 2, Name: "Prompt Practitioner", XPRequired: 100},
	{Level: 3, Name: "Prompt Specialist", XPRequired: 250},
	{Level: 4, Name: "Prompt Master", XPRequired: 500},
	{Level: 5, Name: "Prompt Engineering Expert", XPRequired: 1000},
}

// LevelInfo is a table entry plus progress toward the next one.
type LevelInfo struct {
	Level          int     `json:"level"`
	Name           string  `json:"name"`
	XPRequired     int     `json:"xpRequired"`
	XPToNext       int     `json:"xpToNext"`
	XPForNextLevel int     `json:"xpForNextLevel"`
	Progress       float64 `json:"progress"` // 0..1, 1 past the last entry
}

// LevelForXP returns the highest entry whose requirement xp meets. Past the
// last entry the next threshold is the current requirement doubled and
// progress is pinned at 1.
func LevelForXP(xp int) LevelInfo {
	for i := len(Levels) - 1; i >= 0; i-- {
		cur := Levels[i]
		if xp < cur.XPRequired {
			continue
		}
		if i+1 < len(Levels) {
			next := Levels[i+1].XPRequired
			return LevelInfo{
				Level:          cur.Level,
				Name:           cur.Name,
				XPRequired:     cur.XPRequired,
				XPToNext:       next - xp,
				XPForNextLevel: next,
				Progress:       float64(xp-cur.XPRequired) / float64(next-cur.XPRequired),
			}
		}
		next := cur.XPRequired * 2
		return LevelInfo{
			Level:          cur.Level,
			Name:           cur.Name,
			XPRequired:     cur.XPRequired,
			XPToNext:       next - xp,
			XPForNextLevel: next,
			Progress:       1,
		}
	}
	return LevelInfo{
		Level:          Levels[0].Level,
		Name:           Levels[0].Name,
		XPRequired:     Levels[0].XPRequired,
		XPToNext:       Levels[1].XPRequired,
		XPForNextLevel: Levels[1].XPRequired,
	}
}

// XPForLevel returns the XP needed to reach level+1. Past the table it
// extrapolates geometrically from the last entry.
func XPForLevel(level int) int {
	for _, l := range Levels {
		if l.Level == level+1 {
			return l.XPRequired
		}
	}
	last := Levels[len(Levels)-1]
	return int(math.Floor(float64(last.XPRequired) * math.Pow(LevelMultiplier, float64(level-last.Level))))
}
