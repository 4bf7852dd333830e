// Package leaderboard keeps a ranked snapshot of player profiles. Boards are
// plain JSON so they can be exchanged through a shared file or an S3
// bucket; merges are last-writer-wins per player with no stronger
// consistency.
package leaderboard

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/agusx1211/promptarena/internal/profile"
)

// Entry is one player's public standing.
type Entry struct {
	Username      string    `json:"username"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	AvatarID      string    `json:"avatarId,omitempty"`
	TeamName      string    `json:"teamName"`
	Level         int       `json:"level"`
	XP            int       `json:"xp"`
	TotalBattles  int       `json:"totalBattles"`
	TotalWins     int       `json:"totalWins"`
	PerfectScores int       `json:"perfectScores"`
	BestScore     float64   `json:"bestScore"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Board is a ranked list of entries, at most one per player.
type Board struct {
	Entries []Entry `json:"entries"`
}

var folder = cases.Fold()

// Key is the identity used to match entries: trimmed, NFC-normalized and
// case-folded.
func Key(username string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(username)))
}

// EntryFor snapshots p.
func EntryFor(p *profile.Profile, now time.Time) Entry {
	return Entry{
		Username:      p.Username,
		AvatarURL:     p.AvatarURL,
		AvatarID:      p.AvatarID,
		TeamName:      p.TeamName,
		Level:         p.Level,
		XP:            p.XP,
		TotalBattles:  p.TotalBattles,
		TotalWins:     p.TotalWins,
		PerfectScores: p.PerfectScores,
		BestScore:     p.BestScore,
		LastUpdated:   now.UTC(),
	}
}

// Sync replaces or inserts p's entry and re-ranks the board.
func (b *Board) Sync(p *profile.Profile, now time.Time) {
	b.Upsert(EntryFor(p, now))
}

// Upsert replaces the entry with the same Key or appends e.
func (b *Board) Upsert(e Entry) {
	k := Key(e.Username)
	replaced := false
	for i := range b.Entries {
		if Key(b.Entries[i].Username) == k {
			b.Entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		b.Entries = append(b.Entries, e)
	}
	b.sort()
}

// Find returns the entry for username.
func (b *Board) Find(username string) (Entry, bool) {
	k := Key(username)
	for _, e := range b.Entries {
		if Key(e.Username) == k {
			return e, true
		}
	}
	return Entry{}, false
}

// Rank returns the 1-based position of username, or 0.
func (b *Board) Rank(username string) int {
	k := Key(username)
	for i, e := range b.Entries {
		if Key(e.Username) == k {
			return i + 1
		}
	}
	return 0
}

// Top returns up to n leading entries. n <= 0 returns all.
func (b *Board) Top(n int) []Entry {
	if n <= 0 || n > len(b.Entries) {
		n = len(b.Entries)
	}
	out := make([]Entry, n)
	copy(out, b.Entries[:n])
	return out
}

// Merge combines two boards keeping the most recently updated entry per
// player. Ties keep a's entry.
func Merge(a, b Board) Board {
	byKey := make(map[string]Entry, len(a.Entries)+len(b.Entries))
	for _, e := range a.Entries {
		if cur, ok := byKey[Key(e.Username)]; !ok || e.LastUpdated.After(cur.LastUpdated) {
			byKey[Key(e.Username)] = e
		}
	}
	for _, e := range b.Entries {
		if cur, ok := byKey[Key(e.Username)]; !ok || e.LastUpdated.After(cur.LastUpdated) {
			byKey[Key(e.Username)] = e
		}
	}
	out := Board{Entries: make([]Entry, 0, len(byKey))}
	for _, e := range byKey {
		out.Entries = append(out.Entries, e)
	}
	out.sort()
	return out
}

func (b *Board) sort() {
	sort.SliceStable(b.Entries, func(i, j int) bool {
		ei, ej := b.Entries[i], b.Entries[j]
		if ei.XP != ej.XP {
			return ei.XP > ej.XP
		}
		return Key(ei.Username) < Key(ej.Username)
	})
}
