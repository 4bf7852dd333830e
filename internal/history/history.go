// Package history keeps the bounded, newest-first logs of battles and
// playground reviews.
package history

import (
	"time"

	"github.com/agusx1211/promptarena/internal/storage"
)

// Capacities.
const (
	MaxBattles = 50
	MaxReviews = 20
)

// BattleRecord is an immutable snapshot of one completed round.
type BattleRecord struct {
	ID                  string    `json:"id"`
	ScenarioID          string    `json:"scenarioId"`
	ScenarioTitle       string    `json:"scenarioTitle"`
	ScenarioDescription string    `json:"scenarioDescription"`
	ScenarioData        string    `json:"scenarioData"`
	ScenarioCriteria    []string  `json:"scenarioCriteria"`
	Prompt              string    `json:"prompt"`
	Score               float64   `json:"score"`
	XPEarned            int       `json:"xpEarned"`
	Date                time.Time `json:"date"`
	TimeTaken           int       `json:"timeTaken"` // seconds
}

// Review is one playground review. Score is nil when the reviewer gave none.
type Review struct {
	ID      string    `json:"id"`
	Prompt  string    `json:"prompt"`
	Context string    `json:"context,omitempty"`
	Score   *float64  `json:"score"`
	Date    time.Time `json:"date"`
}

// Append prepends r and keeps the newest MaxBattles entries. h is not
// modified.
func Append(h []BattleRecord, r BattleRecord) []BattleRecord {
	return prepend(h, r, MaxBattles)
}

// List returns the newest n entries.
func List(h []BattleRecord, n int) []BattleRecord {
	return head(h, n)
}

// AppendReview prepends r and keeps the newest MaxReviews entries.
func AppendReview(h []Review, r Review) []Review {
	return prepend(h, r, MaxReviews)
}

// ListReviews returns the newest n reviews.
func ListReviews(h []Review, n int) []Review {
	return head(h, n)
}

func prepend[T any](h []T, r T, limit int) []T {
	n := len(h) + 1
	if n > limit {
		n = limit
	}
	out := make([]T, 0, n)
	out = append(out, r)
	return append(out, h[:n-1]...)
}

func head[T any](h []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(h) {
		n = len(h)
	}
	return h[:n:n]
}

// Store persists both logs through the key-value store.
type Store struct {
	kv *storage.Store
}

// NewStore binds a Store to kv.
func NewStore(kv *storage.Store) *Store {
	return &Store{kv: kv}
}

// Battles returns the saved battle log, newest first.
func (s *Store) Battles() []BattleRecord {
	return storage.GetOr(s.kv, storage.KeyHistory, []BattleRecord{})
}

// AddBattle appends r to the saved log and returns the new log. The returned
// log is valid even when saving fails.
func (s *Store) AddBattle(r BattleRecord) ([]BattleRecord, error) {
	h := Append(s.Battles(), r)
	return h, s.kv.Set(storage.KeyHistory, h)
}

// Reviews returns the saved playground log, newest first.
func (s *Store) Reviews() []Review {
	return storage.GetOr(s.kv, storage.KeyPlaygroundHistory, []Review{})
}

// AddReview appends r to the saved playground log.
func (s *Store) AddReview(r Review) ([]Review, error) {
	h := AppendReview(s.Reviews(), r)
	return h, s.kv.Set(storage.KeyPlaygroundHistory, h)
}
