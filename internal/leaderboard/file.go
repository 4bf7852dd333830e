package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"

	"github.com/agusx1211/promptarena/internal/storage"
)

// Decode parses a board, accepting either the {"entries": [...]} form or a
// bare array of entries.
func Decode(data []byte) (Board, error) {
	var b Board
	if err := json.Unmarshal(data, &b); err == nil {
		b.sort()
		return b, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return Board{}, fmt.Errorf("parsing leaderboard: %w", err)
	}
	b = Board{Entries: entries}
	b.sort()
	return b, nil
}

// Encode renders b as indented JSON.
func Encode(b Board) ([]byte, error) {
	if b.Entries == nil {
		b.Entries = []Entry{}
	}
	return json.MarshalIndent(b, "", "  ")
}

// LoadFile reads a shared board. A missing file is an empty board.
func LoadFile(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Board{}, nil
		}
		return Board{}, fmt.Errorf("reading leaderboard: %w", err)
	}
	return Decode(data)
}

// SaveFile writes b atomically to path.
func SaveFile(path string, b Board) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating leaderboard dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing leaderboard: %w", err)
	}
	return os.Rename(tmp, path)
}

// ExportFileName names an exported board, e.g. "team-rocket_leaderboard_<ms>.json".
func ExportFileName(label string, now time.Time) string {
	s := slug.Make(label)
	if s == "" {
		s = "promptarena"
	}
	return fmt.Sprintf("%s_leaderboard_%d.json", s, now.UnixMilli())
}

// Load reads the local snapshot from kv. An unavailable store yields an
// empty board.
func Load(kv *storage.Store) Board {
	return storage.GetOr(kv, storage.KeyLeaderboard, Board{})
}

// Save persists the local snapshot.
func Save(kv *storage.Store, b Board) error {
	return kv.Set(storage.KeyLeaderboard, b)
}
