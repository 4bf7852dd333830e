// Package storage is the key-value persistence layer. Values are JSON blobs
// keyed by fixed string constants. When the backend fails its availability
// probe every operation degrades to a no-op that reports ErrUnavailable, and
// callers keep their state in memory for the session.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/agusx1211/promptarena/internal/debug"
)

var (
	// ErrUnavailable is returned by every operation when the backend failed
	// its probe.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("key not found")
)

// Fixed keys. The values match the keys of the browser version of the game so
// exported blobs stay interchangeable.
const (
	KeyProfile           = "promptBattle_profile"
	KeyStats             = "promptBattle_stats"
	KeyAchievements      = "promptBattle_achievements"
	KeyHistory           = "promptBattle_history"
	KeyLeaderboard       = "promptBattle_leaderboard"
	KeySettings          = "promptBattle_settings"
	KeyPlaygroundHistory = "promptBattle_playground_history"
	probeKey             = "__storage_probe__"
)

// Backend stores raw bytes by key.
type Backend interface {
	Read(key string) ([]byte, error) // ErrNotFound when missing
	Write(key string, data []byte) error
	Delete(key string) error
	List() ([]string, error)
	Clear() error
}

// Store wraps a Backend with JSON encoding and availability degradation.
type Store struct {
	backend   Backend
	available bool
}

// Open probes b with a write/read/delete cycle. A failing probe yields a
// Store that is unavailable rather than an error.
func Open(b Backend) *Store {
	s := &Store{backend: b}
	if b == nil {
		return s
	}
	if err := probe(b); err != nil {
		debug.LogKV("storage", "backend unavailable", "error", err)
		return s
	}
	s.available = true
	return s
}

func probe(b Backend) error {
	if err := b.Write(probeKey, []byte(`"ok"`)); err != nil {
		return err
	}
	if _, err := b.Read(probeKey); err != nil {
		return err
	}
	return b.Delete(probeKey)
}

// Available reports whether the backend passed its probe.
func (s *Store) Available() bool {
	return s != nil && s.available
}

// Get decodes the value stored at key into v.
func (s *Store) Get(key string, v any) error {
	if !s.Available() {
		return ErrUnavailable
	}
	data, err := s.backend.Read(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// GetOr returns the value at key, or def when the key is missing, the store
// is unavailable or the blob does not decode.
func GetOr[T any](s *Store, key string, def T) T {
	var v T
	if err := s.Get(key, &v); err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrUnavailable) {
			debug.LogKV("storage", "get failed, using default", "key", key, "error", err)
		}
		return def
	}
	return v
}

// Set encodes v as JSON and stores it at key.
func (s *Store) Set(key string, v any) error {
	if !s.Available() {
		return ErrUnavailable
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.backend.Write(key, data); err != nil {
		debug.LogKV("storage", "set failed", "key", key, "error", err)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if !s.Available() {
		return ErrUnavailable
	}
	if err := s.backend.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key holds a value.
func (s *Store) Exists(key string) bool {
	if !s.Available() {
		return false
	}
	_, err := s.backend.Read(key)
	return err == nil
}

// Clear removes every key.
func (s *Store) Clear() error {
	if !s.Available() {
		return ErrUnavailable
	}
	return s.backend.Clear()
}

// Keys returns stored keys in sorted order.
func (s *Store) Keys() []string {
	if !s.Available() {
		return nil
	}
	keys, err := s.backend.List()
	if err != nil {
		debug.LogKV("storage", "list failed", "error", err)
		return nil
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of stored keys.
func (s *Store) Size() int {
	return len(s.Keys())
}
