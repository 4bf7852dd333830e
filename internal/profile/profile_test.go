package profile

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agusx1211/promptarena/internal/storage"
)

var createdAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestNewStartsAtLevelOne(t *testing.T) {
	p, err := New("  ada  ", "robot", "", "Night Owls", createdAt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Username != "ada" {
		t.Fatalf("Username = %q, want trimmed %q", p.Username, "ada")
	}
	if p.Level != 1 || p.XP != 0 || p.TotalBattles != 0 {
		t.Fatalf("new profile = %+v, want level 1 with zero counters", p)
	}
	if p.UnlockedAchievements == nil || p.PowerUps == nil {
		t.Fatal("new profile has nil achievements or power-ups")
	}
}

func TestNewValidatesFields(t *testing.T) {
	if _, err := New("   ", "robot", "", "", createdAt); err == nil {
		t.Fatal("New(blank username) error = nil")
	}
	if _, err := New(strings.Repeat("x", 21), "robot", "", "", createdAt); err == nil {
		t.Fatal("New(21-char username) error = nil")
	}
	if _, err := New("ada", "robot", "", strings.Repeat("t", 21), createdAt); err == nil {
		t.Fatal("New(21-char team) error = nil")
	}
	if _, err := New("ada", "robot", "", strings.Repeat("é", 20), createdAt); err != nil {
		t.Fatalf("New(20-rune team) error = %v, want nil", err)
	}
}

func TestEditChangesOnlyAvatarAndTeam(t *testing.T) {
	p, _ := New("ada", "robot", "", "A", createdAt)
	p.XP = 120

	if err := p.Edit(EditRequest{AvatarID: strPtr("wizard"), TeamName: strPtr("B")}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if p.AvatarID != "wizard" || p.TeamName != "B" || p.XP != 120 || p.Username != "ada" {
		t.Fatalf("after Edit = %+v", p)
	}

	err := p.Edit(EditRequest{TeamName: strPtr(strings.Repeat("z", 25))})
	if err == nil {
		t.Fatal("Edit(long team) error = nil")
	}
	if p.TeamName != "B" {
		t.Fatalf("failed Edit mutated TeamName to %q", p.TeamName)
	}
}

func TestJSONUsesCamelCaseKeys(t *testing.T) {
	p, _ := New("ada", "robot", "https://x/a.png", "A", createdAt)
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, key := range []string{`"avatarId"`, `"teamName"`, `"totalBattles"`, `"unlockedAchievements"`, `"powerUps"`, `"createdAt"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("json %s missing %s", data, key)
		}
	}
}

func TestExportFileName(t *testing.T) {
	at := time.UnixMilli(1718000000000)
	if got := ExportFileName("Ada Lovelace!", at); got != "ada-lovelace_battle_data_1718000000000.json" {
		t.Fatalf("ExportFileName = %q", got)
	}
	if got := ExportFileName("!!!", at); got != "player_battle_data_1718000000000.json" {
		t.Fatalf("ExportFileName(symbols) = %q", got)
	}

	p, _ := New("ada", "robot", "", "", createdAt)
	doc := Export(p, at)
	if doc.Version != "1.0.0" || doc.Profile.Username != "ada" {
		t.Fatalf("Export = %+v", doc)
	}
	doc.Profile.XP = 999
	if p.XP != 0 {
		t.Fatal("Export shares the profile instead of copying it")
	}
}

func TestStoreLoadSave(t *testing.T) {
	s := NewStore(storage.Open(storage.NewMemoryBackend()))
	if _, err := s.Load(); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("Load before save err = %v, want ErrNoProfile", err)
	}

	p, _ := New("ada", "robot", "", "", createdAt)
	p.XP = 260
	p.Level = 3
	if err := s.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.XP != 260 || got.Level != 3 || !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("Load = %+v", got)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("Load after reset err = %v, want ErrNoProfile", err)
	}
}

func TestLoadRepairsLegacyBlob(t *testing.T) {
	kv := storage.Open(storage.NewMemoryBackend())
	legacy := map[string]any{"username": "old", "level": 0, "currentStreak": 4, "longestStreak": 2}
	if err := kv.Set(storage.KeyProfile, legacy); err != nil {
		t.Fatalf("Set: %v", err)
	}
	p, err := NewStore(kv).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Level != 1 || p.LongestStreak != 4 || p.PowerUps == nil || p.UnlockedAchievements == nil {
		t.Fatalf("normalized = %+v", p)
	}
}
