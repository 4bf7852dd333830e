package leaderboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/agusx1211/promptarena/internal/profile"
	"github.com/agusx1211/promptarena/internal/storage"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func player(t *testing.T, name string, xp int) *profile.Profile {
	t.Helper()
	p, err := profile.New(name, "robot", "", "Team", t0)
	if err != nil {
		t.Fatalf("profile.New(%q): %v", name, err)
	}
	p.XP = xp
	return p
}

func TestKeyFoldsCaseAndNormalization(t *testing.T) {
	// Precomposed "É" vs. "e" followed by a combining acute.
	decomposed, precomposed := "  Cafe\u0301 ", "CAF\u00c9"
	if Key(decomposed) != Key(precomposed) {
		t.Fatalf("Key mismatch: %q vs %q", Key(decomposed), Key(precomposed))
	}
	if Key("alice") == Key("alicia") {
		t.Fatal("distinct names collided")
	}
}

func TestSyncUpsertsAndRanks(t *testing.T) {
	var b Board
	b.Sync(player(t, "alice", 100), t0)
	b.Sync(player(t, "bob", 300), t0)
	b.Sync(player(t, "carol", 100), t0)

	if got := names(b.Entries); !equal(got, []string{"bob", "alice", "carol"}) {
		t.Fatalf("order = %v", got)
	}

	b.Sync(player(t, "ALICE", 500), t0.Add(time.Minute))
	if len(b.Entries) != 3 {
		t.Fatalf("entries = %d, want 3 after upsert", len(b.Entries))
	}
	if b.Entries[0].Username != "ALICE" || b.Entries[0].XP != 500 {
		t.Fatalf("top = %+v", b.Entries[0])
	}
	if r := b.Rank("carol"); r != 3 {
		t.Fatalf("Rank(carol) = %d", r)
	}
	if r := b.Rank("nobody"); r != 0 {
		t.Fatalf("Rank(nobody) = %d", r)
	}
	if _, ok := b.Find("Alice"); !ok {
		t.Fatal("Find(Alice) missed")
	}
	if top := b.Top(2); len(top) != 2 || top[1].Username != "bob" {
		t.Fatalf("Top(2) = %v", names(top))
	}
}

func TestMergeKeepsNewest(t *testing.T) {
	a := Board{Entries: []Entry{
		{Username: "alice", XP: 100, LastUpdated: t0},
		{Username: "bob", XP: 50, LastUpdated: t0.Add(time.Hour)},
	}}
	b := Board{Entries: []Entry{
		{Username: "Alice", XP: 200, LastUpdated: t0.Add(time.Minute)},
		{Username: "bob", XP: 999, LastUpdated: t0},
		{Username: "dave", XP: 10, LastUpdated: t0},
	}}
	m := Merge(a, b)
	if len(m.Entries) != 3 {
		t.Fatalf("entries = %v", names(m.Entries))
	}
	al, _ := m.Find("alice")
	if al.XP != 200 {
		t.Fatalf("alice xp = %d, want newer 200", al.XP)
	}
	bo, _ := m.Find("bob")
	if bo.XP != 50 {
		t.Fatalf("bob xp = %d, want newer 50", bo.XP)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared", "board.json")
	empty, err := LoadFile(path)
	if err != nil || len(empty.Entries) != 0 {
		t.Fatalf("LoadFile(missing) = %+v, %v", empty, err)
	}
	var b Board
	b.Sync(player(t, "alice", 10), t0)
	if err := SaveFile(path, b); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Username != "alice" || !got.Entries[0].LastUpdated.Equal(t0) {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeAcceptsBareArray(t *testing.T) {
	b, err := Decode([]byte(`[{"username":"a","xp":1},{"username":"b","xp":5}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b.Entries[0].Username != "b" {
		t.Fatalf("order = %v", names(b.Entries))
	}
}

func TestExportFileName(t *testing.T) {
	if got := ExportFileName("Team Rocket!", t0); got != "team-rocket_leaderboard_1772366400000.json" {
		t.Fatalf("got %q", got)
	}
	if got := ExportFileName("!!!", t0); got != "promptarena_leaderboard_1772366400000.json" {
		t.Fatalf("got %q", got)
	}
}

func TestLocalSnapshot(t *testing.T) {
	kv := storage.Open(storage.NewMemoryBackend())
	if b := Load(kv); len(b.Entries) != 0 {
		t.Fatalf("fresh store board = %+v", b)
	}
	var b Board
	b.Sync(player(t, "alice", 10), t0)
	if err := Save(kv, b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := Load(kv); len(got.Entries) != 1 {
		t.Fatalf("Load = %+v", got)
	}
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestRemotePushMergesWithExisting(t *testing.T) {
	bucket := &fakeBucket{}
	r := NewRemote(bucket, "arena", "board.json")
	ctx := context.Background()

	got, err := r.Pull(ctx)
	if err != nil || len(got.Entries) != 0 {
		t.Fatalf("Pull(empty) = %+v, %v", got, err)
	}

	var first Board
	first.Sync(player(t, "alice", 10), t0)
	if _, err := r.Push(ctx, first); err != nil {
		t.Fatalf("Push: %v", err)
	}
	var second Board
	second.Sync(player(t, "bob", 20), t0)
	merged, err := r.Push(ctx, second)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if !equal(names(merged.Entries), []string{"bob", "alice"}) {
		t.Fatalf("merged = %v", names(merged.Entries))
	}
	pulled, err := r.Pull(ctx)
	if err != nil || len(pulled.Entries) != 2 {
		t.Fatalf("Pull = %+v, %v", pulled, err)
	}
}

func TestRemotePullError(t *testing.T) {
	r := NewRemote(&fakeBucket{getErr: errors.New("denied")}, "arena", "board.json")
	if _, err := r.Pull(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type stubPuller struct {
	board Board
	err   error
}

func (s stubPuller) Pull(context.Context) (Board, error) { return s.board, s.err }

func TestRefresherRefresh(t *testing.T) {
	want := Board{Entries: []Entry{{Username: "alice", XP: 1}}}
	var updates int
	r, err := NewRefresher(stubPuller{board: want}, time.Hour, func(Board) { updates++ })
	if err != nil {
		t.Fatalf("NewRefresher: %v", err)
	}
	defer r.Stop()

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	got, at, lastErr := r.Board()
	if lastErr != nil || at.IsZero() || len(got.Entries) != 1 || updates != 1 {
		t.Fatalf("Board() = %+v, %v, %v (updates %d)", got, at, lastErr, updates)
	}

	r.src = stubPuller{err: errors.New("offline")}
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	got, _, lastErr = r.Board()
	if lastErr == nil || len(got.Entries) != 1 {
		t.Fatalf("failed refresh should keep last board: %+v, %v", got, lastErr)
	}
}

func names(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Username
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
