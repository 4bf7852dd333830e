package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveTextFlag_EmptyFilePathReturnsFlagValue(t *testing.T) {
	got, err := resolveTextFlag("inline value", "")
	if err != nil {
		t.Fatalf("resolveTextFlag() error = %v", err)
	}
	if got != "inline value" {
		t.Fatalf("resolveTextFlag() = %q, want %q", got, "inline value")
	}
}

func TestResolveTextFlag_FilePathReadsFileContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("from file\nline 2"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := resolveTextFlag("inline value", path)
	if err != nil {
		t.Fatalf("resolveTextFlag() error = %v", err)
	}
	if got != "from file\nline 2" {
		t.Fatalf("resolveTextFlag() = %q, want %q", got, "from file\nline 2")
	}
}

func TestResolveTextFlag_DashReadsStdin(t *testing.T) {
	origStdin := os.Stdin
	t.Cleanup(func() {
		os.Stdin = origStdin
	})

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
	})
	if _, err := w.WriteString("stdin content"); err != nil {
		t.Fatalf("writing stdin pipe: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing stdin write pipe: %v", err)
	}

	os.Stdin = r
	got, err := resolveTextFlag("inline value", "-")
	if err != nil {
		t.Fatalf("resolveTextFlag() error = %v", err)
	}
	if got != "stdin content" {
		t.Fatalf("resolveTextFlag() = %q, want %q", got, "stdin content")
	}
}

func TestResolveTextFlag_MissingFile(t *testing.T) {
	if _, err := resolveTextFlag("", filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("resolveTextFlag() error = nil, want error for missing file")
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a lon..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestStripAnsi(t *testing.T) {
	in := styleBoldGreen + "8.0/10" + colorReset
	if got := stripAnsi(in); got != "8.0/10" {
		t.Fatalf("stripAnsi() = %q, want %q", got, "8.0/10")
	}
	if got := visibleLen(colorGreen + "wörld" + colorReset); got != 5 {
		t.Fatalf("visibleLen() = %d, want 5", got)
	}
}

func TestScoreColor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{10, styleBoldGreen},
		{7, colorGreen},
		{6.9, colorYellow},
		{2, colorRed},
	}
	for _, tt := range tests {
		if got := scoreColor(tt.score); got != tt.want {
			t.Fatalf("scoreColor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestProgressBarClamps(t *testing.T) {
	for _, p := range []float64{-1, 0, 0.5, 1, 3} {
		if got := len(stripAnsi(progressBar(p, 10))); got != 10 {
			t.Fatalf("progressBar(%v) width = %d, want 10", p, got)
		}
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"short":           "****",
		"sk-abcdefgh1234": "****1234",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Fatalf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayHost(t *testing.T) {
	if got := displayHost("192.168.1.20"); got != "192.168.1.20" {
		t.Fatalf("displayHost() = %q", got)
	}
	if got := displayHost("0.0.0.0"); got == "0.0.0.0" || got == "" {
		t.Fatalf("displayHost(0.0.0.0) = %q, want a concrete address", got)
	}
}
