package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestCurrentUsesOverrides(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, CommitHash, BuildDate
	defer func() {
		Version, CommitHash, BuildDate = oldVersion, oldCommit, oldDate
	}()

	Version = "v0.3.0"
	CommitHash = "abc1234"
	BuildDate = "2026-02-12T10:11:12Z"

	info := Current()
	if info.Version != "v0.3.0" {
		t.Fatalf("version = %q, want %q", info.Version, "v0.3.0")
	}
	if info.BuildDate != "2026-02-12 10:11:12 UTC" {
		t.Fatalf("build date = %q, want %q", info.BuildDate, "2026-02-12 10:11:12 UTC")
	}
	if got, want := info.String(), "v0.3.0 (abc1234, 2026-02-12 10:11:12 UTC)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestFromVCSShortensAndMarksDirty(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	}
	commit, date := fromVCS(settings, "", "")
	if commit != "0123456789ab-dirty" {
		t.Fatalf("commit = %q, want %q", commit, "0123456789ab-dirty")
	}
	if date != "2026-01-02T03:04:05Z" {
		t.Fatalf("date = %q, want vcs time", date)
	}
}

func TestCurrentPopulatesUnknowns(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, CommitHash, BuildDate
	defer func() {
		Version, CommitHash, BuildDate = oldVersion, oldCommit, oldDate
	}()
	Version, CommitHash, BuildDate = "", "", ""

	info := Current()
	if strings.TrimSpace(info.Version) == "" || info.CommitHash == "" || info.BuildDate == "" {
		t.Fatalf("Current() = %+v, want every field populated", info)
	}
}
