// Package buildinfo exposes version metadata for `promptarena version` and
// the web server's /api/version endpoint.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Linker-overridable build metadata.
var (
	Version    = "dev"
	CommitHash = ""
	BuildDate  = ""
)

// Info is normalized build metadata for display.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit"`
	BuildDate  string `json:"buildDate"`
}

// String renders info on one line, e.g. "v0.3.0 (abc1234, 2026-02-12 10:11:12 UTC)".
func (i Info) String() string {
	return fmt.Sprintf("%s (%s, %s)", i.Version, i.CommitHash, i.BuildDate)
}

// Current returns linker overrides, falling back to the module's embedded
// VCS settings.
func Current() Info {
	info := Info{
		Version:    strings.TrimSpace(Version),
		CommitHash: strings.TrimSpace(CommitHash),
		BuildDate:  strings.TrimSpace(BuildDate),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if (info.Version == "" || info.Version == "dev") && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		info.CommitHash, info.BuildDate = fromVCS(bi.Settings, info.CommitHash, info.BuildDate)
	}

	if parsed, err := time.Parse(time.RFC3339, info.BuildDate); err == nil {
		info.BuildDate = parsed.UTC().Format("2006-01-02 15:04:05 UTC")
	}
	info.Version = orUnknown(info.Version)
	info.CommitHash = orUnknown(info.CommitHash)
	info.BuildDate = orUnknown(info.BuildDate)
	return info
}

func fromVCS(settings []debug.BuildSetting, commit, date string) (string, string) {
	var revision, vcsTime string
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = strings.TrimSpace(s.Value)
		case "vcs.time":
			vcsTime = strings.TrimSpace(s.Value)
		case "vcs.modified":
			dirty = strings.EqualFold(strings.TrimSpace(s.Value), "true")
		}
	}
	if commit == "" && revision != "" {
		commit = revision
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if dirty {
			commit += "-dirty"
		}
	}
	if date == "" {
		date = vcsTime
	}
	return commit, date
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
