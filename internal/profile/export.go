package profile

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// ExportVersion tags exported data files.
const ExportVersion = "1.0.0"

// ExportData is the document written by `promptarena export`.
type ExportData struct {
	Profile    *Profile  `json:"profile"`
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

// Export snapshots p for download.
func Export(p *Profile, now time.Time) ExportData {
	cp := *p
	return ExportData{Profile: &cp, ExportedAt: now.UTC(), Version: ExportVersion}
}

// ExportFileName returns "<slug>_battle_data_<unixms>.json".
func ExportFileName(username string, now time.Time) string {
	name := slug.Make(username)
	if name == "" {
		name = "player"
	}
	return fmt.Sprintf("%s_battle_data_%d.json", name, now.UnixMilli())
}
