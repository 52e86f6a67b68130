package reconcile

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReportVersion is the scan dump envelope version. Bump it whenever the
// JSON shape changes incompatibly.
const ReportVersion = 1

// Report is the complete outcome of one reconciliation run. It is the
// structure persisted as the scan dump and rendered by the CLI.
type Report struct {
	Version         int                `json:"version"`
	KeyRulesVersion int                `json:"key_rules_version"`
	ScanID          string             `json:"scan_id"`
	Root            string             `json:"root"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Artists         []ArtistReport     `json:"artists"`
	Unresolved      []UnresolvedArtist `json:"unresolved"`
	Skipped         []SkippedEntry     `json:"skipped"`
}

// ArtistReport compares one resolved artist's local folders against the
// catalog. Matched and ExtraLocal carry the raw folder names as seen on
// disk; Missing carries catalog titles.
type ArtistReport struct {
	ArtistID   int64          `json:"artist_id"`
	Name       string         `json:"name"`
	Matched    []string       `json:"matched"`
	Missing    []MissingAlbum `json:"missing"`
	ExtraLocal []string       `json:"extra_local"`
	Image      string         `json:"image"`
}

// MissingAlbum is a catalog album with no matching local folder.
type MissingAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// UnresolvedArtist is a local artist folder that could not be mapped to a
// catalog identity this run.
type UnresolvedArtist struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SkippedEntry is a filesystem path the scanner deliberately ignored.
type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// TotalMissing counts missing albums across all resolved artists.
func (r *Report) TotalMissing() int {
	total := 0
	for _, artist := range r.Artists {
		total += len(artist.Missing)
	}
	return total
}

// Complete reports whether every resolved artist's catalog is fully present
// locally and no artist was left unresolved.
func (r *Report) Complete() bool {
	return r.TotalMissing() == 0 && len(r.Unresolved) == 0
}

// Encode renders the report as the persisted scan dump.
func (r *Report) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode scan dump: %w", err)
	}
	return string(data), nil
}

// DecodeReport parses a persisted scan dump. Dumps written with a different
// envelope version are rejected rather than misread.
func DecodeReport(dump string) (*Report, error) {
	var report Report
	if err := json.Unmarshal([]byte(dump), &report); err != nil {
		return nil, fmt.Errorf("decode scan dump: %w", err)
	}
	if report.Version != ReportVersion {
		return nil, fmt.Errorf("decode scan dump: unsupported version %d", report.Version)
	}
	return &report, nil
}
