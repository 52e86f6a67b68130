package library

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cratescan/internal/logging"
	"cratescan/internal/services"
)

// Observation is one artist/album folder pair found on disk. AlbumNameRaw
// is empty when the artist folder contains no album subdirectories.
type Observation struct {
	ArtistNameRaw string
	AlbumNameRaw  string
	Path          string
}

// SkippedPath records an entry the scanner deliberately ignored.
type SkippedPath struct {
	Path   string
	Reason string
}

// Walk is the materialized result of scanning a library root.
type Walk struct {
	Root         string
	Observations []Observation
	Skipped      []SkippedPath
}

// Scanner reads a two-level artist/album directory tree.
type Scanner struct {
	exclude map[string]struct{}
	logger  *slog.Logger
}

// NewScanner builds a scanner that ignores the named directories at any
// level, in addition to hidden entries and symlinks.
func NewScanner(exclude []string, logger *slog.Logger) *Scanner {
	set := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		set[name] = struct{}{}
	}
	return &Scanner{
		exclude: set,
		logger:  logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks root and returns every artist/album observation. The walk is
// shallow and ordered: artist directories sorted by name, album
// subdirectories sorted within each artist. An unreadable root is the only
// fatal condition; unreadable artist directories are recorded as skipped.
func (s *Scanner) Scan(root string) (*Walk, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.Wrap(services.ErrFileSystem, "scanner", "scan",
			fmt.Sprintf("read library root %s", root), err)
	}

	walk := &Walk{Root: root}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if reason := s.skipReason(entry); reason != "" {
			if !entry.IsDir() && reason == "file" {
				// Stray files at the root (playlists, NFOs) are routine;
				// keep them out of the report noise.
				continue
			}
			walk.Skipped = append(walk.Skipped, SkippedPath{Path: path, Reason: reason})
			continue
		}
		s.scanArtist(walk, path, entry.Name())
	}

	s.logger.Debug("library walk complete",
		logging.String("root", root),
		logging.Int("observations", len(walk.Observations)),
		logging.Int("skipped", len(walk.Skipped)),
	)
	return walk, nil
}

func (s *Scanner) scanArtist(walk *Walk, artistPath, artistName string) {
	entries, err := os.ReadDir(artistPath)
	if err != nil {
		walk.Skipped = append(walk.Skipped, SkippedPath{Path: artistPath, Reason: "unreadable"})
		s.logger.Warn("skipping unreadable artist directory",
			logging.String("path", artistPath),
			logging.Error(err),
		)
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	albums := 0
	for _, entry := range entries {
		path := filepath.Join(artistPath, entry.Name())
		reason := s.skipReason(entry)
		switch reason {
		case "":
			walk.Observations = append(walk.Observations, Observation{
				ArtistNameRaw: artistName,
				AlbumNameRaw:  entry.Name(),
				Path:          path,
			})
			albums++
		case "file":
			// Cover art and tag sidecars live alongside album folders.
		default:
			walk.Skipped = append(walk.Skipped, SkippedPath{Path: path, Reason: reason})
		}
	}

	if albums == 0 {
		// An empty artist shell still names an artist worth resolving;
		// every catalog album will show as missing.
		walk.Observations = append(walk.Observations, Observation{
			ArtistNameRaw: artistName,
			Path:          artistPath,
		})
	}
}

func (s *Scanner) skipReason(entry os.DirEntry) string {
	name := entry.Name()
	if strings.HasPrefix(name, ".") {
		return "hidden"
	}
	if _, ok := s.exclude[name]; ok {
		return "excluded"
	}
	if entry.Type()&os.ModeSymlink != 0 {
		return "symlink"
	}
	if !entry.IsDir() {
		return "file"
	}
	return ""
}
