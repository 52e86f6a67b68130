package reconcile

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cratescan/internal/artwork"
	"cratescan/internal/catalog"
	"cratescan/internal/config"
	"cratescan/internal/library"
	"cratescan/internal/logging"
	"cratescan/internal/namekey"
	"cratescan/internal/resolve"
	"cratescan/internal/services"
)

// Resolver maps an artist key to a catalog identity.
type Resolver interface {
	Resolve(ctx context.Context, key, rawName string) (resolve.Resolution, error)
}

// ImageFetcher ensures an artist folder carries its image.
type ImageFetcher interface {
	EnsureArtistImage(ctx context.Context, artist *catalog.Artist, dir string) artwork.Status
}

// Auditor persists completed scans.
type Auditor interface {
	RecordScan(ctx context.Context, folderPath, scanDump string) (int64, error)
}

// Engine drives one reconciliation run: walk the library, resolve every
// artist, diff local folders against the catalog, and persist the result.
type Engine struct {
	cfg      *config.Config
	scanner  *library.Scanner
	resolver Resolver
	fetcher  ImageFetcher
	auditor  Auditor
	logger   *slog.Logger
}

// New assembles an engine. fetcher may be nil to disable image downloads
// regardless of configuration.
func New(cfg *config.Config, scanner *library.Scanner, resolver Resolver, fetcher ImageFetcher, auditor Auditor, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		scanner:  scanner,
		resolver: resolver,
		fetcher:  fetcher,
		auditor:  auditor,
		logger:   logging.NewComponentLogger(logger, "reconcile"),
	}
}

// artistGroup collects every observation for one normalized artist key.
type artistGroup struct {
	key     string
	rawName string
	path    string
	albums  []localAlbum
}

type localAlbum struct {
	rawName string
	key     string
}

// Run executes a full scan. The returned error is non-nil only for fatal
// conditions: an unreadable library root, a store failure, or cancellation.
// A report is produced even when some artists stay unresolved.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	scanID := uuid.NewString()
	ctx = services.WithScanID(ctx, scanID)
	logger := logging.WithContext(ctx, e.logger)

	started := time.Now()
	logger.Info("scan started", logging.String("root", e.cfg.Paths.LibraryDir))

	walk, err := e.scanner.Scan(e.cfg.Paths.LibraryDir)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Version:         ReportVersion,
		KeyRulesVersion: namekey.Version,
		ScanID:          scanID,
		Root:            walk.Root,
		GeneratedAt:     started.UTC(),
	}
	for _, skipped := range walk.Skipped {
		report.Skipped = append(report.Skipped, SkippedEntry(skipped))
	}

	groups, unresolvable := groupObservations(walk.Observations)
	report.Unresolved = append(report.Unresolved, unresolvable...)

	artists, unresolved, err := e.resolveGroups(ctx, logger, groups)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, services.Wrap(services.ErrTransient, "reconcile", "run", "scan cancelled", ctxErr)
		}
		return nil, err
	}
	report.Artists = artists
	report.Unresolved = append(report.Unresolved, unresolved...)

	sort.Slice(report.Artists, func(i, j int) bool {
		return strings.ToLower(report.Artists[i].Name) < strings.ToLower(report.Artists[j].Name)
	})
	sort.Slice(report.Unresolved, func(i, j int) bool {
		return report.Unresolved[i].Name < report.Unresolved[j].Name
	})

	// A cancelled run leaves no audit trail; partial results must never
	// look like a completed scan.
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "reconcile", "run", "scan cancelled", err)
	}

	dump, err := report.Encode()
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "reconcile", "run", "encode scan dump", err)
	}
	if _, err := e.auditor.RecordScan(ctx, walk.Root, dump); err != nil {
		return nil, err
	}

	logger.Info("scan complete",
		logging.Int("artists", len(report.Artists)),
		logging.Int("unresolved", len(report.Unresolved)),
		logging.Int("missing_albums", report.TotalMissing()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

// groupObservations folds the walk into one group per artist key. Folder
// names that normalize to nothing can never be resolved and go straight to
// the unresolved list.
func groupObservations(observations []library.Observation) ([]*artistGroup, []UnresolvedArtist) {
	byKey := make(map[string]*artistGroup)
	var order []string
	var unresolvable []UnresolvedArtist
	seen := make(map[string]struct{})

	for _, obs := range observations {
		key := namekey.Normalize(obs.ArtistNameRaw)
		if key == "" {
			if _, ok := seen[obs.ArtistNameRaw]; !ok {
				seen[obs.ArtistNameRaw] = struct{}{}
				unresolvable = append(unresolvable, UnresolvedArtist{
					Name:   obs.ArtistNameRaw,
					Reason: "unresolvable",
				})
			}
			continue
		}

		group, ok := byKey[key]
		if !ok {
			path := obs.Path
			if obs.AlbumNameRaw != "" {
				path = filepath.Dir(obs.Path)
			}
			group = &artistGroup{key: key, rawName: obs.ArtistNameRaw, path: path}
			byKey[key] = group
			order = append(order, key)
		}
		if obs.AlbumNameRaw != "" {
			group.albums = append(group.albums, localAlbum{
				rawName: obs.AlbumNameRaw,
				key:     namekey.Normalize(obs.AlbumNameRaw),
			})
		}
	}

	groups := make([]*artistGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, byKey[key])
	}
	return groups, unresolvable
}

type groupOutcome struct {
	artist     *ArtistReport
	unresolved *UnresolvedArtist
	err        error
}

// resolveGroups fans the groups out to a bounded worker pool. Store errors
// from any worker abort the run; provider problems only mark individual
// artists unresolved.
func (e *Engine) resolveGroups(ctx context.Context, logger *slog.Logger, groups []*artistGroup) ([]ArtistReport, []UnresolvedArtist, error) {
	workers := e.cfg.Scan.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(groups) {
		workers = len(groups)
	}

	jobs := make(chan *artistGroup)
	outcomes := make(chan groupOutcome, len(groups))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				outcomes <- e.processGroup(ctx, logger, group)
			}
		}()
	}

	for _, group := range groups {
		select {
		case jobs <- group:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	var artists []ArtistReport
	var unresolved []UnresolvedArtist
	var fatal error
	for outcome := range outcomes {
		switch {
		case outcome.err != nil:
			if fatal == nil {
				fatal = outcome.err
			}
		case outcome.artist != nil:
			artists = append(artists, *outcome.artist)
		case outcome.unresolved != nil:
			unresolved = append(unresolved, *outcome.unresolved)
		}
	}
	if fatal != nil {
		return nil, nil, fatal
	}
	return artists, unresolved, nil
}

func (e *Engine) processGroup(ctx context.Context, logger *slog.Logger, group *artistGroup) groupOutcome {
	if err := ctx.Err(); err != nil {
		return groupOutcome{err: services.Wrap(services.ErrTransient, "reconcile", "run", "scan cancelled", err)}
	}
	ctx = services.WithArtist(ctx, group.rawName)
	logger = logger.With(logging.String(logging.FieldArtist, group.rawName))

	res, err := e.resolver.Resolve(ctx, group.key, group.rawName)
	if err != nil {
		return groupOutcome{err: err}
	}
	if !res.Resolved() {
		return groupOutcome{unresolved: &UnresolvedArtist{
			Name:   group.rawName,
			Reason: string(res.Reason),
		}}
	}

	artist := e.diffArtist(group, res)

	if e.fetcher != nil && e.cfg.Artwork.Enabled {
		artist.Image = string(e.fetcher.EnsureArtistImage(ctx, res.Artist, group.path))
	} else {
		artist.Image = string(artwork.StatusSkipped)
	}

	logger.Debug("artist reconciled",
		logging.Int64("artist_id", artist.ArtistID),
		logging.Int("matched", len(artist.Matched)),
		logging.Int("missing", len(artist.Missing)),
		logging.Int("extra_local", len(artist.ExtraLocal)),
	)
	return groupOutcome{artist: artist}
}

// diffArtist compares the local album folders against the catalog. Matching
// is permissive through normalized keys; the record-type filter narrows
// which catalog entries count toward the missing set.
func (e *Engine) diffArtist(group *artistGroup, res resolve.Resolution) *ArtistReport {
	wanted := make(map[string]struct{}, len(e.cfg.Scan.RecordTypes))
	for _, recordType := range e.cfg.Scan.RecordTypes {
		wanted[strings.ToLower(recordType)] = struct{}{}
	}

	catalogKeys := make(map[string]struct{}, len(res.Albums))
	for _, album := range res.Albums {
		if album.TitleKey != "" {
			catalogKeys[album.TitleKey] = struct{}{}
		}
	}

	localKeys := make(map[string]struct{}, len(group.albums))
	report := &ArtistReport{
		ArtistID: res.Artist.ID,
		Name:     res.Artist.Name,
	}
	for _, local := range group.albums {
		// The empty key never matches anything: a punctuation-only folder
		// name is unverifiable, not a wildcard.
		if local.key != "" {
			localKeys[local.key] = struct{}{}
		}
		if _, ok := catalogKeys[local.key]; ok {
			report.Matched = append(report.Matched, local.rawName)
		} else {
			report.ExtraLocal = append(report.ExtraLocal, local.rawName)
		}
	}

	for _, album := range res.Albums {
		if _, ok := wanted[album.RecordType]; !ok {
			continue
		}
		if _, ok := localKeys[album.TitleKey]; ok && album.TitleKey != "" {
			continue
		}
		report.Missing = append(report.Missing, MissingAlbum{
			ID:          album.ID,
			Title:       album.Title,
			ReleaseDate: album.ReleaseDate,
		})
	}
	// Resolution albums arrive release-date ordered; the filter keeps that.
	return report
}
