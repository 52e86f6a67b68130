package reconcile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"cratescan/internal/catalog"
	"cratescan/internal/config"
	"cratescan/internal/deezer"
	"cratescan/internal/library"
	"cratescan/internal/logging"
	"cratescan/internal/resolve"
	"cratescan/internal/services"
	"cratescan/internal/testsupport"
)

type stubProvider struct {
	artists     map[string][]deezer.Artist
	albums      map[int64][]deezer.Album
	searchErr   error
	searchCalls int
}

func (p *stubProvider) SearchArtists(ctx context.Context, name string) ([]deezer.Artist, error) {
	p.searchCalls++
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.artists[strings.ToLower(name)], nil
}

func (p *stubProvider) ArtistAlbums(ctx context.Context, artistID int64) ([]deezer.Album, error) {
	return p.albums[artistID], nil
}

func newEngine(t *testing.T, cfg *config.Config, store *catalog.Store, provider deezer.Searcher) *Engine {
	t.Helper()
	scanner := library.NewScanner(cfg.Scan.ExcludeDirs, logging.NewNop())
	resolver := resolve.New(store, provider, logging.NewNop())
	return New(cfg, scanner, resolver, nil, store, logging.NewNop())
}

func radioheadProvider() *stubProvider {
	return &stubProvider{
		artists: map[string][]deezer.Artist{
			"radiohead": {{ID: 399, Name: "Radiohead", FanCount: 5000000}},
		},
		albums: map[int64][]deezer.Album{
			399: {
				{ID: 10, Title: "The Bends", ReleaseDate: "1995-03-13", RecordType: "album"},
				{ID: 11, Title: "OK Computer", ReleaseDate: "1997-05-21", RecordType: "album"},
				{ID: 12, Title: "Kid A", ReleaseDate: "2000-10-02", RecordType: "album"},
				{ID: 13, Title: "Pyramid Song", ReleaseDate: "2001-05-21", RecordType: "single"},
			},
		},
	}
}

func TestRunComputesMissingSet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead": {"OK Computer"},
	})

	engine := newEngine(t, cfg, store, radioheadProvider())
	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Artists) != 1 {
		t.Fatalf("artists = %+v, want one", report.Artists)
	}
	artist := report.Artists[0]
	if artist.ArtistID != 399 {
		t.Fatalf("artist ID = %d", artist.ArtistID)
	}
	if len(artist.Matched) != 1 || artist.Matched[0] != "OK Computer" {
		t.Fatalf("matched = %v", artist.Matched)
	}
	// Missing is release-date ordered and excludes the single under the
	// default record-type filter.
	if len(artist.Missing) != 2 {
		t.Fatalf("missing = %+v, want 2", artist.Missing)
	}
	if artist.Missing[0].Title != "The Bends" || artist.Missing[1].Title != "Kid A" {
		t.Fatalf("missing out of order: %+v", artist.Missing)
	}
	if len(artist.ExtraLocal) != 0 {
		t.Fatalf("extra local = %v", artist.ExtraLocal)
	}
	if report.KeyRulesVersion != 1 || report.Version != ReportVersion {
		t.Fatalf("version stamps: %+v", report)
	}
	if report.ScanID == "" {
		t.Fatal("scan ID missing")
	}
}

func TestRunPermissiveFolderNames(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"radiohead": {
			"OK Computer (Collector's Edition)",
			"Kid A CD1",
			"the bends",
			"Bootleg Sessions",
		},
	})

	engine := newEngine(t, cfg, store, radioheadProvider())
	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	artist := report.Artists[0]
	if len(artist.Matched) != 3 {
		t.Fatalf("matched = %v, want 3 decorated folders", artist.Matched)
	}
	if len(artist.Missing) != 0 {
		t.Fatalf("missing = %+v, want none", artist.Missing)
	}
	if len(artist.ExtraLocal) != 1 || artist.ExtraLocal[0] != "Bootleg Sessions" {
		t.Fatalf("extra local = %v", artist.ExtraLocal)
	}
}

func TestRunEmptyKeyAlbumsNeverMatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	// "!!!" and "???" both normalize to the empty key; that must not make
	// them match each other.
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead": {"!!!", "OK Computer"},
	})
	provider := &stubProvider{
		artists: map[string][]deezer.Artist{
			"radiohead": {{ID: 399, Name: "Radiohead", FanCount: 5000000}},
		},
		albums: map[int64][]deezer.Album{
			399: {
				{ID: 11, Title: "OK Computer", ReleaseDate: "1997-05-21", RecordType: "album"},
				{ID: 21, Title: "???", ReleaseDate: "2009-01-01", RecordType: "album"},
			},
		},
	}

	report, err := newEngine(t, cfg, store, provider).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	artist := report.Artists[0]
	if len(artist.Matched) != 1 || artist.Matched[0] != "OK Computer" {
		t.Fatalf("matched = %v", artist.Matched)
	}
	if len(artist.ExtraLocal) != 1 || artist.ExtraLocal[0] != "!!!" {
		t.Fatalf("extra local = %v", artist.ExtraLocal)
	}
	if len(artist.Missing) != 1 || artist.Missing[0].Title != "???" {
		t.Fatalf("missing = %+v, want the unverifiable album", artist.Missing)
	}
}

func TestRunWorkerLogsCarryScanContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead": {"OK Computer"},
	})

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	scanner := library.NewScanner(cfg.Scan.ExcludeDirs, logging.NewNop())
	resolver := resolve.New(store, radioheadProvider(), logging.NewNop())
	engine := New(cfg, scanner, resolver, nil, store, logger)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"artist":"Radiohead"`) {
		t.Fatalf("worker logs missing artist field:\n%s", logs)
	}
	if !strings.Contains(logs, report.ScanID) {
		t.Fatalf("worker logs missing scan id %s:\n%s", report.ScanID, logs)
	}
}

func TestRunUnresolvedArtistsDoNotAbort(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead":         {"OK Computer"},
		"Basement Unknowns": {"Demo Tape"},
		"!!!":               {"Louden Up Now"},
	})

	engine := newEngine(t, cfg, store, radioheadProvider())
	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Artists) != 1 {
		t.Fatalf("artists = %+v", report.Artists)
	}
	if len(report.Unresolved) != 2 {
		t.Fatalf("unresolved = %+v, want 2", report.Unresolved)
	}
	reasons := map[string]string{}
	for _, entry := range report.Unresolved {
		reasons[entry.Name] = entry.Reason
	}
	if reasons["Basement Unknowns"] != string(resolve.ReasonNotFound) {
		t.Fatalf("reasons = %v", reasons)
	}
	if reasons["!!!"] != "unresolvable" {
		t.Fatalf("reasons = %v", reasons)
	}
}

func TestRunProviderOutageIsTransient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead": {"OK Computer"},
	})

	engine := newEngine(t, cfg, store, &stubProvider{searchErr: errors.New("timeout")})
	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should survive provider outages: %v", err)
	}
	if len(report.Unresolved) != 1 || report.Unresolved[0].Reason != string(resolve.ReasonTransient) {
		t.Fatalf("unresolved = %+v", report.Unresolved)
	}

	// The degraded run still leaves an audit row.
	count, err := store.CountScans(context.Background(), cfg.Paths.LibraryDir)
	if err != nil {
		t.Fatalf("CountScans: %v", err)
	}
	if count != 1 {
		t.Fatalf("scan count = %d, want 1", count)
	}
}

func TestRunSecondRunHitsStoreNotProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead": {"OK Computer"},
	})
	provider := radioheadProvider()

	first, err := newEngine(t, cfg, store, provider).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := newEngine(t, cfg, store, provider).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if provider.searchCalls != 1 {
		t.Fatalf("provider searched %d times across two runs, want 1", provider.searchCalls)
	}
	if first.ScanID == second.ScanID {
		t.Fatal("scan IDs must be unique per run")
	}
	if len(first.Artists[0].Missing) != len(second.Artists[0].Missing) {
		t.Fatalf("missing sets diverged: %d vs %d",
			len(first.Artists[0].Missing), len(second.Artists[0].Missing))
	}

	count, err := store.CountScans(context.Background(), cfg.Paths.LibraryDir)
	if err != nil {
		t.Fatalf("CountScans: %v", err)
	}
	if count != 2 {
		t.Fatalf("scan count = %d, want 2 append-only rows", count)
	}
}

func TestRunPersistsDecodableDump(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead": {"Kid A"},
	})

	report, err := newEngine(t, cfg, store, radioheadProvider()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	row, err := store.LatestScan(context.Background(), cfg.Paths.LibraryDir)
	if err != nil {
		t.Fatalf("LatestScan: %v", err)
	}
	if row == nil {
		t.Fatal("no scan row recorded")
	}
	decoded, err := DecodeReport(row.ScanDump)
	if err != nil {
		t.Fatalf("DecodeReport: %v", err)
	}
	if decoded.ScanID != report.ScanID {
		t.Fatalf("dump scan ID = %q, want %q", decoded.ScanID, report.ScanID)
	}
	if decoded.TotalMissing() != report.TotalMissing() {
		t.Fatalf("dump missing = %d, want %d", decoded.TotalMissing(), report.TotalMissing())
	}
}

func TestRunCancelledLeavesNoAuditRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MakeLibrary(t, cfg.Paths.LibraryDir, map[string][]string{
		"Radiohead": {"OK Computer"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(t, cfg, store, radioheadProvider()).Run(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled run")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error %v is not ErrTransient", err)
	}

	count, err := store.CountScans(context.Background(), cfg.Paths.LibraryDir)
	if err != nil {
		t.Fatalf("CountScans: %v", err)
	}
	if count != 0 {
		t.Fatalf("cancelled run recorded %d audit rows", count)
	}
}

func TestRunUnreadableRootFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	// LibraryDir never created.

	_, err := newEngine(t, cfg, store, radioheadProvider()).Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing library root")
	}
	if !errors.Is(err, services.ErrFileSystem) {
		t.Fatalf("error %v is not ErrFileSystem", err)
	}
}
