package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"cratescan/internal/catalog"
	"cratescan/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedArtist(t, store, 27, "The Beatles")

	found, err := store.FindArtistByKey(ctx, "beatles")
	if err != nil {
		t.Fatalf("FindArtistByKey: %v", err)
	}
	if found == nil || found.ID != 27 || found.Name != "The Beatles" {
		t.Fatalf("unexpected artist: %#v", found)
	}
}

func TestBindArtistKeyAliases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedArtist(t, store, 115, "AC/DC")

	for _, key := range []string{"ac dc", "acdc"} {
		boundID, err := store.BindArtistKey(ctx, key, 115)
		if err != nil {
			t.Fatalf("BindArtistKey(%q): %v", key, err)
		}
		if boundID != 115 {
			t.Fatalf("BindArtistKey(%q) = %d, want 115", key, boundID)
		}
	}
	for _, key := range []string{"ac dc", "acdc"} {
		found, err := store.FindArtistByKey(ctx, key)
		if err != nil {
			t.Fatalf("FindArtistByKey(%q): %v", key, err)
		}
		if found == nil || found.ID != 115 {
			t.Fatalf("key %q lost its binding: %#v", key, found)
		}
	}
}

func TestBindArtistKeyFirstBindingWins(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedArtist(t, store, 1, "Nirvana")
	testsupport.SeedArtist(t, store, 2, "Nirvana UK")

	boundID, err := store.BindArtistKey(ctx, "nirvana", 2)
	if err != nil {
		t.Fatalf("BindArtistKey: %v", err)
	}
	if boundID != 1 {
		t.Fatalf("rebind returned %d, want the original artist 1", boundID)
	}

	found, err := store.FindArtistByKey(ctx, "nirvana")
	if err != nil {
		t.Fatalf("FindArtistByKey: %v", err)
	}
	if found == nil || found.ID != 1 {
		t.Fatalf("binding was not preserved: %#v", found)
	}
}

func TestFindArtistByKeyUnknown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	found, err := store.FindArtistByKey(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("FindArtistByKey: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for unknown key, got %#v", found)
	}
}

func TestUpsertArtistRefreshesMutableFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	artist := &catalog.Artist{ID: 5, Name: "Nina Simone", FanCount: 10}
	if err := store.UpsertArtist(ctx, artist); err != nil {
		t.Fatalf("UpsertArtist: %v", err)
	}
	if _, err := store.BindArtistKey(ctx, "nina simone", 5); err != nil {
		t.Fatalf("BindArtistKey: %v", err)
	}
	artist.FanCount = 99
	artist.Link = "https://example.test/nina"
	if err := store.UpsertArtist(ctx, artist); err != nil {
		t.Fatalf("UpsertArtist (refresh): %v", err)
	}

	found, err := store.FindArtistByKey(ctx, "nina simone")
	if err != nil {
		t.Fatalf("FindArtistByKey: %v", err)
	}
	if found.FanCount != 99 || found.Link != "https://example.test/nina" {
		t.Fatalf("mutable fields not refreshed: %#v", found)
	}
	if found.ID != 5 {
		t.Fatalf("id must never change, got %d", found.ID)
	}
}

func TestUpsertArtistRejectsInvalidID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.UpsertArtist(context.Background(), &catalog.Artist{ID: 0, Name: "Ghost"})
	if err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestListAlbumsOrderedByReleaseDate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedArtist(t, store, 1, "Radiohead")
	testsupport.SeedAlbum(t, store, 30, 1, "In Rainbows", "2007-10-10")
	testsupport.SeedAlbum(t, store, 10, 1, "OK Computer", "1997-05-21")
	testsupport.SeedAlbum(t, store, 20, 1, "Kid A", "2000-10-02")

	albums, err := store.ListAlbumsForArtist(ctx, 1)
	if err != nil {
		t.Fatalf("ListAlbumsForArtist: %v", err)
	}
	if len(albums) != 3 {
		t.Fatalf("expected 3 albums, got %d", len(albums))
	}
	want := []string{"OK Computer", "Kid A", "In Rainbows"}
	for i, title := range want {
		if albums[i].Title != title {
			t.Fatalf("position %d: got %q, want %q", i, albums[i].Title, title)
		}
	}
}

func TestUpsertAlbumIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedArtist(t, store, 1, "Radiohead")
	for i := 0; i < 3; i++ {
		testsupport.SeedAlbum(t, store, 10, 1, "OK Computer", "1997-05-21")
	}

	albums, err := store.ListAlbumsForArtist(ctx, 1)
	if err != nil {
		t.Fatalf("ListAlbumsForArtist: %v", err)
	}
	if len(albums) != 1 {
		t.Fatalf("expected single row after repeated upserts, got %d", len(albums))
	}
}

func TestUpsertAlbumRequiresKnownArtist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	album := &catalog.Album{ID: 1, ArtistID: 404, Title: "Orphan", TitleKey: "orphan"}
	if err := store.UpsertAlbum(context.Background(), album); err == nil {
		t.Fatal("expected foreign key violation for unknown artist")
	}
}

func TestRecordScanAppendOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ids := make(map[int64]struct{})
	for i := 0; i < 4; i++ {
		id, err := store.RecordScan(ctx, "/music", fmt.Sprintf(`{"version":1,"run":%d}`, i))
		if err != nil {
			t.Fatalf("RecordScan: %v", err)
		}
		ids[id] = struct{}{}
	}
	if len(ids) != 4 {
		t.Fatalf("expected 4 distinct rows, got %d", len(ids))
	}

	count, err := store.CountScans(ctx, "/music")
	if err != nil {
		t.Fatalf("CountScans: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 scan rows, got %d", count)
	}

	latest, err := store.LatestScan(ctx, "/music")
	if err != nil {
		t.Fatalf("LatestScan: %v", err)
	}
	if latest == nil || latest.ScanDump != `{"version":1,"run":3}` {
		t.Fatalf("unexpected latest scan: %#v", latest)
	}
}

func TestRecentScansNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.RecordScan(ctx, "/music", fmt.Sprintf(`{"version":1,"run":%d}`, i)); err != nil {
			t.Fatalf("RecordScan: %v", err)
		}
	}

	rows, err := store.RecentScans(ctx, "/music", 2)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ScanDump != `{"version":1,"run":2}` || rows[1].ScanDump != `{"version":1,"run":1}` {
		t.Fatalf("rows out of order: %q, %q", rows[0].ScanDump, rows[1].ScanDump)
	}
}

func TestLatestScanUnknownPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	latest, err := store.LatestScan(context.Background(), "/never-scanned")
	if err != nil {
		t.Fatalf("LatestScan: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil, got %#v", latest)
	}
}
