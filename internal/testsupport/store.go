package testsupport

import (
	"context"
	"testing"

	"cratescan/internal/catalog"
	"cratescan/internal/config"
	"cratescan/internal/namekey"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedArtist upserts an artist and binds its derived name key.
func SeedArtist(t testing.TB, store *catalog.Store, id int64, name string) *catalog.Artist {
	t.Helper()

	artist := &catalog.Artist{
		ID:   id,
		Name: name,
	}
	if err := store.UpsertArtist(context.Background(), artist); err != nil {
		t.Fatalf("UpsertArtist: %v", err)
	}
	if _, err := store.BindArtistKey(context.Background(), namekey.Normalize(name), id); err != nil {
		t.Fatalf("BindArtistKey: %v", err)
	}
	return artist
}

// SeedAlbum upserts an album for an artist with a derived title key.
func SeedAlbum(t testing.TB, store *catalog.Store, id, artistID int64, title, releaseDate string) *catalog.Album {
	t.Helper()

	album := &catalog.Album{
		ID:          id,
		ArtistID:    artistID,
		Title:       title,
		TitleKey:    namekey.Normalize(title),
		ReleaseDate: releaseDate,
		RecordType:  catalog.RecordTypeAlbum,
	}
	if err := store.UpsertAlbum(context.Background(), album); err != nil {
		t.Fatalf("UpsertAlbum: %v", err)
	}
	return album
}
