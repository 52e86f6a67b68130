package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"cratescan/internal/config"
	"cratescan/internal/services"
)

// Store manages the artist/album catalog and scan audit trail backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "open", "ensure directories", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "open", "open sqlite db", err)
	}
	// Pragmas apply per connection; a single-connection pool keeps them in
	// force and serializes writes from the scan worker pool.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStore, "catalog", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStore, "catalog", "open", "init schema", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const artistColumns = "id, name, link, picture, picture_small, picture_medium, picture_big, picture_xl, nb_album, nb_fan, radio, tracklist, type, created_at, updated_at"

// FindArtistByKey returns the artist a name key is bound to, or nil when the
// key is unknown. Keys bind through the artist_keys table, so several folder
// spellings can resolve to the same record.
func (s *Store) FindArtistByKey(ctx context.Context, key string) (*Artist, error) {
	if key == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists
         WHERE id = (SELECT artist_id FROM artist_keys WHERE name_key = ?)`, key)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "find artist", "", err)
	}
	return artist, nil
}

// BindArtistKey binds a name key to an artist and returns the ID the key is
// bound to afterwards. An existing binding is never rebound: the first one
// wins, and the returned ID tells the caller which artist owns the key.
func (s *Store) BindArtistKey(ctx context.Context, key string, artistID int64) (int64, error) {
	if key == "" {
		return 0, services.Wrap(services.ErrStore, "catalog", "bind artist key", "key is empty", nil)
	}
	if artistID <= 0 {
		return 0, services.Wrap(services.ErrStore, "catalog", "bind artist key", "artist id must be positive", nil)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artist_keys (name_key, artist_id, created_at) VALUES (?, ?, ?)
         ON CONFLICT(name_key) DO NOTHING`, key, artistID, now)
	if err != nil {
		return 0, services.Wrap(services.ErrStore, "catalog", "bind artist key", "", err)
	}
	var boundID int64
	err = s.db.QueryRowContext(ctx,
		`SELECT artist_id FROM artist_keys WHERE name_key = ?`, key).Scan(&boundID)
	if err != nil {
		return 0, services.Wrap(services.ErrStore, "catalog", "bind artist key", "read binding", err)
	}
	return boundID, nil
}

// UpsertArtist inserts or refreshes an artist row. The ID never changes;
// mutable fields take the incoming values (last write wins).
func (s *Store) UpsertArtist(ctx context.Context, artist *Artist) error {
	if artist == nil {
		return services.Wrap(services.ErrStore, "catalog", "upsert artist", "artist is nil", nil)
	}
	if artist.ID <= 0 {
		return services.Wrap(services.ErrStore, "catalog", "upsert artist", "artist id must be positive", nil)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artists (
            id, name, link, picture, picture_small, picture_medium,
            picture_big, picture_xl, nb_album, nb_fan, radio, tracklist, type,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            link = excluded.link,
            picture = excluded.picture,
            picture_small = excluded.picture_small,
            picture_medium = excluded.picture_medium,
            picture_big = excluded.picture_big,
            picture_xl = excluded.picture_xl,
            nb_album = excluded.nb_album,
            nb_fan = excluded.nb_fan,
            radio = excluded.radio,
            tracklist = excluded.tracklist,
            type = excluded.type,
            updated_at = excluded.updated_at`,
		artist.ID, artist.Name, artist.Link,
		artist.Picture, artist.PictureSmall, artist.PictureMedium,
		artist.PictureBig, artist.PictureXL,
		artist.AlbumCount, artist.FanCount, boolToInt(artist.Radio),
		artist.Tracklist, artist.Type, now, now,
	)
	if err != nil {
		return services.Wrap(services.ErrStore, "catalog", "upsert artist", "", err)
	}
	return nil
}

const albumColumns = "id, artist_id, title, title_key, link, cover, cover_small, cover_medium, cover_big, cover_xl, genre_id, fans, release_date, record_type, explicit_lyrics, created_at, updated_at"

// ListAlbumsForArtist returns the known catalog for an artist, ordered by
// release date then id so diff reporting stays deterministic.
func (s *Store) ListAlbumsForArtist(ctx context.Context, artistID int64) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE artist_id = ? ORDER BY release_date, id`, artistID)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "list albums", "", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStore, "catalog", "list albums", "scan row", err)
		}
		albums = append(albums, *album)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "list albums", "iterate rows", err)
	}
	return albums, nil
}

// UpsertAlbum inserts or refreshes an album row, idempotent on ID.
func (s *Store) UpsertAlbum(ctx context.Context, album *Album) error {
	if album == nil {
		return services.Wrap(services.ErrStore, "catalog", "upsert album", "album is nil", nil)
	}
	if album.ID <= 0 || album.ArtistID <= 0 {
		return services.Wrap(services.ErrStore, "catalog", "upsert album", "album and artist ids must be positive", nil)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO albums (
            id, artist_id, title, title_key, link, cover, cover_small,
            cover_medium, cover_big, cover_xl, genre_id, fans, release_date,
            record_type, explicit_lyrics, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            artist_id = excluded.artist_id,
            title = excluded.title,
            title_key = excluded.title_key,
            link = excluded.link,
            cover = excluded.cover,
            cover_small = excluded.cover_small,
            cover_medium = excluded.cover_medium,
            cover_big = excluded.cover_big,
            cover_xl = excluded.cover_xl,
            genre_id = excluded.genre_id,
            fans = excluded.fans,
            release_date = excluded.release_date,
            record_type = excluded.record_type,
            explicit_lyrics = excluded.explicit_lyrics,
            updated_at = excluded.updated_at`,
		album.ID, album.ArtistID, album.Title, album.TitleKey, album.Link,
		album.Cover, album.CoverSmall, album.CoverMedium, album.CoverBig,
		album.CoverXL, album.GenreID, album.FanCount, album.ReleaseDate,
		album.RecordType, boolToInt(album.ExplicitLyrics), now, now,
	)
	if err != nil {
		return services.Wrap(services.ErrStore, "catalog", "upsert album", "", err)
	}
	return nil
}

// RecordScan appends one audit row for a completed scan. Rows are never
// updated or deleted here; retention is an external concern.
func (s *Store) RecordScan(ctx context.Context, folderPath, scanDump string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scan_results (folder_path, scan_dump, scan_date) VALUES (?, ?, ?)`,
		folderPath, scanDump, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, services.Wrap(services.ErrStore, "catalog", "record scan", "", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, services.Wrap(services.ErrStore, "catalog", "record scan", "last insert id", err)
	}
	return id, nil
}

// LatestScan returns the newest scan row for a folder path, or nil when the
// path has never been scanned.
func (s *Store) LatestScan(ctx context.Context, folderPath string) (*ScanResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, folder_path, scan_dump, scan_date FROM scan_results
         WHERE folder_path = ? ORDER BY id DESC LIMIT 1`, folderPath)

	var (
		result  ScanResult
		dateRaw string
	)
	err := row.Scan(&result.ID, &result.FolderPath, &result.ScanDump, &dateRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "latest scan", "", err)
	}
	if parsed, perr := parseTimeString(dateRaw); perr == nil {
		result.ScanDate = parsed
	}
	return &result, nil
}

// RecentScans returns up to limit audit rows for a folder path, newest first.
func (s *Store) RecentScans(ctx context.Context, folderPath string, limit int) ([]ScanResult, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, folder_path, scan_dump, scan_date FROM scan_results
         WHERE folder_path = ? ORDER BY id DESC LIMIT ?`, folderPath, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "recent scans", "", err)
	}
	defer rows.Close()

	var results []ScanResult
	for rows.Next() {
		var (
			result  ScanResult
			dateRaw string
		)
		if err := rows.Scan(&result.ID, &result.FolderPath, &result.ScanDump, &dateRaw); err != nil {
			return nil, services.Wrap(services.ErrStore, "catalog", "recent scans", "scan row", err)
		}
		if parsed, perr := parseTimeString(dateRaw); perr == nil {
			result.ScanDate = parsed
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "recent scans", "iterate rows", err)
	}
	return results, nil
}

// CountScans returns the number of audit rows for a folder path.
func (s *Store) CountScans(ctx context.Context, folderPath string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM scan_results WHERE folder_path = ?`, folderPath).Scan(&count)
	if err != nil {
		return 0, services.Wrap(services.ErrStore, "catalog", "count scans", "", err)
	}
	return count, nil
}

func scanArtist(scanner interface{ Scan(dest ...any) error }) (*Artist, error) {
	var (
		artist     Artist
		radio      int64
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&artist.ID, &artist.Name, &artist.Link,
		&artist.Picture, &artist.PictureSmall, &artist.PictureMedium,
		&artist.PictureBig, &artist.PictureXL,
		&artist.AlbumCount, &artist.FanCount, &radio,
		&artist.Tracklist, &artist.Type, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	artist.Radio = radio != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		artist.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		artist.UpdatedAt = updated
	}
	return &artist, nil
}

func scanAlbum(scanner interface{ Scan(dest ...any) error }) (*Album, error) {
	var (
		album      Album
		explicit   int64
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&album.ID, &album.ArtistID, &album.Title, &album.TitleKey, &album.Link,
		&album.Cover, &album.CoverSmall, &album.CoverMedium, &album.CoverBig,
		&album.CoverXL, &album.GenreID, &album.FanCount, &album.ReleaseDate,
		&album.RecordType, &explicit, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	album.ExplicitLyrics = explicit != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		album.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		album.UpdatedAt = updated
	}
	return &album, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
