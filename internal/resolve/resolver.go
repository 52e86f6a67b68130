package resolve

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"cratescan/internal/catalog"
	"cratescan/internal/deezer"
	"cratescan/internal/logging"
	"cratescan/internal/namekey"
)

// Reason classifies why a resolution did not produce an artist.
type Reason string

const (
	ReasonNone Reason = ""
	// ReasonNotFound means the provider returned zero candidates. Expected
	// for unreleased, self-released, or mistagged material.
	ReasonNotFound Reason = "not_found"
	// ReasonTransient means the provider could not be consulted this run.
	ReasonTransient Reason = "transient"
)

// Resolution is the outcome of mapping a normalized artist key to a catalog
// identity. Artist is nil when unresolved; Albums holds the known catalog.
type Resolution struct {
	Artist *catalog.Artist
	Albums []catalog.Album
	Reason Reason
}

// Resolved reports whether an artist identity was established.
func (r Resolution) Resolved() bool { return r.Artist != nil }

// Store is the catalog surface the resolver needs.
type Store interface {
	FindArtistByKey(ctx context.Context, key string) (*catalog.Artist, error)
	BindArtistKey(ctx context.Context, key string, artistID int64) (int64, error)
	UpsertArtist(ctx context.Context, artist *catalog.Artist) error
	UpsertAlbum(ctx context.Context, album *catalog.Album) error
	ListAlbumsForArtist(ctx context.Context, artistID int64) ([]catalog.Album, error)
}

// Resolver maps normalized artist keys to catalog records, consulting the
// store first and the provider on miss. It carries a per-run cache; build a
// fresh Resolver per scan invocation.
type Resolver struct {
	store    Store
	provider deezer.Searcher
	cache    *Cache
	logger   *slog.Logger
}

// New creates a resolver with an empty per-run cache.
func New(store Store, provider deezer.Searcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		provider: provider,
		cache:    NewCache(),
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve maps a normalized key (with the raw name for provider queries) to
// an artist identity. The returned error is non-nil only for store failures,
// which are fatal to the run; provider failures degrade to an unresolved
// Resolution and the scan continues.
func (r *Resolver) Resolve(ctx context.Context, key, rawName string) (Resolution, error) {
	if key == "" {
		return Resolution{Reason: ReasonNotFound}, nil
	}
	return r.cache.Do(key, func() (Resolution, error) {
		return r.resolveUncached(ctx, key, rawName)
	})
}

func (r *Resolver) resolveUncached(ctx context.Context, key, rawName string) (Resolution, error) {
	res, ok, err := r.fromStore(ctx, key, rawName)
	if err != nil || ok {
		return res, err
	}

	candidates, err := r.provider.SearchArtists(ctx, rawName)
	if err != nil {
		r.logger.Warn("provider search failed",
			logging.String(logging.FieldArtist, rawName),
			logging.Error(err),
		)
		return Resolution{Reason: ReasonTransient}, nil
	}
	if len(candidates) == 0 {
		r.logger.Debug("no provider candidates",
			logging.String(logging.FieldArtist, rawName),
		)
		return Resolution{Reason: ReasonNotFound}, nil
	}

	chosen := r.pickCandidate(key, rawName, candidates)

	artist := artistRecord(chosen)
	if err := r.store.UpsertArtist(ctx, artist); err != nil {
		return Resolution{}, err
	}

	// Bind the record to the key that resolved it so the same folder name
	// hits the store directly on future runs, even when the provider's
	// canonical spelling normalizes differently. A key already bound to a
	// different artist stays with its first binding.
	boundID, err := r.store.BindArtistKey(ctx, key, chosen.ID)
	if err != nil {
		return Resolution{}, err
	}
	if boundID != chosen.ID {
		r.logger.Warn("key already bound to another artist, keeping the first binding",
			logging.String(logging.FieldArtist, rawName),
			logging.Int64("candidate_id", chosen.ID),
			logging.Int64("bound_id", boundID),
		)
		res, ok, err := r.fromStore(ctx, key, rawName)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			return Resolution{Reason: ReasonNotFound}, nil
		}
		return res, nil
	}

	// Another alias of the same artist may already have filled the catalog
	// this run or a previous one; reuse it instead of refetching.
	albums, err := r.store.ListAlbumsForArtist(ctx, chosen.ID)
	if err != nil {
		return Resolution{}, err
	}
	if len(albums) == 0 {
		providerAlbums, err := r.provider.ArtistAlbums(ctx, chosen.ID)
		if err != nil {
			r.logger.Warn("provider album listing failed",
				logging.String(logging.FieldArtist, rawName),
				logging.Int64("artist_id", chosen.ID),
				logging.Error(err),
			)
			return Resolution{Reason: ReasonTransient}, nil
		}
		albums = make([]catalog.Album, 0, len(providerAlbums))
		for _, entry := range providerAlbums {
			album := albumRecord(entry, chosen.ID)
			if err := r.store.UpsertAlbum(ctx, album); err != nil {
				return Resolution{}, err
			}
			albums = append(albums, *album)
		}
		sortAlbums(albums)
	}

	r.logger.Debug("resolved from provider",
		logging.String(logging.FieldArtist, rawName),
		logging.Int64("artist_id", chosen.ID),
		logging.Int("albums", len(albums)),
	)
	return Resolution{Artist: artist, Albums: albums}, nil
}

// fromStore resolves a key against the catalog alone. The second return is
// false when the key has no binding yet.
func (r *Resolver) fromStore(ctx context.Context, key, rawName string) (Resolution, bool, error) {
	existing, err := r.store.FindArtistByKey(ctx, key)
	if err != nil {
		return Resolution{}, false, err
	}
	if existing == nil {
		return Resolution{}, false, nil
	}
	albums, err := r.store.ListAlbumsForArtist(ctx, existing.ID)
	if err != nil {
		return Resolution{}, false, err
	}
	if len(albums) == 0 {
		// Artist known but catalog never populated; try to fill it in.
		// A provider failure here degrades to an empty known catalog
		// rather than unresolving an already-established identity.
		albums = r.refreshAlbums(ctx, existing)
	}
	r.logger.Debug("resolved from store",
		logging.String(logging.FieldArtist, rawName),
		logging.Int64("artist_id", existing.ID),
		logging.Int("albums", len(albums)),
	)
	return Resolution{Artist: existing, Albums: albums}, true, nil
}

// refreshAlbums best-effort fills an empty known catalog from the provider.
func (r *Resolver) refreshAlbums(ctx context.Context, artist *catalog.Artist) []catalog.Album {
	providerAlbums, err := r.provider.ArtistAlbums(ctx, artist.ID)
	if err != nil {
		r.logger.Warn("album refresh failed",
			logging.Int64("artist_id", artist.ID),
			logging.Error(err),
		)
		return nil
	}
	albums := make([]catalog.Album, 0, len(providerAlbums))
	for _, entry := range providerAlbums {
		album := albumRecord(entry, artist.ID)
		if err := r.store.UpsertAlbum(ctx, album); err != nil {
			r.logger.Warn("album upsert failed during refresh",
				logging.Int64("album_id", album.ID),
				logging.Error(err),
			)
			continue
		}
		albums = append(albums, *album)
	}
	sortAlbums(albums)
	return albums
}

func sortAlbums(albums []catalog.Album) {
	sort.SliceStable(albums, func(i, j int) bool {
		if albums[i].ReleaseDate != albums[j].ReleaseDate {
			return albums[i].ReleaseDate < albums[j].ReleaseDate
		}
		return albums[i].ID < albums[j].ID
	})
}

// pickCandidate applies the deterministic tie-break: exact normalized-name
// equality first, then highest fan count, then highest album count, then
// provider order. Discarded alternatives are logged, never silently dropped.
func (r *Resolver) pickCandidate(key, rawName string, candidates []deezer.Artist) deezer.Artist {
	if len(candidates) == 1 {
		return candidates[0]
	}

	pool := candidates
	if exact := exactMatches(key, candidates); len(exact) > 0 {
		pool = exact
	}

	ranked := make([]deezer.Artist, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FanCount != ranked[j].FanCount {
			return ranked[i].FanCount > ranked[j].FanCount
		}
		return ranked[i].AlbumCount > ranked[j].AlbumCount
	})

	chosen := ranked[0]
	for _, candidate := range candidates {
		if candidate.ID == chosen.ID {
			continue
		}
		r.logger.Debug("discarded candidate",
			logging.String(logging.FieldArtist, rawName),
			logging.Int64("candidate_id", candidate.ID),
			logging.String("candidate_name", candidate.Name),
			logging.Int("candidate_fans", candidate.FanCount),
			logging.Int64("chosen_id", chosen.ID),
		)
	}
	return chosen
}

func exactMatches(key string, candidates []deezer.Artist) []deezer.Artist {
	var exact []deezer.Artist
	for _, candidate := range candidates {
		if namekey.Normalize(candidate.Name) == key {
			exact = append(exact, candidate)
		}
	}
	return exact
}

func artistRecord(candidate deezer.Artist) *catalog.Artist {
	return &catalog.Artist{
		ID:            candidate.ID,
		Name:          candidate.Name,
		Link:          candidate.Link,
		Picture:       candidate.Picture,
		PictureSmall:  candidate.PictureSmall,
		PictureMedium: candidate.PictureMedium,
		PictureBig:    candidate.PictureBig,
		PictureXL:     candidate.PictureXL,
		AlbumCount:    candidate.AlbumCount,
		FanCount:      candidate.FanCount,
		Radio:         candidate.Radio,
		Tracklist:     candidate.Tracklist,
		Type:          candidate.Type,
	}
}

func albumRecord(entry deezer.Album, artistID int64) *catalog.Album {
	return &catalog.Album{
		ID:             entry.ID,
		ArtistID:       artistID,
		Title:          entry.Title,
		TitleKey:       namekey.Normalize(entry.Title),
		Link:           entry.Link,
		Cover:          entry.Cover,
		CoverSmall:     entry.CoverSmall,
		CoverMedium:    entry.CoverMedium,
		CoverBig:       entry.CoverBig,
		CoverXL:        entry.CoverXL,
		GenreID:        entry.GenreID,
		FanCount:       entry.FanCount,
		ReleaseDate:    entry.ReleaseDate,
		RecordType:     strings.ToLower(strings.TrimSpace(entry.RecordType)),
		ExplicitLyrics: entry.ExplicitLyrics,
	}
}
