package catalog

import "time"

// RecordType values the provider reports for album releases.
const (
	RecordTypeAlbum   = "album"
	RecordTypeSingle  = "single"
	RecordTypeEP      = "ep"
	RecordTypeCompile = "compile"
)

// Artist is a canonical artist entry keyed by the provider identifier.
// The ID is globally unique and stable across runs. Normalized-name keys
// bind to artists through the artist_keys table, so one record can be
// reached under several folder spellings.
type Artist struct {
	ID            int64
	Name          string
	Link          string
	Picture       string
	PictureSmall  string
	PictureMedium string
	PictureBig    string
	PictureXL     string
	AlbumCount    int
	FanCount      int
	Radio         bool
	Tracklist     string
	Type          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PictureURLs returns the artist picture URLs largest first.
func (a *Artist) PictureURLs() []string {
	return []string{a.PictureXL, a.PictureBig, a.PictureMedium, a.PictureSmall, a.Picture}
}

// Album is a canonical album entry keyed by the provider identifier. Every
// album belongs to exactly one artist; TitleKey holds the normalized title.
type Album struct {
	ID             int64
	ArtistID       int64
	Title          string
	TitleKey       string
	Link           string
	Cover          string
	CoverSmall     string
	CoverMedium    string
	CoverBig       string
	CoverXL        string
	GenreID        int64
	FanCount       int
	ReleaseDate    string
	RecordType     string
	ExplicitLyrics bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScanResult is an append-only audit entry for one completed scan.
type ScanResult struct {
	ID         int64
	FolderPath string
	ScanDump   string
	ScanDate   time.Time
}
