package reconcile

// ReportDiff describes how a library changed between two scans of the same
// root, oldest scan first.
type ReportDiff struct {
	PreviousScanID string
	CurrentScanID  string
	NewArtists     []string
	GoneArtists    []string
	Changed        []ArtistChange
}

// ArtistChange is the per-artist delta for an artist present in both scans.
type ArtistChange struct {
	Name         string
	NewlyMissing []MissingAlbum
	NowPresent   []string
}

// Empty reports whether the two scans agree on every artist.
func (d *ReportDiff) Empty() bool {
	return len(d.NewArtists) == 0 && len(d.GoneArtists) == 0 && len(d.Changed) == 0
}

// DiffReports compares two scan reports of the same root. Artists are
// matched by catalog ID; albums by catalog ID, so a renamed local folder
// that still matches does not show up as a change.
func DiffReports(previous, current *Report) *ReportDiff {
	diff := &ReportDiff{
		PreviousScanID: previous.ScanID,
		CurrentScanID:  current.ScanID,
	}

	prevByID := make(map[int64]ArtistReport, len(previous.Artists))
	for _, artist := range previous.Artists {
		prevByID[artist.ArtistID] = artist
	}
	currentIDs := make(map[int64]struct{}, len(current.Artists))

	for _, artist := range current.Artists {
		currentIDs[artist.ArtistID] = struct{}{}
		before, ok := prevByID[artist.ArtistID]
		if !ok {
			diff.NewArtists = append(diff.NewArtists, artist.Name)
			continue
		}
		change := diffArtistReports(before, artist)
		if len(change.NewlyMissing) > 0 || len(change.NowPresent) > 0 {
			diff.Changed = append(diff.Changed, change)
		}
	}

	for _, artist := range previous.Artists {
		if _, ok := currentIDs[artist.ArtistID]; !ok {
			diff.GoneArtists = append(diff.GoneArtists, artist.Name)
		}
	}
	return diff
}

func diffArtistReports(before, after ArtistReport) ArtistChange {
	change := ArtistChange{Name: after.Name}

	wasMissing := make(map[int64]struct{}, len(before.Missing))
	for _, album := range before.Missing {
		wasMissing[album.ID] = struct{}{}
	}
	isMissing := make(map[int64]struct{}, len(after.Missing))
	for _, album := range after.Missing {
		isMissing[album.ID] = struct{}{}
		if _, ok := wasMissing[album.ID]; !ok {
			change.NewlyMissing = append(change.NewlyMissing, album)
		}
	}
	for _, album := range before.Missing {
		if _, ok := isMissing[album.ID]; !ok {
			change.NowPresent = append(change.NowPresent, album.Title)
		}
	}
	return change
}
