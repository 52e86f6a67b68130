package artwork

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"cratescan/internal/catalog"
	"cratescan/internal/logging"
)

// Status reports what EnsureArtistImage did for one artist folder.
type Status string

const (
	// StatusPresent means the image file already existed; nothing was fetched.
	StatusPresent Status = "present"
	// StatusDownloaded means a new image was written.
	StatusDownloaded Status = "downloaded"
	// StatusUnavailable means the artist has no picture URLs.
	StatusUnavailable Status = "unavailable"
	// StatusFailed means every candidate URL failed to download.
	StatusFailed Status = "failed"
	// StatusSkipped means artwork downloads are disabled or were bypassed.
	StatusSkipped Status = "skipped"
)

// Fetcher downloads artist images into library folders. Downloads are
// idempotent: an existing file is never re-fetched or overwritten.
type Fetcher struct {
	filename   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher builds a fetcher writing images named filename into artist
// directories. Timeout bounds each individual download.
func NewFetcher(filename string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if filename == "" {
		filename = "folder.jpg"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		filename:   filename,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "artwork"),
	}
}

// EnsureArtistImage makes sure dir contains the artist image, downloading it
// on first sight. Candidate URLs are tried largest first; the first success
// wins. Failures are reported in the status, never as an error, because a
// missing folder image should not disturb a scan.
func (f *Fetcher) EnsureArtistImage(ctx context.Context, artist *catalog.Artist, dir string) Status {
	logger := logging.WithContext(ctx, f.logger)

	target := filepath.Join(dir, f.filename)
	if _, err := os.Stat(target); err == nil {
		return StatusPresent
	}

	urls := candidateURLs(artist)
	if len(urls) == 0 {
		return StatusUnavailable
	}

	for _, imageURL := range urls {
		size, err := f.download(ctx, imageURL, target)
		if err != nil {
			logger.Debug("image download failed",
				logging.String("url", imageURL),
				logging.Error(err),
			)
			continue
		}
		logger.Info("artist image downloaded",
			logging.String("path", target),
			logging.String("size", humanize.Bytes(uint64(size))),
		)
		return StatusDownloaded
	}

	logger.Warn("all image candidates failed",
		logging.Int("candidates", len(urls)),
	)
	return StatusFailed
}

// download writes the image through a dot-prefixed temp file so readers
// never observe a partial image at the final path.
func (f *Fetcher) download(ctx context.Context, imageURL, target string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	temp := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".partial")
	file, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	size, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(temp)
		return 0, fmt.Errorf("write image: %w", err)
	}

	if err := os.Rename(temp, target); err != nil {
		os.Remove(temp)
		return 0, fmt.Errorf("finalize image: %w", err)
	}
	return size, nil
}

func candidateURLs(artist *catalog.Artist) []string {
	var urls []string
	for _, u := range artist.PictureURLs() {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
