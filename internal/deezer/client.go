package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Artist is one candidate from an artist search.
type Artist struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Link          string `json:"link"`
	Picture       string `json:"picture"`
	PictureSmall  string `json:"picture_small"`
	PictureMedium string `json:"picture_medium"`
	PictureBig    string `json:"picture_big"`
	PictureXL     string `json:"picture_xl"`
	AlbumCount    int    `json:"nb_album"`
	FanCount      int    `json:"nb_fan"`
	Radio         bool   `json:"radio"`
	Tracklist     string `json:"tracklist"`
	Type          string `json:"type"`
}

// Album is one entry from an artist's album listing.
type Album struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Link           string `json:"link"`
	Cover          string `json:"cover"`
	CoverSmall     string `json:"cover_small"`
	CoverMedium    string `json:"cover_medium"`
	CoverBig       string `json:"cover_big"`
	CoverXL        string `json:"cover_xl"`
	GenreID        int64  `json:"genre_id"`
	FanCount       int    `json:"fans"`
	ReleaseDate    string `json:"release_date"`
	RecordType     string `json:"record_type"`
	ExplicitLyrics bool   `json:"explicit_lyrics"`
}

type artistPage struct {
	Data  []Artist `json:"data"`
	Total int      `json:"total"`
	Next  string   `json:"next"`
}

type albumPage struct {
	Data  []Album `json:"data"`
	Total int     `json:"total"`
	Next  string  `json:"next"`
}

// Searcher defines the provider operations the resolver consumes.
type Searcher interface {
	SearchArtists(ctx context.Context, name string) ([]Artist, error)
	ArtistAlbums(ctx context.Context, artistID int64) ([]Album, error)
}

// Client provides access to the Deezer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   int
	retryDelay time.Duration
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry sets the bounded retry policy for provider calls.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// followPageCap bounds pagination so a pathological "next" chain stays finite.
const followPageCap = 50

// New creates a Deezer client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("deezer base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		attempts:   2,
		retryDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchArtists searches the provider for candidate artists by raw name.
// An empty slice is a clean zero-candidate answer, not an error.
func (c *Client) SearchArtists(ctx context.Context, name string) ([]Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("artist name must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search/artist")
	if err != nil {
		return nil, fmt.Errorf("parse deezer url: %w", err)
	}
	params := url.Values{}
	params.Set("q", name)
	endpoint.RawQuery = params.Encode()

	var page artistPage
	if err := c.getJSON(ctx, endpoint.String(), &page); err != nil {
		return nil, err
	}
	for _, artist := range page.Data {
		if artist.ID <= 0 || strings.TrimSpace(artist.Name) == "" {
			return nil, fmt.Errorf("malformed artist entry in search response (id=%d)", artist.ID)
		}
	}
	return page.Data, nil
}

// ArtistAlbums fetches the full album listing for an artist, following
// pagination links until the reported total is collected.
func (c *Client) ArtistAlbums(ctx context.Context, artistID int64) ([]Album, error) {
	if artistID <= 0 {
		return nil, errors.New("artist id must be positive")
	}

	next := fmt.Sprintf("%s/artist/%d/albums", c.baseURL, artistID)
	var albums []Album
	total := -1

	for pages := 0; next != "" && pages < followPageCap; pages++ {
		var page albumPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, album := range page.Data {
			if album.ID <= 0 || strings.TrimSpace(album.Title) == "" {
				return nil, fmt.Errorf("malformed album entry for artist %d (id=%d)", artistID, album.ID)
			}
		}
		albums = append(albums, page.Data...)
		if total < 0 {
			total = page.Total
		}
		if len(page.Data) == 0 || (total >= 0 && len(albums) >= total) {
			break
		}
		next = page.Next
	}
	return albums, nil
}

// getJSON performs a GET with the client's bounded retry policy and decodes
// the response body into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		lastErr = c.getJSONOnce(ctx, rawURL, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}

func (c *Client) getJSONOnce(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deezer returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode deezer response: %w", err)
	}
	return nil
}
