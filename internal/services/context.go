package services

import "context"

type contextKey string

const (
	scanIDKey contextKey = "scan_id"
	artistKey contextKey = "artist"
)

// WithScanID annotates context with the scan run identifier.
func WithScanID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, scanIDKey, id)
}

// ScanIDFromContext extracts the scan run identifier if present.
func ScanIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(scanIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithArtist annotates context with the raw artist name being processed.
func WithArtist(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, artistKey, name)
}

// ArtistFromContext returns the artist name if present.
func ArtistFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(artistKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
