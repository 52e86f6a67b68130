package testsupport

import (
	"path/filepath"
	"testing"

	"cratescan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "music")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDeezerBaseURL points the provider client at a stub server.
func WithDeezerBaseURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Deezer.BaseURL = url
	}
}

// WithWorkers overrides the reconciliation worker count.
func WithWorkers(n int) ConfigOption {
	return func(c *config.Config) {
		c.Scan.Workers = n
	}
}
