package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDeezer()
	c.normalizeScan()
	c.normalizeArtwork()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDeezer() {
	c.Deezer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Deezer.BaseURL), "/")
	if c.Deezer.BaseURL == "" {
		c.Deezer.BaseURL = defaultDeezerBaseURL
	}
	if c.Deezer.RequestTimeout <= 0 {
		c.Deezer.RequestTimeout = defaultRequestTimeout
	}
	if c.Deezer.RetryAttempts <= 0 {
		c.Deezer.RetryAttempts = defaultRetryAttempts
	}
	if c.Deezer.RetryDelayMS <= 0 {
		c.Deezer.RetryDelayMS = defaultRetryDelayMS
	}
}

func (c *Config) normalizeScan() {
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = defaultScanWorkers
	}
	if len(c.Scan.RecordTypes) == 0 {
		c.Scan.RecordTypes = []string{"album"}
	}
	normalized := make([]string, 0, len(c.Scan.RecordTypes))
	for _, rt := range c.Scan.RecordTypes {
		rt = strings.ToLower(strings.TrimSpace(rt))
		if rt != "" {
			normalized = append(normalized, rt)
		}
	}
	c.Scan.RecordTypes = normalized
}

func (c *Config) normalizeArtwork() {
	c.Artwork.Filename = strings.TrimSpace(c.Artwork.Filename)
	if c.Artwork.Filename == "" {
		c.Artwork.Filename = defaultArtworkName
	}
	if c.Artwork.Timeout <= 0 {
		c.Artwork.Timeout = defaultArtworkTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
