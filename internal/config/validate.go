package config

import (
	"errors"
	"fmt"
	"strings"
)

var validRecordTypes = map[string]struct{}{
	"album":   {},
	"single":  {},
	"ep":      {},
	"compile": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDeezer(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateDeezer() error {
	if !strings.HasPrefix(c.Deezer.BaseURL, "http://") && !strings.HasPrefix(c.Deezer.BaseURL, "https://") {
		return fmt.Errorf("deezer.base_url must be an http(s) URL, got %q", c.Deezer.BaseURL)
	}
	if c.Deezer.RetryAttempts > 5 {
		return errors.New("deezer.retry_attempts must be 5 or fewer")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers > 32 {
		return errors.New("scan.workers must be 32 or fewer")
	}
	for _, rt := range c.Scan.RecordTypes {
		if _, ok := validRecordTypes[rt]; !ok {
			return fmt.Errorf("scan.record_types: unknown record type %q", rt)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
