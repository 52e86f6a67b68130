// Package config loads and validates the cratescan configuration.
//
// Configuration comes from a TOML file (default ~/.config/cratescan/config.toml,
// with ./cratescan.toml as a project-local fallback), optionally overlaid by a
// .env file and environment variables (CRATESCAN_LIBRARY_DIR,
// CRATESCAN_DATA_DIR, DEEZER_BASE_URL). Loading normalizes paths (~ expansion,
// absolute), fills defaults, and validates before anything else runs.
package config
