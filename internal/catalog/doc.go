// Package catalog persists the canonical artist/album metadata and the
// append-only scan audit trail in SQLite.
//
// Artists and albums are keyed by the provider identifier and upserted
// lazily: created on first resolution, refreshed when the provider returns
// newer data, never deleted by a scan. Scan results are write-once rows
// holding the serialized report for each completed run.
package catalog
