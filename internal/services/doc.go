// Package services defines shared plumbing consumed across the scan pipeline.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     (not-found vs transient vs store vs filesystem) so the engine and CLI
//     can decide what degrades a report entry and what aborts the run.
//   - Context helpers that stamp scan IDs and artist names for logging.
package services
