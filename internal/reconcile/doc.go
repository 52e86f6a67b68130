// Package reconcile diffs the local music library against the catalog.
//
// A run walks the library once, resolves every artist folder through the
// per-run resolution cache, computes each artist's matched, missing, and
// extra-local album sets, and appends the full report to the scan audit
// table. Runs are read-only with respect to the library itself except for
// optional artist image downloads.
package reconcile
