// Package namekey derives normalized comparison keys from raw artist and
// album names. Keys exist only for equality and lookup, never for display.
// Two names with equal keys are treated as the same identity; collisions are
// an accepted limitation of best-effort matching.
package namekey
