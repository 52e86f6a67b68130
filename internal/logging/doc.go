// Package logging wires log/slog for the scanner: a console handler that
// renders one line per record with a component prefix and k=v attributes, a
// JSON handler for machine consumption, component loggers, and helpers that
// derive standard fields (scan_id, artist) from context.
package logging
