// Package logging provides the slog construction and helpers used across the
// daemon and CLI: a console handler for interactive use, a JSON handler for
// machine consumption, attribute helpers, and context-derived fields that keep
// job, segment, and phase identifiers attached to every record.
package logging
