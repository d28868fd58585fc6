package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrInvalidSubmission is returned when the form still has errors after
	// the user declines to fix them or runs out of attempts.
	ErrInvalidSubmission = errors.New("tui: submission has errors")
	// ErrUnknownOutputFormat is returned for unsupported output formats.
	ErrUnknownOutputFormat = errors.New("tui: unknown output format")
	// ErrNoDriver is returned when no prompt driver is configured.
	ErrNoDriver = errors.New("tui: prompt driver is nil")
)
