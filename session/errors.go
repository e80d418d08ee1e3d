package session

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids
	ErrSessionNotFound = errors.New("session not found")

	// ErrSuperseded is returned when a newer navigation replaced the one
	// being rendered; its panel is discarded
	ErrSuperseded = errors.New("navigation superseded")

	// ErrNoPanel is returned when a session has not been shown anything yet
	ErrNoPanel = errors.New("session has no panel")

	// ErrClosed is returned after the manager is closed
	ErrClosed = errors.New("session manager closed")
)
