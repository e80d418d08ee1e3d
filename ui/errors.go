package ui

import "errors"

// UI package errors.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("ui: invalid configuration")

	// ErrMissingDependency indicates a required dependency is nil.
	ErrMissingDependency = errors.New("ui: missing dependency")
)
