package volumetric

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the host or registry configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// =========================================================================
	// Registry errors
	// =========================================================================

	// ErrTemplateNotFound is returned when a template key is not registered
	ErrTemplateNotFound = errors.New("unknown template")

	// ErrDuplicateTemplate is returned when a template key is registered twice
	ErrDuplicateTemplate = errors.New("template already registered")

	// ErrLoadFailed is returned when a template loader fails
	ErrLoadFailed = errors.New("template load failed")

	// =========================================================================
	// Request errors
	// =========================================================================

	// ErrInvalidRequest is returned when a navigation request is malformed
	ErrInvalidRequest = errors.New("invalid navigation request")

	// ErrInvalidProps is returned when props cannot be decoded into the
	// template's props contract
	ErrInvalidProps = errors.New("invalid template props")

	// ErrInvalidPhrase is returned when an action phrase is empty or too long
	ErrInvalidPhrase = errors.New("invalid action phrase")

	// ErrRenderFailed is returned when a component fails while rendering
	ErrRenderFailed = errors.New("template render failed")

	// =========================================================================
	// Dispatch errors
	// =========================================================================

	// ErrBridgeUnavailable is reported when a phrase is dropped because no
	// bridge is attached
	ErrBridgeUnavailable = errors.New("agent bridge unavailable")

	// ErrDispatcherStarted is returned when Start() is called twice
	ErrDispatcherStarted = errors.New("dispatcher already started")

	// ErrDispatcherStopped is returned when Stop() is called on a dispatcher
	// that is not running
	ErrDispatcherStopped = errors.New("dispatcher not started")
)

// TemplateError represents an error with additional context
type TemplateError struct {
	Op      string         // Operation that failed
	Key     string         // Template key if applicable
	Err     error          // Underlying error
	Context map[string]any // Additional context
}

// Error implements the error interface
func (e *TemplateError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s (template=%s): %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// WithContext adds additional context to the error
func (e *TemplateError) WithContext(key string, value any) *TemplateError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewTemplateError creates a new TemplateError
func NewTemplateError(op, key string, err error) *TemplateError {
	return &TemplateError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

// IsNotFound reports whether err means the requested template is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
