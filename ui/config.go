package ui

import (
	"time"

	"github.com/youssefsiam38/volumetric"
)

// Default configuration values.
const (
	DefaultKeepAlive   = 15 * time.Second
	DefaultActionRate  = 2.0
	DefaultActionBurst = 5
	DefaultAPIPrefix   = "/api"
	DefaultTitle       = "Volumetric"
)

// Config holds UI package configuration.
type Config struct {
	// BasePath is the URL prefix where the UI is mounted.
	// For example, if mounted at "/ui/", set BasePath to "/ui".
	// All links and HTMX endpoints will be prefixed with this path.
	// Defaults to empty string (root mount).
	BasePath string

	// Title is the page title. Defaults to "Volumetric".
	Title string

	// ReadOnly disables navigation, actions and session creation.
	// Useful for display-only deployments.
	ReadOnly bool

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger volumetric.Logger

	// KeepAlive is the interval between SSE keep-alive comments.
	// Defaults to 15 seconds.
	KeepAlive time.Duration

	// ActionRate is the number of action phrases per second allowed per
	// session, shared by the page and the API. Defaults to 2; negative
	// disables limiting.
	ActionRate float64

	// ActionBurst is the per-session burst. Defaults to 5.
	ActionBurst int

	// APIPrefix is where Handler mounts the JSON API. Defaults to "/api".
	APIPrefix string
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		KeepAlive:   DefaultKeepAlive,
		ActionRate:  DefaultActionRate,
		ActionBurst: DefaultActionBurst,
		APIPrefix:   DefaultAPIPrefix,
		Title:       DefaultTitle,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.KeepAlive == 0 {
		c.KeepAlive = DefaultKeepAlive
	}
	if c.ActionRate == 0 {
		c.ActionRate = DefaultActionRate
	}
	if c.ActionBurst == 0 {
		c.ActionBurst = DefaultActionBurst
	}
	if c.APIPrefix == "" {
		c.APIPrefix = DefaultAPIPrefix
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if c.KeepAlive < time.Second {
		return ErrInvalidConfig
	}
	if c.ActionBurst < 1 {
		return ErrInvalidConfig
	}
	if c.APIPrefix[0] != '/' || c.APIPrefix == "/" {
		return ErrInvalidConfig
	}
	return nil
}
