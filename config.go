package volumetric

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Default configuration values.
const (
	DefaultQueueSize       = 64
	DefaultDeliveryTimeout = 30 * time.Second
	DefaultMaxPhraseLength = 512
)

// Logger interface for structured logging.
// Arguments are slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Config holds the configuration shared by the Host and the Dispatcher.
//
// Example:
//
//	host, _ := volumetric.NewHost(registry, &volumetric.Config{
//	    StrictProps: true,
//	    Logger:      logger,
//	})
type Config struct {
	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger

	// StrictProps renders the fallback panel when props violate the
	// template's schema. When false, violations are logged and the
	// component renders with its defaults.
	StrictProps bool

	// QueueSize is the number of phrases the dispatcher buffers between
	// Notify and delivery. Defaults to 64.
	QueueSize int

	// DeliveryTimeout bounds a single bridge delivery.
	// Defaults to 30 seconds.
	DeliveryTimeout time.Duration

	// MaxPhraseLength caps the length of an action phrase in bytes.
	// Defaults to 512.
	MaxPhraseLength int

	// MeterProvider records render metrics.
	// Defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		QueueSize:       DefaultQueueSize,
		DeliveryTimeout: DefaultDeliveryTimeout,
		MaxPhraseLength: DefaultMaxPhraseLength,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.DeliveryTimeout == 0 {
		c.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if c.MaxPhraseLength == 0 {
		c.MaxPhraseLength = DefaultMaxPhraseLength
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	if c.MeterProvider == nil {
		c.MeterProvider = otel.GetMeterProvider()
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.DeliveryTimeout < time.Millisecond {
		return fmt.Errorf("%w: delivery timeout too small: %s", ErrInvalidConfig, c.DeliveryTimeout)
	}
	if c.MaxPhraseLength < 1 {
		return fmt.Errorf("%w: max phrase length must be positive", ErrInvalidConfig)
	}
	return nil
}

// resolveConfig copies cfg (or the defaults), applies options and validates.
func resolveConfig(cfg *Config, opts []Option) (*Config, error) {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return nil, err
		}
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
