package volumetric

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Option is a functional option applied on top of a Config
type Option func(*Config) error

// WithLogger sets the structured logger
func WithLogger(l Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// WithStrictProps makes schema violations render the fallback panel
func WithStrictProps(strict bool) Option {
	return func(c *Config) error {
		c.StrictProps = strict
		return nil
	}
}

// WithQueueSize sets the dispatcher buffer size
func WithQueueSize(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: queue size must be positive, got %d", ErrInvalidConfig, n)
		}
		c.QueueSize = n
		return nil
	}
}

// WithDeliveryTimeout bounds a single bridge delivery
func WithDeliveryTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("%w: delivery timeout must be positive", ErrInvalidConfig)
		}
		c.DeliveryTimeout = d
		return nil
	}
}

// WithMaxPhraseLength caps action phrase length in bytes
func WithMaxPhraseLength(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: max phrase length must be positive", ErrInvalidConfig)
		}
		c.MaxPhraseLength = n
		return nil
	}
}

// WithMeterProvider sets the provider render metrics are recorded on
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) error {
		c.MeterProvider = mp
		return nil
	}
}
