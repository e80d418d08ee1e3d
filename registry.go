package volumetric

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/youssefsiam38/volumetric/schema"
)

// Loader loads a component on first use.
type Loader func(ctx context.Context) (Component, error)

// TemplateDescriptor registers a template under a stable key.
// Descriptors are registered at process start and never mutated.
type TemplateDescriptor struct {
	// Key is the unique identifier used in navigation requests (required)
	Key string

	// Description tells the agent what the template shows
	Description string

	// Schema is the props contract, published before the component loads
	Schema schema.Object

	// Loader builds the component on first resolve (required)
	Loader Loader
}

// Validate validates the descriptor
func (d *TemplateDescriptor) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("%w: template key is required", ErrInvalidConfig)
	}
	if d.Loader == nil {
		return fmt.Errorf("%w: loader is required for %q", ErrInvalidConfig, d.Key)
	}
	if d.Schema.Type == "" {
		d.Schema = schema.NewObject(nil)
	}
	if d.Schema.Type != "object" {
		return fmt.Errorf("%w: schema type must be 'object' for %q", ErrInvalidConfig, d.Key)
	}
	return nil
}

// Registry maps template keys to lazily loaded components.
//
// The component cache is written once per key. Concurrent first resolves
// of the same key share a single loader call.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*TemplateDescriptor
	components  map[string]Component
	loads       singleflight.Group
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]*TemplateDescriptor),
		components:  make(map[string]Component),
	}
}

// Register adds a descriptor. Registering a key twice is a configuration
// error; the first registration is kept.
func (r *Registry) Register(desc *TemplateDescriptor) error {
	if desc == nil {
		return fmt.Errorf("%w: template descriptor is nil", ErrInvalidConfig)
	}
	if err := desc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[desc.Key]; exists {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrDuplicateTemplate, desc.Key)
	}

	r.descriptors[desc.Key] = desc
	return nil
}

// MustRegister is like Register but panics on error.
// This is useful for init() functions where errors should be fatal.
func (r *Registry) MustRegister(desc *TemplateDescriptor) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

// RegisterAll adds multiple descriptors, stopping at the first error
func (r *Registry) RegisterAll(descs ...*TemplateDescriptor) error {
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the component registered under key, loading it on the
// first call. Unknown keys return a *TemplateError wrapping
// ErrTemplateNotFound. Loader failures are not cached.
func (r *Registry) Resolve(ctx context.Context, key string) (Component, error) {
	ctx, span := tracer.Start(ctx, "volumetric.Registry.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("template.key", key))

	r.mu.RLock()
	desc, known := r.descriptors[key]
	comp, loaded := r.components[key]
	r.mu.RUnlock()

	if !known {
		err := NewTemplateError("Resolve", key, ErrTemplateNotFound)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if loaded {
		span.SetAttributes(attribute.Bool("template.cached", true))
		return comp, nil
	}

	v, err, _ := r.loads.Do(key, func() (any, error) {
		// A load that finished between our read and Do already cached it.
		r.mu.RLock()
		cached, ok := r.components[key]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		c, err := r.load(ctx, desc)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.components[key] = c
		r.mu.Unlock()
		return c, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v.(Component), nil
}

// load runs the loader, turning panics and key mismatches into errors.
func (r *Registry) load(ctx context.Context, desc *TemplateDescriptor) (c Component, err error) {
	defer func() {
		if p := recover(); p != nil {
			c = nil
			err = NewTemplateError("Load", desc.Key, fmt.Errorf("%w: panic: %v", ErrLoadFailed, p))
		}
	}()

	c, err = desc.Loader(ctx)
	if err != nil {
		return nil, NewTemplateError("Load", desc.Key, fmt.Errorf("%w: %w", ErrLoadFailed, err))
	}
	if c == nil {
		return nil, NewTemplateError("Load", desc.Key, fmt.Errorf("%w: loader returned nil component", ErrLoadFailed))
	}
	if c.Key() != desc.Key {
		return nil, NewTemplateError("Load", desc.Key, fmt.Errorf("%w: component key %q does not match", ErrLoadFailed, c.Key()))
	}
	return c, nil
}

// Descriptor returns the descriptor registered under key.
func (r *Registry) Descriptor(key string) (*TemplateDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[key]
	return d, ok
}

// Has reports whether key is registered
func (r *Registry) Has(key string) bool {
	_, ok := r.Descriptor(key)
	return ok
}

// Loaded reports whether the component for key has been loaded
func (r *Registry) Loaded(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[key]
	return ok
}

// Keys returns all registered keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.descriptors))
	for key := range r.descriptors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Descriptors returns all descriptors sorted by key
func (r *Registry) Descriptors() []*TemplateDescriptor {
	keys := r.Keys()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*TemplateDescriptor, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.descriptors[key])
	}
	return out
}

// Count returns the number of registered templates
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// Default registry - package-level and populated at init() time
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the package-level registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register registers a template descriptor in the default registry.
// This should be called at package init time before creating a Host.
//
// Example:
//
//	func init() {
//	    volumetric.MustRegister(&volumetric.TemplateDescriptor{
//	        Key:    "PricingCards",
//	        Loader: loadPricingCards,
//	    })
//	}
func Register(desc *TemplateDescriptor) error {
	return defaultRegistry.Register(desc)
}

// MustRegister is like Register but panics on error.
func MustRegister(desc *TemplateDescriptor) {
	defaultRegistry.MustRegister(desc)
}

// Resolve resolves a template from the default registry.
func Resolve(ctx context.Context, key string) (Component, error) {
	return defaultRegistry.Resolve(ctx, key)
}

// ListRegistered returns all keys in the default registry.
func ListRegistered() []string {
	return defaultRegistry.Keys()
}

// ClearRegistry clears the default registry.
// This is mainly useful for testing.
func ClearRegistry() {
	defaultRegistry.mu.Lock()
	defaultRegistry.descriptors = make(map[string]*TemplateDescriptor)
	defaultRegistry.components = make(map[string]Component)
	defaultRegistry.mu.Unlock()
}
