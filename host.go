package volumetric

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/youssefsiam38/volumetric/schema"
)

// FallbackKind classifies why the fallback panel was rendered.
type FallbackKind string

const (
	FallbackUnknownTemplate FallbackKind = "unknown_template"
	FallbackLoadFailed      FallbackKind = "load_failed"
	FallbackInvalidProps    FallbackKind = "invalid_props"
	FallbackRenderFailed    FallbackKind = "render_failed"
)

// RenderResult describes a single render.
type RenderResult struct {
	Key        string             `json:"templateKey"`
	RequestID  string             `json:"requestId"`
	Fallback   bool               `json:"fallback"`
	Kind       FallbackKind       `json:"fallbackKind,omitempty"`
	Err        error              `json:"-"`
	Violations []schema.Violation `json:"violations,omitempty"`
	Duration   time.Duration      `json:"duration"`
	Bytes      int                `json:"bytes"`
}

// TemplateInfo describes a registered template for the agent-facing catalog.
type TemplateInfo struct {
	Key         string         `json:"key"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
	Loaded      bool           `json:"loaded"`
}

// Host renders navigation requests. It is safe for concurrent use.
//
// Failures are contained at the component boundary: every error class
// (unknown key, load failure, malformed props, component panic) produces
// the fallback panel and a RenderResult describing it, never a panic.
type Host struct {
	registry *Registry
	config   *Config
	assets   AssetResolver
	metrics  *hostMetrics

	schemaMu sync.Mutex
	schemas  map[string]*schema.Compiled
}

// NewHost creates a host rendering templates from registry.
// If registry is nil, the default registry is used.
func NewHost(registry *Registry, cfg *Config, opts ...Option) (*Host, error) {
	c, err := resolveConfig(cfg, opts)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		registry = defaultRegistry
	}
	return &Host{
		registry: registry,
		config:   c,
		metrics:  newHostMetrics(c.MeterProvider),
		schemas:  make(map[string]*schema.Compiled),
	}, nil
}

// SetAssets sets the resolver used by views that do not carry one.
func (h *Host) SetAssets(r AssetResolver) {
	h.assets = r
}

// Registry returns the host's registry
func (h *Host) Registry() *Registry {
	return h.registry
}

// Config returns the host's resolved configuration
func (h *Host) Config() *Config {
	return h.config
}

// Render renders req into w. The returned result reports whether the
// fallback panel was used and why. Output is buffered so a failing
// component never emits a partial panel.
//
// req is not modified. A request without an id is rendered under a fresh
// one, reported in RenderResult.RequestID. A nil request renders the
// unknown-template fallback.
func (h *Host) Render(ctx context.Context, w io.Writer, req *NavigationRequest, view *View) *RenderResult {
	start := time.Now()

	var local NavigationRequest
	if req != nil {
		local = *req
	}
	if local.ID == "" {
		local.ID = uuid.NewString()
	}
	req = &local

	ctx, span := tracer.Start(ctx, "volumetric.Host.Render")
	defer span.End()
	span.SetAttributes(
		attribute.String("template.key", req.TemplateKey),
		attribute.String("request.id", req.ID),
	)

	v := View{}
	if view != nil {
		v = *view
	}
	v.TemplateKey = req.TemplateKey
	v.RequestID = req.ID
	if v.Assets == nil {
		v.Assets = h.assets
	}

	result := &RenderResult{Key: req.TemplateKey, RequestID: req.ID}

	var body bytes.Buffer
	if err := h.renderComponent(ctx, &body, req, &v, result); err != nil {
		result.Fallback = true
		result.Err = err
		if result.Kind == "" {
			result.Kind = FallbackRenderFailed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		level := h.config.Logger.Warn
		if result.Kind == FallbackRenderFailed {
			level = h.config.Logger.Error
		}
		level("rendering fallback panel",
			"template", req.TemplateKey,
			"request_id", req.ID,
			"kind", string(result.Kind),
			"error", err,
		)

		body.Reset()
		if ferr := renderFallback(&body, req, result); ferr != nil {
			h.config.Logger.Error("fallback panel failed", "error", ferr)
		}
	}

	var out bytes.Buffer
	if err := panelTemplate.Execute(&out, panelData{
		RequestID: req.ID,
		Key:       req.TemplateKey,
		Fallback:  result.Fallback,
		Body:      template.HTML(body.String()),
	}); err != nil {
		// The wrapper is static; only a broken writer gets here.
		out.Reset()
		out.Write(body.Bytes())
	}

	n, err := w.Write(out.Bytes())
	result.Bytes = n
	if err != nil && result.Err == nil {
		result.Err = err
	}
	result.Duration = time.Since(start)
	span.SetAttributes(attribute.Bool("render.fallback", result.Fallback))
	h.metrics.record(ctx, result)
	return result
}

// renderComponent resolves, decodes, validates and renders. Panics in the
// component are recovered into ErrRenderFailed.
func (h *Host) renderComponent(ctx context.Context, w io.Writer, req *NavigationRequest, view *View, result *RenderResult) (err error) {
	comp, err := h.registry.Resolve(ctx, req.TemplateKey)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			result.Kind = FallbackUnknownTemplate
		} else {
			result.Kind = FallbackLoadFailed
		}
		return err
	}

	if compiled := h.compiledSchema(comp); compiled != nil {
		result.Violations = compiled.Validate(req.Props)
		if len(result.Violations) > 0 {
			if h.config.StrictProps {
				result.Kind = FallbackInvalidProps
				return NewTemplateError("Validate", comp.Key(), ErrInvalidProps).
					WithContext("violations", result.Violations)
			}
			h.config.Logger.Warn("props violate template contract, rendering with defaults",
				"template", comp.Key(),
				"violations", len(result.Violations),
				"first", result.Violations[0].String(),
			)
		}
	}

	props, err := decodeProps(comp, req.Props)
	if err != nil {
		result.Kind = FallbackInvalidProps
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			result.Kind = FallbackRenderFailed
			err = NewTemplateError("Render", comp.Key(), fmt.Errorf("%w: panic: %v", ErrRenderFailed, p)).
				WithContext("stack", string(debug.Stack()))
		}
	}()

	if err := comp.Render(w, props, view); err != nil {
		result.Kind = FallbackRenderFailed
		return NewTemplateError("Render", comp.Key(), fmt.Errorf("%w: %w", ErrRenderFailed, err))
	}
	return nil
}

// compiledSchema returns the compiled props schema of comp, compiling it on
// first use. A schema that fails to compile disables validation for the
// template.
func (h *Host) compiledSchema(comp Component) *schema.Compiled {
	h.schemaMu.Lock()
	defer h.schemaMu.Unlock()

	if c, ok := h.schemas[comp.Key()]; ok {
		return c
	}
	c, err := schema.Compile(comp.Schema())
	if err != nil {
		h.config.Logger.Error("props schema does not compile, validation disabled",
			"template", comp.Key(),
			"error", err,
		)
		c = nil
	}
	h.schemas[comp.Key()] = c
	return c
}

// Describe lists every registered template for the agent.
func (h *Host) Describe() []TemplateInfo {
	descs := h.registry.Descriptors()
	out := make([]TemplateInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, TemplateInfo{
			Key:         d.Key,
			Description: d.Description,
			Schema:      d.Schema.Document(),
			Loaded:      h.registry.Loaded(d.Key),
		})
	}
	return out
}

// DescribeTemplate returns the catalog entry for key.
func (h *Host) DescribeTemplate(key string) (TemplateInfo, error) {
	d, ok := h.registry.Descriptor(key)
	if !ok {
		return TemplateInfo{}, NewTemplateError("Describe", key, ErrTemplateNotFound)
	}
	return TemplateInfo{
		Key:         d.Key,
		Description: d.Description,
		Schema:      d.Schema.Document(),
		Loaded:      h.registry.Loaded(d.Key),
	}, nil
}
