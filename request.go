package volumetric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxRequestBytes bounds the size of a decoded navigation request.
const maxRequestBytes = 1 << 20

// NavigationRequest is the payload the agent sends to show a template.
//
// Props must be plain JSON data: they cross the agent/runtime boundary and
// are only interpreted by the target template's props contract.
type NavigationRequest struct {
	// ID identifies the request; assigned by the host when empty
	ID string `json:"id,omitempty"`

	// SessionID targets a browser session; empty targets the default session
	SessionID string `json:"sessionId,omitempty"`

	// TemplateKey selects the template
	TemplateKey string `json:"templateKey"`

	// Props is the JSON object handed to the template
	Props json.RawMessage `json:"props,omitempty"`
}

// Navigator accepts navigation requests from an agent bridge.
type Navigator interface {
	Navigate(ctx context.Context, req *NavigationRequest) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, req *NavigationRequest) error

// Navigate implements Navigator
func (f NavigatorFunc) Navigate(ctx context.Context, req *NavigationRequest) error {
	return f(ctx, req)
}

// DecodeNavigationRequest reads and validates a navigation request.
func DecodeNavigationRequest(r io.Reader) (*NavigationRequest, error) {
	var req NavigationRequest
	dec := json.NewDecoder(io.LimitReader(r, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	return &req, nil
}

// ParseNavigationRequest decodes a request from raw JSON bytes.
func ParseNavigationRequest(data []byte) (*NavigationRequest, error) {
	return DecodeNavigationRequest(bytes.NewReader(data))
}

// Normalize validates the request shape and replaces absent props with {}.
func (r *NavigationRequest) Normalize() error {
	r.TemplateKey = strings.TrimSpace(r.TemplateKey)
	if r.TemplateKey == "" {
		return fmt.Errorf("%w: templateKey is required", ErrInvalidRequest)
	}

	props := bytes.TrimSpace(r.Props)
	if len(props) == 0 || bytes.Equal(props, []byte("null")) {
		r.Props = json.RawMessage("{}")
		return nil
	}
	if props[0] != '{' || !json.Valid(props) {
		return fmt.Errorf("%w: props must be a JSON object", ErrInvalidRequest)
	}
	r.Props = json.RawMessage(props)
	return nil
}

// decodeProps decodes the request props into the component's props value
// and normalizes them.
func decodeProps(c Component, raw json.RawMessage) (Props, error) {
	props := c.NewProps()
	if props == nil {
		return nil, NewTemplateError("DecodeProps", c.Key(), ErrInvalidProps).
			WithContext("reason", "component returned nil props")
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, props); err != nil {
			return nil, NewTemplateError("DecodeProps", c.Key(), fmt.Errorf("%w: %v", ErrInvalidProps, err))
		}
	}
	if props.TemplateKey() != c.Key() {
		return nil, NewTemplateError("DecodeProps", c.Key(), ErrInvalidProps).
			WithContext("props_key", props.TemplateKey())
	}
	props.Normalize()
	return props, nil
}
