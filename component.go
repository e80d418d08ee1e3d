package volumetric

import (
	"html/template"
	"io"

	"github.com/youssefsiam38/volumetric/schema"
)

// Component is a named presentational unit the agent can request.
//
// A component is a pure function from props to HTML. Its only externally
// observable side effects are action bindings (rendered through View.Action)
// and asset lookups (through View.Assets).
type Component interface {
	// Key returns the template key used in navigation requests
	Key() string

	// Description tells the agent what the template shows
	Description() string

	// Schema returns the props contract
	Schema() schema.Object

	// NewProps returns a zero props value to decode the request into
	NewProps() Props

	// Render writes the panel for props. Props are always normalized
	// before Render is called.
	Render(w io.Writer, props Props, view *View) error
}

// Props is implemented by every template's props struct.
//
// Together with the template key, the concrete props type forms the tagged
// union of requests the host understands: each key decodes into exactly one
// props type.
type Props interface {
	// TemplateKey returns the key of the template the props belong to
	TemplateKey() string

	// Normalize replaces missing collections and zero values with defaults.
	// Missing data is treated as empty, never as fatal.
	Normalize()
}

// AssetResolver resolves asset identifiers for templates.
type AssetResolver interface {
	Resolve(id string) AssetResolution
}

// AssetResolution is the outcome of resolving an asset identifier: either a
// pre-registered local file or a prompt for generating the image.
type AssetResolution struct {
	// ID is the requested identifier
	ID string `json:"id"`

	// LocalPath is the file backing a registered asset
	LocalPath string `json:"localPath,omitempty"`

	// URL is where the host serves the registered asset
	URL string `json:"url,omitempty"`

	// Generate is true when the identifier is not registered and should be
	// treated as a generation prompt
	Generate bool `json:"generate,omitempty"`

	// Prompt is the generation prompt (the identifier itself)
	Prompt string `json:"prompt,omitempty"`
}

// Placeholder reports whether the template should render a placeholder
// instead of an image.
func (r AssetResolution) Placeholder() bool {
	return r.URL == ""
}

// promptResolver treats every identifier as a generation prompt.
type promptResolver struct{}

func (promptResolver) Resolve(id string) AssetResolution {
	return AssetResolution{ID: id, Generate: id != "", Prompt: id}
}

// View carries per-render context into a component.
type View struct {
	// SessionID is the browser session the panel is rendered for
	SessionID string

	// RequestID identifies the navigation request being rendered
	RequestID string

	// TemplateKey is the key of the template being rendered
	TemplateKey string

	// BasePath is the URL prefix the UI is mounted under
	BasePath string

	// Assets resolves asset identifiers. Defaults to treating every
	// identifier as a generation prompt.
	Assets AssetResolver
}

// ActionPath returns the endpoint action phrases are posted to.
func (v *View) ActionPath() string {
	return v.BasePath + "/s/" + v.SessionID + "/action"
}

// Action returns the HTML attributes binding a click to phrase.
// An empty phrase yields no attributes: the element is non-interactive.
func (v *View) Action(phrase string) template.HTMLAttr {
	return actionAttrs(v, phrase)
}

// Asset resolves an asset identifier through the view's resolver.
func (v *View) Asset(id string) AssetResolution {
	if v.Assets == nil {
		return promptResolver{}.Resolve(id)
	}
	return v.Assets.Resolve(id)
}
