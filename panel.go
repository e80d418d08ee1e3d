package volumetric

import (
	"html/template"
	"io"
)

// panelData is the wrapper every rendered panel is placed in.
type panelData struct {
	RequestID string
	Key       string
	Fallback  bool
	Body      template.HTML
}

// panelTemplate wraps a panel in a polite live region so screen readers
// announce panel changes pushed by the agent.
var panelTemplate = template.Must(template.New("panel").Parse(
	`<section class="vol-panel{{if .Fallback}} vol-panel--fallback{{end}}" id="panel-{{.RequestID}}" data-template="{{.Key}}" data-request-id="{{.RequestID}}" aria-live="polite" aria-atomic="true">{{.Body}}</section>`,
))

// fallbackData feeds the fallback panel.
type fallbackData struct {
	Key  string
	Kind FallbackKind
}

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<div class="vol-fallback" role="status" data-fallback-kind="{{.Kind}}">
  {{- if eq .Kind "unknown_template"}}
  <p class="vol-fallback__title">This view isn't available.</p>
  <p class="vol-fallback__detail">No template named “{{.Key}}” is installed.</p>
  {{- else if eq .Kind "invalid_props"}}
  <p class="vol-fallback__title">This view couldn't be shown.</p>
  <p class="vol-fallback__detail">The content sent for “{{.Key}}” was incomplete or malformed.</p>
  {{- else}}
  <p class="vol-fallback__title">Something went wrong showing this view.</p>
  <p class="vol-fallback__detail">“{{.Key}}” failed to render.</p>
  {{- end}}
</div>`))

// renderFallback writes the fallback panel body for a failed render.
func renderFallback(w io.Writer, req *NavigationRequest, result *RenderResult) error {
	return fallbackTemplate.Execute(w, fallbackData{Key: req.TemplateKey, Kind: result.Kind})
}
