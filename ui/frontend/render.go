package frontend

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// renderer handles template rendering.
type renderer struct {
	baseTemplate *template.Template // Base template with layout and shared fragments
	templatesFS  fs.FS              // Embedded filesystem for page templates
	config       *Config
}

// newRenderer creates a new renderer.
func newRenderer(baseTemplate *template.Template, templatesFS fs.FS, cfg *Config) *renderer {
	return &renderer{
		baseTemplate: baseTemplate,
		templatesFS:  templatesFS,
		config:       cfg,
	}
}

// PageData contains common data for all pages.
type PageData struct {
	Title     string
	BasePath  string
	SessionID string
	ReadOnly  bool
	Data      any
}

// StageData feeds the session page and the empty stage fragment.
type StageData struct {
	Panel template.HTML
	Empty bool
}

// render renders a page inside the base layout.
// It clones the base template and parses the page-specific template into it,
// avoiding conflicts between "content" blocks in different pages.
func (r *renderer) render(w http.ResponseWriter, sessionID, name string, data any) error {
	pageData := PageData{
		Title:     r.config.Title,
		BasePath:  r.config.BasePath,
		SessionID: sessionID,
		ReadOnly:  r.config.ReadOnly,
		Data:      data,
	}

	// Clone the base template to avoid conflicts between page "content" blocks
	tmpl, err := r.baseTemplate.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}

	// Parse the page-specific template into the clone
	pageTemplatePath := "templates/" + name
	if _, err := tmpl.ParseFS(r.templatesFS, pageTemplatePath); err != nil {
		return fmt.Errorf("parse page template %s: %w", pageTemplatePath, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", pageData)
}

// renderFragment renders a shared fragment (no layout).
// The base template is cloned because an executed template cannot be
// cloned again.
func (r *renderer) renderFragment(w http.ResponseWriter, name string, data any) error {
	tmpl, err := r.baseTemplate.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, name, data)
}
