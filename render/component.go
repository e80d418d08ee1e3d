// Package render executes panel templates.
//
// Panels are html/template files parsed with the Funcs helpers. A
// Definition ties a parsed template to a typed props struct and produces the
// registry descriptor whose loader parses the files on first resolve.
package render

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// Parse parses the panel template at file together with any shared
// partials. The template is named after the base name of file.
func Parse(fsys fs.FS, file string, partials ...string) (*template.Template, error) {
	tmpl, err := template.New(path.Base(file)).
		Funcs(Funcs()).
		ParseFS(fsys, append([]string{file}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", file, err)
	}
	return tmpl, nil
}

// Definition declares a template backed by an html/template file.
type Definition[P volumetric.Props] struct {
	Key         string
	Description string
	Schema      schema.Object

	// FS holds File and Partials
	FS       fs.FS
	File     string
	Partials []string

	// NewProps returns a zero props value for Key
	NewProps func() P
}

// Descriptor returns the registry descriptor for d. The template files are
// parsed when the registry first resolves the key.
func (d Definition[P]) Descriptor() *volumetric.TemplateDescriptor {
	return &volumetric.TemplateDescriptor{
		Key:         d.Key,
		Description: d.Description,
		Schema:      d.Schema,
		Loader:      d.Load,
	}
}

// Load parses the template files and returns the component.
func (d Definition[P]) Load(ctx context.Context) (volumetric.Component, error) {
	if d.NewProps == nil {
		return nil, fmt.Errorf("template %q: no props constructor", d.Key)
	}
	tmpl, err := Parse(d.FS, d.File, d.Partials...)
	if err != nil {
		return nil, err
	}
	return &Component[P]{def: d, tmpl: tmpl}, nil
}

// Component adapts a parsed template and a typed props struct to
// volumetric.Component. The props value is the template's dot.
type Component[P volumetric.Props] struct {
	def  Definition[P]
	tmpl *template.Template
}

// NewComponent wraps an already parsed template.
func NewComponent[P volumetric.Props](d Definition[P], tmpl *template.Template) *Component[P] {
	return &Component[P]{def: d, tmpl: tmpl}
}

func (c *Component[P]) Key() string           { return c.def.Key }
func (c *Component[P]) Description() string   { return c.def.Description }
func (c *Component[P]) Schema() schema.Object { return c.def.Schema }

// NewProps returns a zero props value.
func (c *Component[P]) NewProps() volumetric.Props { return c.def.NewProps() }

// Render executes a clone of the template with the view-bound helpers.
// The parsed template itself is never executed, so it can be cloned for
// every render.
func (c *Component[P]) Render(w io.Writer, props volumetric.Props, view *volumetric.View) error {
	p, ok := props.(P)
	if !ok {
		return fmt.Errorf("template %q: unexpected props type %T", c.def.Key, props)
	}
	tmpl, err := c.tmpl.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}
	return tmpl.Funcs(ViewFuncs(view)).Execute(w, p)
}
