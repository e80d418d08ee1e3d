package catalog

import "github.com/youssefsiam38/volumetric/schema"

// CTA is a call-to-action button.
type CTA struct {
	Label  string `json:"label"`
	Phrase string `json:"phrase"`
}

// Normalize fills in a missing label or phrase from the other. A CTA with
// neither is not rendered.
func (c *CTA) Normalize() {
	if c.Phrase == "" {
		c.Phrase = c.Label
	}
	if c.Label == "" {
		c.Label = c.Phrase
	}
}

// Visible reports whether the CTA should render.
func (c CTA) Visible() bool {
	return c.Label != ""
}

// withDefault normalizes c, falling back to label and phrase when empty.
func (c *CTA) withDefault(label, phrase string) {
	if c.Label == "" && c.Phrase == "" {
		c.Label, c.Phrase = label, phrase
	}
	c.Normalize()
}

func ctaSchema(description string) schema.PropertyDef {
	return schema.Struct(description, map[string]schema.PropertyDef{
		"label":  schema.String("Button text"),
		"phrase": schema.Phrase("What the user says when clicking"),
	})
}

func clampColumns(n, def int) int {
	if n <= 0 {
		return def
	}
	return min(n, 4)
}

func ptr[T any](v T) *T { return &v }
