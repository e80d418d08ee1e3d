package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// FeatureGridProps are the props of the FeatureGrid template.
type FeatureGridProps struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Columns  int       `json:"columns"`
	Features []Feature `json:"features"`
}

// Feature is one grid cell.
type Feature struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Phrase      string `json:"phrase"`
}

func (p *FeatureGridProps) TemplateKey() string { return KeyFeatureGrid }

func (p *FeatureGridProps) Normalize() {
	if p.Title == "" {
		p.Title = "Features"
	}
	p.Columns = clampColumns(p.Columns, 3)
	if p.Features == nil {
		p.Features = []Feature{}
	}
}

func featureGrid() *volumetric.TemplateDescriptor {
	return define(KeyFeatureGrid,
		"Grid of feature cards with icon, title and description.",
		"feature_grid.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title":    schema.String("Section heading"),
			"subtitle": schema.String("Text under the heading"),
			"columns":  {Type: "integer", Description: "Columns, 1 to 4, default 3", Minimum: ptr(1.0), Maximum: ptr(4.0)},
			"features": schema.Array("Feature cards", schema.Struct("Feature", map[string]schema.PropertyDef{
				"icon":        schema.String("Emoji or short icon text"),
				"title":       schema.String("Feature name"),
				"description": schema.String("Feature summary"),
				"phrase":      schema.Phrase("What the user says when clicking the card"),
			})),
		}),
		func() *FeatureGridProps { return &FeatureGridProps{} },
	)
}
