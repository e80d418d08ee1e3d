package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// StatsGridProps are the props of the StatsGrid template.
type StatsGridProps struct {
	Title string `json:"title"`
	Stats []Stat `json:"stats"`
}

// Stat is one metric tile.
type Stat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Delta  string `json:"delta"`
	Trend  string `json:"trend"`
	Phrase string `json:"phrase"`
}

func (p *StatsGridProps) TemplateKey() string { return KeyStatsGrid }

func (p *StatsGridProps) Normalize() {
	if p.Title == "" {
		p.Title = "At a glance"
	}
	if p.Stats == nil {
		p.Stats = []Stat{}
	}
	for i := range p.Stats {
		s := &p.Stats[i]
		if s.Value == "" {
			s.Value = "-"
		}
		switch s.Trend {
		case "up", "down", "flat":
		default:
			s.Trend = "flat"
		}
	}
}

func statsGrid() *volumetric.TemplateDescriptor {
	return define(KeyStatsGrid,
		"Tiles of key numbers with optional change and trend.",
		"stats_grid.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title": schema.String("Section heading"),
			"stats": schema.Array("Metrics", schema.Struct("Metric", map[string]schema.PropertyDef{
				"label":  schema.String("Metric name"),
				"value":  schema.String("Display value, pre-formatted"),
				"delta":  schema.String("Change, pre-formatted, e.g. +12%"),
				"trend":  schema.Enum("Direction of change", "up", "down", "flat"),
				"phrase": schema.Phrase("What the user says when clicking the tile"),
			})),
		}),
		func() *StatsGridProps { return &StatsGridProps{} },
	)
}
