package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/internal/viz"
	"github.com/youssefsiam38/volumetric/schema"
)

// PieChartProps are the props of the PieChart template.
type PieChartProps struct {
	Title      string          `json:"title"`
	Unit       string          `json:"unit"`
	Slices     []PieSliceInput `json:"slices"`
	HideLegend bool            `json:"hideLegend"`
}

// PieSliceInput is one value of the chart.
type PieSliceInput struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Phrase string  `json:"phrase"`
}

// PieSegment is a laid out slice with its phrase.
type PieSegment struct {
	viz.Slice
	Phrase string
}

func (p *PieChartProps) TemplateKey() string { return KeyPieChart }

func (p *PieChartProps) Normalize() {
	if p.Title == "" {
		p.Title = "Breakdown"
	}
	if p.Slices == nil {
		p.Slices = []PieSliceInput{}
	}
}

// Segments lays out the slices. Zero and negative values are left out.
func (p *PieChartProps) Segments() []PieSegment {
	values := make([]float64, len(p.Slices))
	labels := make([]string, len(p.Slices))
	for i, s := range p.Slices {
		values[i] = s.Value
		labels[i] = s.Label
	}
	laid := viz.PieSlices(values, labels)
	out := make([]PieSegment, len(laid))
	for i, s := range laid {
		out[i] = PieSegment{Slice: s, Phrase: p.Slices[s.Index].Phrase}
	}
	return out
}

func pieChart() *volumetric.TemplateDescriptor {
	return define(KeyPieChart,
		"Pie chart with legend; each slice can be clicked to ask about it.",
		"pie_chart.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title":      schema.String("Chart title"),
			"unit":       schema.String("Unit shown after values, e.g. % or USD"),
			"hideLegend": schema.Bool("Hide the legend"),
			"slices": schema.Array("Chart values", schema.Struct("Slice", map[string]schema.PropertyDef{
				"label":  schema.String("Slice label"),
				"value":  schema.Number("Slice value; zero or negative values are not drawn"),
				"phrase": schema.Phrase("What the user says when clicking the slice"),
			})),
		}),
		func() *PieChartProps { return &PieChartProps{} },
	)
}
