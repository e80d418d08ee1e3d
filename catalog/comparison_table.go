package catalog

import (
	"strings"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// ComparisonTableProps are the props of the ComparisonTable template.
type ComparisonTableProps struct {
	Title   string             `json:"title"`
	Columns []ComparisonColumn `json:"columns"`
	Rows    []ComparisonRow    `json:"rows"`
}

// ComparisonColumn is an option being compared.
type ComparisonColumn struct {
	Name        string `json:"name"`
	Highlighted bool   `json:"highlighted"`
	Phrase      string `json:"phrase"`
}

// ComparisonRow is one compared attribute, one value per column.
type ComparisonRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// ComparisonCell is a rendered table cell. Mark is "yes" or "no" for
// boolean-like values and empty otherwise.
type ComparisonCell struct {
	Text string
	Mark string
}

// Cells classifies the row values for display.
func (r ComparisonRow) Cells() []ComparisonCell {
	cells := make([]ComparisonCell, len(r.Values))
	for i, v := range r.Values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "✓", "included":
			cells[i] = ComparisonCell{Text: "Included", Mark: "yes"}
		case "no", "false", "✗", "-", "":
			cells[i] = ComparisonCell{Text: "Not included", Mark: "no"}
		default:
			cells[i] = ComparisonCell{Text: v}
		}
	}
	return cells
}

func (p *ComparisonTableProps) TemplateKey() string { return KeyComparisonTable }

func (p *ComparisonTableProps) Normalize() {
	if p.Title == "" {
		p.Title = "Compare options"
	}
	if p.Columns == nil {
		p.Columns = []ComparisonColumn{}
	}
	if p.Rows == nil {
		p.Rows = []ComparisonRow{}
	}
	for i := range p.Columns {
		c := &p.Columns[i]
		if c.Phrase == "" && c.Name != "" {
			c.Phrase = "Tell me more about " + c.Name
		}
	}
	// every row gets exactly one value per column
	n := len(p.Columns)
	for i := range p.Rows {
		r := &p.Rows[i]
		switch {
		case len(r.Values) > n:
			r.Values = r.Values[:n]
		case len(r.Values) < n:
			r.Values = append(r.Values, make([]string, n-len(r.Values))...)
		}
	}
}

func comparisonTable() *volumetric.TemplateDescriptor {
	return define(KeyComparisonTable,
		"Table comparing options column by column; column headers are clickable.",
		"comparison_table.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title": schema.String("Table caption"),
			"columns": schema.Array("Options being compared", schema.Struct("Option", map[string]schema.PropertyDef{
				"name":        schema.String("Option name"),
				"highlighted": schema.Bool("Emphasize this option"),
				"phrase":      schema.Phrase("What the user says when clicking the option"),
			})),
			"rows": schema.Array("Compared attributes", schema.Struct("Row", map[string]schema.PropertyDef{
				"label":  schema.String("Attribute name"),
				"values": schema.Array("One value per column; yes/no render as marks", schema.String("Value")),
			})),
		}),
		func() *ComparisonTableProps { return &ComparisonTableProps{} },
	)
}
