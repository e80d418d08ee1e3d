// Package viz holds the presentational math behind chart and timer
// templates.
package viz

import (
	"fmt"
	"math"
	"strconv"
)

// Palette is cycled through for slice colors.
var Palette = []string{
	"#4f46e5", "#0ea5e9", "#10b981", "#f59e0b",
	"#ef4444", "#8b5cf6", "#ec4899", "#64748b",
}

// Slice is one wedge of a pie chart drawn in a unit circle centered at the
// origin (viewBox "-1 -1 2 2"). Angles are in degrees, clockwise from
// twelve o'clock.
type Slice struct {
	Index      int
	Label      string
	Value      float64
	Percent    float64
	StartAngle float64
	EndAngle   float64
	Path       string
	Color      string
}

// PieSlices lays out values as consecutive wedges. Zero, negative and
// non-finite values are skipped; Index refers to the position in values.
func PieSlices(values []float64, labels []string) []Slice {
	var total float64
	for _, v := range values {
		if usable(v) {
			total += v
		}
	}
	if total == 0 {
		return []Slice{}
	}

	slices := make([]Slice, 0, len(values))
	angle := 0.0
	for i, v := range values {
		if !usable(v) {
			continue
		}
		sweep := v / total * 360
		s := Slice{
			Index:      i,
			Label:      label(labels, i),
			Value:      v,
			Percent:    math.Round(v/total*1000) / 10,
			StartAngle: angle,
			EndAngle:   angle + sweep,
			Color:      Palette[len(slices)%len(Palette)],
		}
		s.Path = arcPath(s.StartAngle, s.EndAngle)
		slices = append(slices, s)
		angle += sweep
	}
	return slices
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func label(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("Slice %d", i+1)
}

// arcPath returns the SVG path of a wedge. A full turn cannot be drawn as
// a single arc, so it becomes two half circles.
func arcPath(start, end float64) string {
	if end-start >= 359.999 {
		return "M 0 -1 A 1 1 0 1 1 0 1 A 1 1 0 1 1 0 -1 Z"
	}
	x1, y1 := point(start)
	x2, y2 := point(end)
	large := 0
	if end-start > 180 {
		large = 1
	}
	return fmt.Sprintf("M 0 0 L %s %s A 1 1 0 %d 1 %s %s Z", num(x1), num(y1), large, num(x2), num(y2))
}

func point(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return math.Sin(rad), -math.Cos(rad)
}

func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	if s == "-0.0000" {
		return "0.0000"
	}
	return s
}
