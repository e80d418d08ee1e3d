package catalog

import (
	"strings"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// TestimonialsProps are the props of the Testimonials template.
type TestimonialsProps struct {
	Title string        `json:"title"`
	Items []Testimonial `json:"items"`
	CTA   CTA           `json:"cta"`
}

// Testimonial is one customer quote.
type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
	Rating int    `json:"rating"`
}

// Stars renders the rating as five filled or empty stars.
func (t Testimonial) Stars() string {
	return strings.Repeat("★", t.Rating) + strings.Repeat("☆", 5-t.Rating)
}

func (p *TestimonialsProps) TemplateKey() string { return KeyTestimonials }

func (p *TestimonialsProps) Normalize() {
	if p.Title == "" {
		p.Title = "What our customers say"
	}
	if p.Items == nil {
		p.Items = []Testimonial{}
	}
	for i := range p.Items {
		it := &p.Items[i]
		it.Rating = min(max(it.Rating, 0), 5)
		if it.Author == "" {
			it.Author = "Anonymous"
		}
	}
	p.CTA.Normalize()
}

func testimonials() *volumetric.TemplateDescriptor {
	return define(KeyTestimonials,
		"Customer quotes with author, role, avatar and optional star rating.",
		"testimonials.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title": schema.String("Section heading"),
			"items": schema.Array("Quotes", schema.Struct("Quote", map[string]schema.PropertyDef{
				"quote":  schema.String("What the customer said"),
				"author": schema.String("Customer name"),
				"role":   schema.String("Title and company"),
				"avatar": schema.String("Asset id or an image description to generate"),
				"rating": {Type: "integer", Description: "Stars, 0 to 5; 0 hides the rating", Minimum: ptr(0.0), Maximum: ptr(5.0)},
			})),
			"cta": ctaSchema("Optional button under the quotes"),
		}),
		func() *TestimonialsProps { return &TestimonialsProps{} },
	)
}
