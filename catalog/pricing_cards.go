package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// PricingCardsProps are the props of the PricingCards template.
type PricingCardsProps struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Currency string        `json:"currency"`
	Tiers    []PricingTier `json:"tiers"`
}

// PricingTier is one plan card.
type PricingTier struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Highlighted bool     `json:"highlighted"`
	Badge       string   `json:"badge"`
	CTA         string   `json:"cta"`
	Phrase      string   `json:"phrase"`
}

func (p *PricingCardsProps) TemplateKey() string { return KeyPricingCards }

func (p *PricingCardsProps) Normalize() {
	if p.Title == "" {
		p.Title = "Pricing"
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Tiers == nil {
		p.Tiers = []PricingTier{}
	}
	for i := range p.Tiers {
		t := &p.Tiers[i]
		if t.Features == nil {
			t.Features = []string{}
		}
		if t.Period == "" {
			t.Period = "month"
		}
		if t.Phrase == "" && t.Name != "" {
			t.Phrase = "I'd like the " + t.Name + " plan"
		}
		if t.CTA == "" {
			t.CTA = "Choose plan"
		}
	}
}

func pricingCards() *volumetric.TemplateDescriptor {
	return define(KeyPricingCards,
		"Side-by-side plan cards with price, features and a choose button per plan.",
		"pricing_cards.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title":    schema.String("Section heading"),
			"subtitle": schema.String("Text under the heading"),
			"currency": schema.String("ISO 4217 currency code, default USD"),
			"tiers": schema.Array("Plans, in display order", schema.Struct("Plan", map[string]schema.PropertyDef{
				"name":        schema.String("Plan name"),
				"price":       {Type: "number", Description: "Price per period", Minimum: ptr(0.0)},
				"period":      schema.String("Billing period, default month"),
				"description": schema.String("One-line summary"),
				"features":    schema.Array("Included features", schema.String("Feature")),
				"highlighted": schema.Bool("Emphasize this plan"),
				"badge":       schema.String("Badge text such as Most popular"),
				"cta":         schema.String("Button text"),
				"phrase":      schema.Phrase("What the user says when choosing the plan"),
			})),
		}),
		func() *PricingCardsProps { return &PricingCardsProps{} },
	)
}
