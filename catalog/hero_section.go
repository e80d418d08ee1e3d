package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// HeroSectionProps are the props of the HeroSection template.
type HeroSectionProps struct {
	Eyebrow      string `json:"eyebrow"`
	Headline     string `json:"headline"`
	Subheadline  string `json:"subheadline"`
	Image        string `json:"image"`
	PrimaryCTA   CTA    `json:"primaryCta"`
	SecondaryCTA CTA    `json:"secondaryCta"`
}

func (p *HeroSectionProps) TemplateKey() string { return KeyHeroSection }

func (p *HeroSectionProps) Normalize() {
	if p.Headline == "" {
		p.Headline = "Welcome"
	}
	p.PrimaryCTA.withDefault("Get started", "How do I get started?")
	p.SecondaryCTA.Normalize()
}

func heroSection() *volumetric.TemplateDescriptor {
	return define(KeyHeroSection,
		"Large headline with supporting text, an image and up to two buttons.",
		"hero_section.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"eyebrow":      schema.String("Small text above the headline"),
			"headline":     schema.String("Main headline"),
			"subheadline":  schema.String("Supporting text"),
			"image":        schema.String("Asset id or an image description to generate"),
			"primaryCta":   ctaSchema("Main button"),
			"secondaryCta": ctaSchema("Secondary button"),
		}),
		func() *HeroSectionProps { return &HeroSectionProps{} },
	)
}
