package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// CTABannerProps are the props of the CTABanner template.
type CTABannerProps struct {
	Headline     string `json:"headline"`
	Body         string `json:"body"`
	Variant      string `json:"variant"`
	CTA          CTA    `json:"cta"`
	SecondaryCTA CTA    `json:"secondaryCta"`
}

func (p *CTABannerProps) TemplateKey() string { return KeyCTABanner }

func (p *CTABannerProps) Normalize() {
	if p.Headline == "" {
		p.Headline = "Ready when you are"
	}
	if p.Variant != "subtle" {
		p.Variant = "primary"
	}
	p.CTA.withDefault("Let's talk", "I'd like to talk to someone")
	p.SecondaryCTA.Normalize()
}

func ctaBanner() *volumetric.TemplateDescriptor {
	return define(KeyCTABanner,
		"Full-width banner with a headline and one or two buttons.",
		"cta_banner.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"headline":     schema.String("Banner headline"),
			"body":         schema.String("Supporting text"),
			"variant":      schema.Enum("Visual weight", "primary", "subtle"),
			"cta":          ctaSchema("Main button"),
			"secondaryCta": ctaSchema("Secondary button"),
		}),
		func() *CTABannerProps { return &CTABannerProps{} },
	)
}
