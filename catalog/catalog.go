// Package catalog contains the templates an agent can request.
//
// Each template pairs a props struct (its JSON contract, with defaults
// applied in Normalize) with an embedded html/template file. Every
// clickable element is bound to an action phrase through the "action"
// helper; elements without a phrase render as plain, non-interactive
// content.
package catalog

import (
	"embed"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/render"
	"github.com/youssefsiam38/volumetric/schema"
)

//go:embed templates/*.html
var templatesFS embed.FS

const partials = "templates/partials.html"

// Template keys.
const (
	KeyPricingCards    = "PricingCards"
	KeyTimeline        = "Timeline"
	KeyPieChart        = "PieChart"
	KeyCountdown       = "Countdown"
	KeyHeroSection     = "HeroSection"
	KeyFeatureGrid     = "FeatureGrid"
	KeyFAQAccordion    = "FAQAccordion"
	KeyTestimonials    = "Testimonials"
	KeyComparisonTable = "ComparisonTable"
	KeyStatsGrid       = "StatsGrid"
	KeyCTABanner       = "CTABanner"
	KeyImageGallery    = "ImageGallery"
	KeyOnboardingFlow  = "OnboardingFlow"
)

func define[P volumetric.Props](key, description, file string, s schema.Object, newProps func() P) *volumetric.TemplateDescriptor {
	return render.Definition[P]{
		Key:         key,
		Description: description,
		Schema:      s,
		FS:          templatesFS,
		File:        "templates/" + file,
		Partials:    []string{partials},
		NewProps:    newProps,
	}.Descriptor()
}

// Descriptors returns a fresh descriptor for every template in the catalog.
func Descriptors() []*volumetric.TemplateDescriptor {
	return []*volumetric.TemplateDescriptor{
		pricingCards(),
		timeline(),
		pieChart(),
		countdown(),
		heroSection(),
		featureGrid(),
		faqAccordion(),
		testimonials(),
		comparisonTable(),
		statsGrid(),
		ctaBanner(),
		imageGallery(),
		onboardingFlow(),
	}
}

// Register adds every catalog template to reg. Components are parsed on
// first resolve.
func Register(reg *volumetric.Registry) error {
	return reg.RegisterAll(Descriptors()...)
}

// MustRegister is like Register but panics on error.
func MustRegister(reg *volumetric.Registry) {
	if err := Register(reg); err != nil {
		panic(err)
	}
}
