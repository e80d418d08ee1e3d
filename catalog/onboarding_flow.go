package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/onboarding"
	"github.com/youssefsiam38/volumetric/schema"
)

// OnboardingFlowProps are the props of the OnboardingFlow template.
//
// Step buttons are local controls handled by the host; only the finish
// button on the completion screen sends a phrase.
type OnboardingFlowProps struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Steps        []OnboardingStep `json:"steps"`
	Current      int              `json:"current"`
	FinishLabel  string           `json:"finishLabel"`
	FinishPhrase string           `json:"finishPhrase"`
}

// OnboardingStep is one screen of the flow.
type OnboardingStep struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image"`
}

func (p *OnboardingFlowProps) TemplateKey() string { return KeyOnboardingFlow }

func (p *OnboardingFlowProps) Normalize() {
	if p.ID == "" {
		p.ID = "onboarding"
	}
	if p.Title == "" {
		p.Title = "Getting started"
	}
	if p.Steps == nil {
		p.Steps = []OnboardingStep{}
	}
	if p.FinishLabel == "" {
		p.FinishLabel = "Let's go"
	}
	if p.FinishPhrase == "" {
		p.FinishPhrase = "I've finished onboarding. What's next?"
	}
	p.Current = onboarding.Clamp(p.Current, len(p.Steps))
}

// Done reports whether every step has been passed.
func (p *OnboardingFlowProps) Done() bool { return p.Current >= len(p.Steps) }

// Step returns the current step.
func (p *OnboardingFlowProps) Step() OnboardingStep {
	if p.Done() {
		return OnboardingStep{}
	}
	return p.Steps[p.Current]
}

// Number is the one-based position of the current step.
func (p *OnboardingFlowProps) Number() int { return p.Current + 1 }

// Total is the number of steps.
func (p *OnboardingFlowProps) Total() int { return len(p.Steps) }

// First reports whether the current step is the first one.
func (p *OnboardingFlowProps) First() bool { return p.Current == 0 }

// Last reports whether the current step is the last one.
func (p *OnboardingFlowProps) Last() bool { return p.Current == len(p.Steps)-1 }

// Progress is the share of completed steps in percent.
func (p *OnboardingFlowProps) Progress() int {
	if len(p.Steps) == 0 {
		return 100
	}
	return p.Current * 100 / len(p.Steps)
}

func onboardingFlow() *volumetric.TemplateDescriptor {
	return define(KeyOnboardingFlow,
		"Step-by-step onboarding with back, next and skip; completion is remembered per session.",
		"onboarding_flow.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"id":    schema.String("Stable flow id used to remember completion"),
			"title": schema.String("Flow title"),
			"steps": schema.Array("Steps in order", schema.Struct("Step", map[string]schema.PropertyDef{
				"title": schema.String("Step title"),
				"body":  schema.String("Step text, markdown"),
				"image": schema.String("Asset id or an image description to generate"),
			})),
			"current":      {Type: "integer", Description: "Zero-based step to start at", Minimum: ptr(0.0)},
			"finishLabel":  schema.String("Button text on the completion screen"),
			"finishPhrase": schema.Phrase("What the user says when finishing"),
		}),
		func() *OnboardingFlowProps { return &OnboardingFlowProps{} },
	)
}
