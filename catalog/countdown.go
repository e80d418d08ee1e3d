package catalog

import (
	"strings"
	"time"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/internal/viz"
	"github.com/youssefsiam38/volumetric/schema"
)

// now is replaced in tests.
var now = time.Now

// CountdownProps are the props of the Countdown template.
type CountdownProps struct {
	Title       string `json:"title"`
	Target      string `json:"target"`
	ExpiredText string `json:"expiredText"`
	CTA         CTA    `json:"cta"`
}

func (p *CountdownProps) TemplateKey() string { return KeyCountdown }

func (p *CountdownProps) Normalize() {
	if p.Title == "" {
		p.Title = "Countdown"
	}
	if p.ExpiredText == "" {
		p.ExpiredText = "It's here."
	}
	p.Target = strings.TrimSpace(p.Target)
	p.CTA.Normalize()
}

// TargetTime parses Target. ok is false when Target is missing or invalid.
func (p *CountdownProps) TargetTime() (t time.Time, ok bool) {
	if p.Target == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, p.Target)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HasTarget reports whether Target is a valid timestamp.
func (p *CountdownProps) HasTarget() bool {
	_, ok := p.TargetTime()
	return ok
}

// Left returns the time remaining at render time.
func (p *CountdownProps) Left() viz.Countdown {
	t, ok := p.TargetTime()
	if !ok {
		return viz.Countdown{}
	}
	return viz.Remaining(now(), t)
}

func countdown() *volumetric.TemplateDescriptor {
	return define(KeyCountdown,
		"Countdown to a date, ticking in the browser, with an optional button.",
		"countdown.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title":       schema.String("Heading"),
			"target":      schema.DateTime("When the countdown ends"),
			"expiredText": schema.String("Shown once the target has passed"),
			"cta":         ctaSchema("Optional button under the timer"),
		}),
		func() *CountdownProps { return &CountdownProps{} },
	)
}
