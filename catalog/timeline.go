package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// TimelineProps are the props of the Timeline template.
type TimelineProps struct {
	Title  string          `json:"title"`
	Events []TimelineEvent `json:"events"`
}

// TimelineEvent is one entry on the timeline.
type TimelineEvent struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Phrase      string `json:"phrase"`
}

var timelineStatuses = []string{"done", "current", "upcoming"}

func (p *TimelineProps) TemplateKey() string { return KeyTimeline }

func (p *TimelineProps) Normalize() {
	if p.Title == "" {
		p.Title = "Timeline"
	}
	if p.Events == nil {
		p.Events = []TimelineEvent{}
	}
	for i := range p.Events {
		e := &p.Events[i]
		switch e.Status {
		case "done", "current", "upcoming":
		default:
			e.Status = "upcoming"
		}
		if e.Title == "" {
			e.Title = "Untitled"
		}
	}
}

func timeline() *volumetric.TemplateDescriptor {
	return define(KeyTimeline,
		"Vertical timeline of dated events with done, current and upcoming states.",
		"timeline.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title": schema.String("Section heading"),
			"events": schema.Array("Events in chronological order", schema.Struct("Event", map[string]schema.PropertyDef{
				"date":        schema.String("RFC 3339 timestamp, date or free text such as Q3 2026"),
				"title":       schema.String("Event title"),
				"description": schema.String("Details"),
				"status":      schema.Enum("Progress state", timelineStatuses...),
				"phrase":      schema.Phrase("What the user says when clicking the event"),
			})),
		}),
		func() *TimelineProps { return &TimelineProps{} },
	)
}
