package catalog

import (
	"strings"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// FAQAccordionProps are the props of the FAQAccordion template.
//
// Expanding an answer is local state and carries no phrase.
type FAQAccordionProps struct {
	Title    string    `json:"title"`
	Items    []FAQItem `json:"items"`
	FollowUp CTA       `json:"followUp"`
}

// FAQItem is a question with a markdown answer.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (p *FAQAccordionProps) TemplateKey() string { return KeyFAQAccordion }

func (p *FAQAccordionProps) Normalize() {
	if p.Title == "" {
		p.Title = "Frequently asked questions"
	}
	items := make([]FAQItem, 0, len(p.Items))
	for _, it := range p.Items {
		if strings.TrimSpace(it.Question) == "" {
			continue
		}
		items = append(items, it)
	}
	p.Items = items
	p.FollowUp.withDefault("Ask another question", "I have another question")
}

func faqAccordion() *volumetric.TemplateDescriptor {
	return define(KeyFAQAccordion,
		"Expandable questions and answers; answers accept markdown.",
		"faq_accordion.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title": schema.String("Section heading"),
			"items": schema.Array("Questions", schema.Struct("Question", map[string]schema.PropertyDef{
				"question": schema.String("The question"),
				"answer":   schema.String("The answer, markdown"),
			})),
			"followUp": ctaSchema("Button under the list"),
		}),
		func() *FAQAccordionProps { return &FAQAccordionProps{} },
	)
}
