package volumetric

import (
	"encoding/json"
	"html"
	"html/template"
	"strings"
	"time"
)

// ActionPhrase is the natural-language text a click sends to the agent,
// simulating what the user would have said.
//
// Only Text is meaningful to the agent's reasoning; the remaining fields are
// envelope metadata identifying who spoke and from which panel.
type ActionPhrase struct {
	Text        string    `json:"text"`
	SessionID   string    `json:"sessionId,omitempty"`
	TemplateKey string    `json:"templateKey,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
	ClickedAt   time.Time `json:"clickedAt"`
}

// NewActionPhrase creates a phrase stamped with the current time.
func NewActionPhrase(text string) ActionPhrase {
	return ActionPhrase{
		Text:      strings.TrimSpace(text),
		ClickedAt: time.Now().UTC(),
	}
}

// Validate checks that the phrase is non-empty and at most maxLen bytes.
func (p ActionPhrase) Validate(maxLen int) error {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return NewTemplateError("ValidatePhrase", p.TemplateKey, ErrInvalidPhrase).
			WithContext("reason", "empty")
	}
	if maxLen > 0 && len(text) > maxLen {
		return NewTemplateError("ValidatePhrase", p.TemplateKey, ErrInvalidPhrase).
			WithContext("reason", "too long").
			WithContext("length", len(text))
	}
	return nil
}

// actionAttrs renders the HTMX attributes posting phrase to the view's
// action endpoint. The phrase travels as the "phrase" form value together
// with the template key and request id of the panel.
func actionAttrs(v *View, phrase string) template.HTMLAttr {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" || v == nil {
		return ""
	}
	vals, err := json.Marshal(map[string]string{
		"phrase":      phrase,
		"templateKey": v.TemplateKey,
		"requestId":   v.RequestID,
	})
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(`hx-post="`)
	b.WriteString(html.EscapeString(v.ActionPath()))
	b.WriteString(`" hx-vals="`)
	b.WriteString(html.EscapeString(string(vals)))
	b.WriteString(`" hx-swap="none" data-action-phrase="`)
	b.WriteString(html.EscapeString(phrase))
	b.WriteString(`" role="button" tabindex="0"`)
	return template.HTMLAttr(b.String())
}
