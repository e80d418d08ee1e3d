// Package schema describes template props contracts as JSON Schema.
//
// Every template declares an Object schema for its props. The schema is
// published to the agent (so it knows what each template accepts), compiled
// for validation of incoming props, and converted to Anthropic tool
// parameters when an LLM-backed agent selects templates through tool use.
package schema

import (
	"encoding/json"
	"sort"
)

// Object defines the JSON Schema for a template's props
type Object struct {
	// Type must be "object"
	Type string `json:"type"`

	// Properties defines the template's props
	Properties map[string]PropertyDef `json:"properties"`

	// Required lists props without which the template can only render
	// a degraded state
	Required []string `json:"required,omitempty"`
}

// PropertyDef defines a single property in the props schema
type PropertyDef struct {
	// Type is the JSON Schema type (string, number, integer, boolean, array, object)
	Type string `json:"type"`

	// Description explains what this prop is for
	Description string `json:"description,omitempty"`

	// Enum restricts the prop to specific values
	Enum []string `json:"enum,omitempty"`

	// Format is an optional JSON Schema format (e.g. "date-time")
	Format string `json:"format,omitempty"`

	// Items defines the schema for array items (when Type is "array")
	Items *PropertyDef `json:"items,omitempty"`

	// Properties defines nested object properties (when Type is "object")
	Properties map[string]PropertyDef `json:"properties,omitempty"`

	// Minimum/Maximum for number types
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// MaxLength for string types
	MaxLength *int `json:"maxLength,omitempty"`
}

// NewObject builds an object schema from its properties.
func NewObject(props map[string]PropertyDef, required ...string) Object {
	if props == nil {
		props = map[string]PropertyDef{}
	}
	return Object{Type: "object", Properties: props, Required: required}
}

// String returns a string property.
func String(description string) PropertyDef {
	return PropertyDef{Type: "string", Description: description}
}

// Enum returns a string property restricted to values.
func Enum(description string, values ...string) PropertyDef {
	return PropertyDef{Type: "string", Description: description, Enum: values}
}

// DateTime returns an RFC 3339 timestamp property.
func DateTime(description string) PropertyDef {
	return PropertyDef{Type: "string", Format: "date-time", Description: description}
}

// Number returns a number property.
func Number(description string) PropertyDef {
	return PropertyDef{Type: "number", Description: description}
}

// Integer returns an integer property.
func Integer(description string) PropertyDef {
	return PropertyDef{Type: "integer", Description: description}
}

// Bool returns a boolean property.
func Bool(description string) PropertyDef {
	return PropertyDef{Type: "boolean", Description: description}
}

// Array returns an array property with the given item schema.
func Array(description string, items PropertyDef) PropertyDef {
	return PropertyDef{Type: "array", Description: description, Items: &items}
}

// Struct returns a nested object property.
func Struct(description string, props map[string]PropertyDef) PropertyDef {
	return PropertyDef{Type: "object", Description: description, Properties: props}
}

// Phrase returns the property used for action phrases. Phrases are plain
// natural language sent back to the agent when the element is clicked.
func Phrase(description string) PropertyDef {
	max := 512
	return PropertyDef{Type: "string", Description: description, MaxLength: &max}
}

// Names returns the property names in sorted order.
func (o Object) Names() []string {
	names := make([]string, 0, len(o.Properties))
	for name := range o.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document returns the schema as a JSON Schema document (a generic map),
// including the draft marker.
func (o Object) Document() map[string]any {
	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": propertiesDocument(o.Properties),
	}
	if len(o.Required) > 0 {
		doc["required"] = o.Required
	}
	return doc
}

// JSON returns the schema document encoded as JSON.
func (o Object) JSON() ([]byte, error) {
	return json.Marshal(o.Document())
}

func propertiesDocument(props map[string]PropertyDef) map[string]any {
	out := make(map[string]any, len(props))
	for name, def := range props {
		out[name] = def.document()
	}
	return out
}

// document converts a property definition to a JSON Schema fragment
func (def PropertyDef) document() map[string]any {
	prop := map[string]any{
		"type": def.Type,
	}

	if def.Description != "" {
		prop["description"] = def.Description
	}

	if len(def.Enum) > 0 {
		prop["enum"] = def.Enum
	}

	if def.Format != "" {
		prop["format"] = def.Format
	}

	if def.Minimum != nil {
		prop["minimum"] = *def.Minimum
	}

	if def.Maximum != nil {
		prop["maximum"] = *def.Maximum
	}

	if def.MaxLength != nil {
		prop["maxLength"] = *def.MaxLength
	}

	// Handle array items
	if def.Items != nil {
		prop["items"] = def.Items.document()
	}

	// Handle nested object properties
	if len(def.Properties) > 0 {
		prop["properties"] = propertiesDocument(def.Properties)
	}

	return prop
}
