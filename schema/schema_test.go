package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testObject() Object {
	return NewObject(map[string]PropertyDef{
		"title": String("Heading"),
		"mode":  Enum("Layout", "grid", "list"),
		"items": Array("Entries", String("Entry")),
		"price": Number("Price"),
		"cta":   Struct("Button", map[string]PropertyDef{"phrase": Phrase("What the user says")}),
	})
}

func TestCompile_Validate(t *testing.T) {
	c := MustCompile(testObject())

	tests := []struct {
		name  string
		props string
		paths []string
	}{
		{"empty object", `{}`, nil},
		{"empty input", ``, nil},
		{"valid", `{"title":"Plans","mode":"grid","items":["a","b"],"price":9.5}`, nil},
		{"unknown props are allowed", `{"extra":true}`, nil},
		{"bad enum", `{"mode":"carousel"}`, []string{"/mode"}},
		{"wrong item type", `{"items":["a",2]}`, []string{"/items/1"}},
		{"nested phrase too long", `{"cta":{"phrase":"` + longText(600) + `"}}`, []string{"/cta/phrase"}},
		{"two violations sorted", `{"price":"free","mode":"x"}`, []string{"/mode", "/price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var paths []string
			for _, v := range c.Validate(json.RawMessage(tt.props)) {
				paths = append(paths, v.Path)
			}
			if diff := cmp.Diff(tt.paths, paths); diff != "" {
				t.Errorf("violation paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_ValidateNumbers(t *testing.T) {
	c := MustCompile(NewObject(map[string]PropertyDef{
		"count": Integer("How many"),
		"price": Number("Price"),
	}))

	tests := []struct {
		name  string
		props string
		paths []string
	}{
		{"integer", `{"count":3}`, nil},
		{"integer written with exponent", `{"count":1e3}`, nil},
		{"integer beyond float precision", `{"count":12345678901234567891}`, nil},
		{"fraction is not an integer", `{"count":3.5}`, []string{"/count"}},
		{"number", `{"price":0.1}`, nil},
		{"numeric string", `{"price":"9.99"}`, []string{"/price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var paths []string
			for _, v := range c.Validate(json.RawMessage(tt.props)) {
				paths = append(paths, v.Path)
			}
			if diff := cmp.Diff(tt.paths, paths); diff != "" {
				t.Errorf("violation paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_NotJSON(t *testing.T) {
	c := MustCompile(testObject())
	v := c.Validate(json.RawMessage(`{"title":`))
	if len(v) != 1 || v[0].Path != "" {
		t.Errorf("Validate() = %v, want one root violation", v)
	}
}

func TestCompile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
	}{
		{"not an object", Object{Type: "array"}},
		{"undeclared required", NewObject(map[string]PropertyDef{"a": String("A")}, "b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.obj); !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("Compile() error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestObject_Document(t *testing.T) {
	doc := NewObject(map[string]PropertyDef{"title": String("Heading")}, "title").Document()

	want := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "description": "Heading"},
		},
		"required": []string{"title"},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Document() mismatch (-want +got):\n%s", diff)
	}
}

func TestObject_Names(t *testing.T) {
	if diff := cmp.Diff([]string{"cta", "items", "mode", "price", "title"}, testObject().Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestObject_ToAnthropicTool(t *testing.T) {
	obj := NewObject(map[string]PropertyDef{
		"title": String("Heading"),
		"mode":  Enum("Layout", "grid", "list"),
	}, "title")
	tool := obj.ToAnthropicTool("PricingCards", "Plan cards")

	if tool.Name != "PricingCards" {
		t.Errorf("Name = %q", tool.Name)
	}
	if tool.Description.Value != "Plan cards" {
		t.Errorf("Description = %q", tool.Description.Value)
	}
	if diff := cmp.Diff([]string{"title"}, tool.InputSchema.Required); diff != "" {
		t.Errorf("Required mismatch (-want +got):\n%s", diff)
	}

	props, ok := tool.InputSchema.Properties.(map[string]any)
	if !ok {
		t.Fatalf("Properties = %T, want map", tool.InputSchema.Properties)
	}
	mode, _ := props["mode"].(map[string]any)
	if diff := cmp.Diff([]string{"grid", "list"}, mode["enum"]); diff != "" {
		t.Errorf("enum mismatch (-want +got):\n%s", diff)
	}
}

func longText(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
