package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidSchema is returned when a props schema cannot be compiled
var ErrInvalidSchema = errors.New("invalid props schema")

// schemaURL is the resource name props schemas are compiled under.
const schemaURL = "https://volumetric.schemas.local/props.schema.json"

// Compiled is a props schema ready for validation.
type Compiled struct {
	object Object
	schema *jsonschema.Schema
}

// Violation describes a single props contract violation.
type Violation struct {
	// Path is the JSON pointer of the offending value ("" for the root).
	Path string `json:"path"`

	// Message is the validator's description.
	Message string `json:"message"`
}

// String implements fmt.Stringer
func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Compile compiles a props schema.
func Compile(o Object) (*Compiled, error) {
	if o.Type != "object" {
		return nil, fmt.Errorf("%w: type must be 'object', got '%s'", ErrInvalidSchema, o.Type)
	}
	for _, req := range o.Required {
		if _, ok := o.Properties[req]; !ok {
			return nil, fmt.Errorf("%w: required property %q is not declared", ErrInvalidSchema, req)
		}
	}

	doc, err := o.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true
	if err := c.AddResource(schemaURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrInvalidSchema, err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: compile: %v", ErrInvalidSchema, err)
	}
	return &Compiled{object: o, schema: s}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(o Object) *Compiled {
	c, err := Compile(o)
	if err != nil {
		panic(err)
	}
	return c
}

// Object returns the source schema.
func (c *Compiled) Object() Object {
	return c.object
}

// Validate checks raw props against the schema and returns every violation
// found, sorted by path. A nil result means the props satisfy the contract.
func (c *Compiled) Validate(raw json.RawMessage) []Violation {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return []Violation{{Message: "props are not valid JSON: " + err.Error()}}
	}

	err := c.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Violation{{Message: err.Error()}}
	}

	var out []Violation
	collectViolations(verr, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// collectViolations flattens the validator's error tree into its leaves.
func collectViolations(e *jsonschema.ValidationError, out *[]Violation) {
	if len(e.Causes) == 0 {
		*out = append(*out, Violation{
			Path:    strings.TrimPrefix(e.InstanceLocation, "#"),
			Message: e.Message,
		})
		return
	}
	for _, cause := range e.Causes {
		collectViolations(cause, out)
	}
}
