package volumetric

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeNavigationRequest(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKey   string
		wantProps string
		wantErr   bool
	}{
		{"full", `{"templateKey":"PricingCards","props":{"tiers":[]}}`, "PricingCards", `{"tiers":[]}`, false},
		{"missing props", `{"templateKey":"Timeline"}`, "Timeline", `{}`, false},
		{"null props", `{"templateKey":"Timeline","props":null}`, "Timeline", `{}`, false},
		{"trimmed key", `{"templateKey":"  Timeline "}`, "Timeline", `{}`, false},
		{"missing key", `{"props":{}}`, "", "", true},
		{"array props", `{"templateKey":"A","props":[1,2]}`, "", "", true},
		{"string props", `{"templateKey":"A","props":"x"}`, "", "", true},
		{"not json", `templateKey=A`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeNavigationRequest(strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("error = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if req.TemplateKey != tt.wantKey {
				t.Errorf("TemplateKey = %q, want %q", req.TemplateKey, tt.wantKey)
			}
			if string(req.Props) != tt.wantProps {
				t.Errorf("Props = %s, want %s", req.Props, tt.wantProps)
			}
		})
	}
}

func TestActionPhrase_Validate(t *testing.T) {
	if err := NewActionPhrase("  Show pricing  ").Validate(100); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if NewActionPhrase("  Show pricing  ").Text != "Show pricing" {
		t.Error("NewActionPhrase should trim whitespace")
	}
	if err := NewActionPhrase("").Validate(100); !errors.Is(err, ErrInvalidPhrase) {
		t.Errorf("empty phrase error = %v, want ErrInvalidPhrase", err)
	}
	if err := NewActionPhrase(strings.Repeat("a", 101)).Validate(100); !errors.Is(err, ErrInvalidPhrase) {
		t.Errorf("long phrase error = %v, want ErrInvalidPhrase", err)
	}
}
