package render

import (
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		n    int
		in   any
		want string
	}{
		{10, "short", "short"},
		{5, "exactly", "exac…"},
		{3, "héllo wörld", "hé…"},
		{1, "abc", "a"},
		{4, 123456, "123…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.n, tt.in); got != tt.want {
			t.Errorf("truncate(%d, %v) = %q, want %q", tt.n, tt.in, got, tt.want)
		}
	}
}

func TestDefaultVal(t *testing.T) {
	if got := defaultVal("", "fallback"); got != "fallback" {
		t.Errorf("defaultVal(\"\") = %v", got)
	}
	if got := defaultVal("set", "fallback"); got != "set" {
		t.Errorf("defaultVal(set) = %v", got)
	}
	if got := defaultVal(0.0, 1.5); got != 1.5 {
		t.Errorf("defaultVal(0.0) = %v", got)
	}
	if got := defaultVal(nil, 3); got != 3 {
		t.Errorf("defaultVal(nil) = %v", got)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{29, "USD", "$29"},
		{29.5, "usd", "$29.50"},
		{0, "EUR", "€0"},
		{12.99, "CHF", "12.99 CHF"},
		{7, "", "7"},
		{1234.5, "USD", "$1,234.50"},
		{250000, "GBP", "£250,000"},
		{5, "dollars", "5"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("formatMoney(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	if got := formatTime(ts); got != "Mar 4, 2026 15:30" {
		t.Errorf("formatTime(time) = %q", got)
	}
	if got := formatTime("2026-03-04T15:30:00Z"); got != "Mar 4, 2026 15:30" {
		t.Errorf("formatTime(rfc3339) = %q", got)
	}
	if got := formatTime("2026-03-04"); got != "Mar 4, 2026" {
		t.Errorf("formatTime(date) = %q", got)
	}
	if got := formatTime("Q3 2026"); got != "Q3 2026" {
		t.Errorf("formatTime(free text) = %q", got)
	}
	if got := formatTime(time.Time{}); got != "-" {
		t.Errorf("formatTime(zero) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := percent(1, 3); got != 33.3 {
		t.Errorf("percent(1, 3) = %v", got)
	}
	if got := percent(5, 0); got != 0 {
		t.Errorf("percent(5, 0) = %v", got)
	}
}

func TestSeq(t *testing.T) {
	if got := seq(1, 3); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("seq(1, 3) = %v", got)
	}
	if got := seq(3, 1); got != nil {
		t.Errorf("seq(3, 1) = %v, want nil", got)
	}
}

func TestMarkdown(t *testing.T) {
	got := string(Markdown("**Bold** and [link](https://example.com)"))
	if !strings.Contains(got, "<strong>Bold</strong>") {
		t.Errorf("Markdown() = %q, want strong", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("Markdown() = %q, want link", got)
	}

	got = string(Markdown("hi <script>alert(1)</script>"))
	if strings.Contains(got, "<script") {
		t.Errorf("Markdown() did not sanitize: %q", got)
	}

	if Markdown("") != "" {
		t.Error("Markdown(\"\") should be empty")
	}
}
