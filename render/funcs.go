package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/youssefsiam38/volumetric"
)

// Funcs returns the helpers available to every panel template.
//
// The view-bound helpers (action, asset, sessionPath, viewID) are
// placeholders here; ViewFuncs replaces them for each execution.
func Funcs() template.FuncMap {
	funcs := template.FuncMap{
		"truncate":    truncate,
		"default":     defaultVal,
		"dict":        dictFunc,
		"seq":         seq,
		"add":         add,
		"sub":         sub,
		"percent":     percent,
		"formatMoney": formatMoney,
		"formatTime":  formatTime,
		"json":        jsonEncode,
		"markdown":    Markdown,
		"join":        join,
	}
	for name, fn := range ViewFuncs(nil) {
		funcs[name] = fn
	}
	return funcs
}

// ViewFuncs returns the helpers bound to a single render.
//
//	<button {{action .Phrase}}>        HTMX attributes posting the phrase
//	{{with asset .Image}}...{{end}}    volumetric.AssetResolution
//	id="{{viewID "faq" $i}}"           DOM id unique to the panel
//	{{sessionPath}}/onboarding/next    session-scoped endpoint prefix
func ViewFuncs(view *volumetric.View) template.FuncMap {
	return template.FuncMap{
		"action": func(phrase string) template.HTMLAttr {
			if view == nil {
				return ""
			}
			return view.Action(phrase)
		},
		"asset": func(id string) volumetric.AssetResolution {
			if view == nil {
				return volumetric.AssetResolution{ID: id}
			}
			return view.Asset(id)
		},
		"viewID": func(parts ...any) string {
			var b strings.Builder
			b.WriteString("v")
			if view != nil && view.RequestID != "" {
				b.WriteString("-")
				b.WriteString(view.RequestID)
			}
			for _, p := range parts {
				b.WriteString("-")
				b.WriteString(fmt.Sprint(p))
			}
			return b.String()
		},
		"sessionPath": func() string {
			if view == nil {
				return ""
			}
			return view.BasePath + "/s/" + view.SessionID
		},
	}
}

func truncate(n int, v any) string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprintf("%v", v)
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 1 {
		return string(runes[:max(n, 0)])
	}
	return string(runes[:n-1]) + "…"
}

func defaultVal(val, def any) any {
	if val == nil {
		return def
	}
	switch v := val.(type) {
	case string:
		if v == "" {
			return def
		}
	case int:
		if v == 0 {
			return def
		}
	case float64:
		if v == 0 {
			return def
		}
	case []string:
		if len(v) == 0 {
			return def
		}
	}
	return val
}

// dictFunc creates a map from key-value pairs for use in templates.
// Usage: {{template "vol-image" (dict "Asset" (asset .Image) "Alt" .Title)}}
func dictFunc(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	dict := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		dict[key] = values[i+1]
	}
	return dict
}

func seq(start, end int) []int {
	if start > end {
		return nil
	}
	result := make([]int, end-start+1)
	for i := range result {
		result[i] = start + i
	}
	return result
}

func add(a, b int) int {
	return a + b
}

func sub(a, b int) int {
	return a - b
}

// percent returns part as a percentage of total, rounded to one decimal.
func percent(part, total float64) float64 {
	if total <= 0 || math.IsNaN(part) || math.IsNaN(total) {
		return 0
	}
	return math.Round(part/total*1000) / 10
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney formats amount in currency with thousands grouping. Whole
// amounts drop the cents. Codes that are not ISO 4217 are left out.
func formatMoney(amount float64, currencyCode string) string {
	format := "%.2f"
	if amount == math.Trunc(amount) {
		format = "%.0f"
	}
	num := moneyPrinter.Sprintf(format, amount)

	unit, err := currency.ParseISO(strings.TrimSpace(currencyCode))
	if err != nil {
		return num
	}
	if sym, ok := currencySymbols[unit.String()]; ok {
		return sym + num
	}
	return num + " " + unit.String()
}

// formatTime accepts a time.Time or an RFC 3339 string. Unparseable
// strings are returned unchanged.
func formatTime(v any) string {
	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	case string:
		parsed, err := time.Parse(time.RFC3339, val)
		if err != nil {
			if d, derr := time.Parse(time.DateOnly, val); derr == nil {
				return d.Format("Jan 2, 2006")
			}
			return val
		}
		t = parsed
	default:
		return "-"
	}
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006 15:04")
}

func jsonEncode(v any) string {
	// []byte is already JSON; re-indent instead of base64 encoding it
	if b, ok := v.([]byte); ok {
		if len(b) == 0 {
			return "{}"
		}
		var parsed any
		if err := json.Unmarshal(b, &parsed); err != nil {
			return string(b)
		}
		indented, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return string(b)
		}
		return string(indented)
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func join(sep string, items []string) string {
	return strings.Join(items, sep)
}
