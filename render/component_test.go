package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

type cardProps struct {
	Title  string `json:"title"`
	Phrase string `json:"phrase"`
	Image  string `json:"image"`
}

func (p *cardProps) TemplateKey() string { return "Card" }
func (p *cardProps) Normalize() {
	if p.Title == "" {
		p.Title = "Card"
	}
}

var testFS = fstest.MapFS{
	"templates/card.html": {Data: []byte(
		`<article id="{{viewID "card"}}"><h2>{{.Title}}</h2>` +
			`<button {{action .Phrase}}>Go</button>` +
			`{{template "img" (asset .Image)}}</article>`)},
	"templates/partials.html": {Data: []byte(
		`{{define "img"}}{{if .Placeholder}}<div class="ph" data-prompt="{{.Prompt}}"></div>` +
			`{{else}}<img src="{{.URL}}">{{end}}{{end}}`)},
	"templates/broken.html": {Data: []byte(`{{if}}`)},
}

func cardDefinition(file string) Definition[*cardProps] {
	return Definition[*cardProps]{
		Key:         "Card",
		Description: "A card",
		Schema:      schema.NewObject(map[string]schema.PropertyDef{"title": schema.String("Title")}),
		FS:          testFS,
		File:        file,
		Partials:    []string{"templates/partials.html"},
		NewProps:    func() *cardProps { return &cardProps{} },
	}
}

type fixedAssets map[string]string

func (f fixedAssets) Resolve(id string) volumetric.AssetResolution {
	if url, ok := f[id]; ok {
		return volumetric.AssetResolution{ID: id, URL: url}
	}
	return volumetric.AssetResolution{ID: id, Generate: true, Prompt: id}
}

func TestDefinition_LoadAndRender(t *testing.T) {
	comp, err := cardDefinition("templates/card.html").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if comp.Key() != "Card" {
		t.Errorf("Key() = %q", comp.Key())
	}

	view := &volumetric.View{
		SessionID: "s1",
		RequestID: "r1",
		Assets:    fixedAssets{"logo": "/assets/logo"},
	}

	props := &cardProps{Title: "Pro <plan>", Phrase: "Show me the Pro plan", Image: "logo"}
	var sb strings.Builder
	if err := comp.Render(&sb, props, view); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		`id="v-r1-card"`,
		`<h2>Pro &lt;plan&gt;</h2>`,
		`hx-post="/s/s1/action"`,
		`data-action-phrase="Show me the Pro plan"`,
		`<img src="/assets/logo">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// A second render with another view must not see the first view's funcs.
	sb.Reset()
	props.Image = "a red bicycle"
	if err := comp.Render(&sb, props, &volumetric.View{SessionID: "s2", RequestID: "r2"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out = sb.String()
	if !strings.Contains(out, `hx-post="/s/s2/action"`) || !strings.Contains(out, `data-prompt="a red bicycle"`) {
		t.Errorf("second render used stale view:\n%s", out)
	}
}

func TestComponent_EmptyPhraseIsNotInteractive(t *testing.T) {
	comp, err := cardDefinition("templates/card.html").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var sb strings.Builder
	if err := comp.Render(&sb, &cardProps{}, &volumetric.View{SessionID: "s1"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(sb.String(), "hx-post") {
		t.Errorf("empty phrase produced an action binding:\n%s", sb.String())
	}
}

func TestComponent_WrongPropsType(t *testing.T) {
	comp, err := cardDefinition("templates/card.html").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := comp.Render(&strings.Builder{}, otherProps{}, nil); err == nil {
		t.Error("Render() should reject props of another template")
	}
}

type otherProps struct{}

func (otherProps) TemplateKey() string { return "Other" }
func (otherProps) Normalize()          {}

func TestDefinition_ParseErrorFailsLoad(t *testing.T) {
	reg := volumetric.NewRegistry()
	reg.MustRegister(cardDefinition("templates/broken.html").Descriptor())

	_, err := reg.Resolve(context.Background(), "Card")
	if !errors.Is(err, volumetric.ErrLoadFailed) {
		t.Fatalf("Resolve() error = %v, want ErrLoadFailed", err)
	}
}

func TestDefinition_ThroughHost(t *testing.T) {
	reg := volumetric.NewRegistry()
	reg.MustRegister(cardDefinition("templates/card.html").Descriptor())

	host, err := volumetric.NewHost(reg, nil)
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}

	var sb strings.Builder
	req := &volumetric.NavigationRequest{ID: "r9", TemplateKey: "Card", Props: []byte(`{}`)}
	res := host.Render(context.Background(), &sb, req, &volumetric.View{SessionID: "s1"})
	if res.Fallback {
		t.Fatalf("unexpected fallback: %v", res.Err)
	}
	if !strings.Contains(sb.String(), "<h2>Card</h2>") {
		t.Errorf("defaults not applied:\n%s", sb.String())
	}
}
