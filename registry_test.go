package volumetric

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/youssefsiam38/volumetric/schema"
)

// mockProps for testing
type mockProps struct {
	key   string
	Title string   `json:"title"`
	Mode  string   `json:"mode"`
	Items []string `json:"items"`
}

func (p *mockProps) TemplateKey() string { return p.key }
func (p *mockProps) Normalize() {
	if p.Title == "" {
		p.Title = "Untitled"
	}
	if p.Items == nil {
		p.Items = []string{}
	}
}

// mockComponent for testing
type mockComponent struct {
	key    string
	render func(w io.Writer, p *mockProps, v *View) error
}

func (m *mockComponent) Key() string         { return m.key }
func (m *mockComponent) Description() string { return "A mock template" }
func (m *mockComponent) Schema() schema.Object {
	return schema.NewObject(map[string]schema.PropertyDef{
		"title": schema.String("Heading"),
		"mode":  schema.Enum("Layout", "grid", "list"),
		"items": schema.Array("Entries", schema.String("Entry")),
	})
}
func (m *mockComponent) NewProps() Props { return &mockProps{key: m.key} }
func (m *mockComponent) Render(w io.Writer, props Props, view *View) error {
	p := props.(*mockProps)
	if m.render != nil {
		return m.render(w, p, view)
	}
	_, err := io.WriteString(w, "<h1>"+p.Title+"</h1>")
	return err
}

func staticLoader(c Component) Loader {
	return func(ctx context.Context) (Component, error) { return c, nil }
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	desc := &TemplateDescriptor{
		Key:         "A",
		Description: "Template A",
		Loader:      staticLoader(&mockComponent{key: "A"}),
	}

	if err := reg.Register(desc); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	retrieved, ok := reg.Descriptor("A")
	if !ok {
		t.Fatal("Descriptor() returned false")
	}
	if retrieved.Description != desc.Description {
		t.Errorf("Description = %v, want %v", retrieved.Description, desc.Description)
	}
	if retrieved.Schema.Type != "object" {
		t.Errorf("Schema.Type = %q, want object default", retrieved.Schema.Type)
	}
	if reg.Loaded("A") {
		t.Error("component should not load at registration")
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()

	first := &TemplateDescriptor{Key: "A", Description: "first", Loader: staticLoader(&mockComponent{key: "A"})}
	second := &TemplateDescriptor{Key: "A", Description: "second", Loader: staticLoader(&mockComponent{key: "A"})}

	if err := reg.Register(first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := reg.Register(second)
	if !errors.Is(err, ErrDuplicateTemplate) {
		t.Fatalf("Register() error = %v, want ErrDuplicateTemplate", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("duplicate registration should be a configuration error, got %v", err)
	}

	d, _ := reg.Descriptor("A")
	if d.Description != "first" {
		t.Errorf("duplicate registration overwrote the first descriptor")
	}
}

func TestRegistry_Register_Invalid(t *testing.T) {
	tests := []struct {
		name string
		desc *TemplateDescriptor
	}{
		{"nil descriptor", nil},
		{"empty key", &TemplateDescriptor{Loader: staticLoader(&mockComponent{})}},
		{"nil loader", &TemplateDescriptor{Key: "A"}},
		{"non-object schema", &TemplateDescriptor{Key: "A", Loader: staticLoader(&mockComponent{key: "A"}), Schema: schema.Object{Type: "array"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			if err := reg.Register(tt.desc); err == nil {
				t.Error("Expected error for invalid descriptor")
			}
		})
	}
}

func TestRegistry_MustRegister_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustRegister should panic on invalid descriptor")
		}
	}()

	NewRegistry().MustRegister(nil)
}

func TestRegistry_Resolve_LoadsOnce(t *testing.T) {
	reg := NewRegistry()

	var loads atomic.Int32
	comp := &mockComponent{key: "A"}
	reg.MustRegister(&TemplateDescriptor{
		Key: "A",
		Loader: func(ctx context.Context) (Component, error) {
			loads.Add(1)
			return comp, nil
		},
	})

	ctx := context.Background()
	first, err := reg.Resolve(ctx, "A")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := reg.Resolve(ctx, "A")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if first != second {
		t.Error("Resolve() returned different components for the same key")
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loader called %d times, want 1", got)
	}
	if !reg.Loaded("A") {
		t.Error("Loaded() = false after resolve")
	}
}

func TestRegistry_Resolve_ConcurrentLoadsOnce(t *testing.T) {
	reg := NewRegistry()

	var loads atomic.Int32
	release := make(chan struct{})
	reg.MustRegister(&TemplateDescriptor{
		Key: "A",
		Loader: func(ctx context.Context) (Component, error) {
			loads.Add(1)
			<-release
			return &mockComponent{key: "A"}, nil
		},
	})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]Component, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := reg.Resolve(context.Background(), "A")
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			results[i] = c
		}(i)
	}

	close(release)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Errorf("loader called %d times, want 1", got)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d received a different component", i)
		}
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&TemplateDescriptor{Key: "A", Loader: staticLoader(&mockComponent{key: "A"})})

	for _, key := range []string{"C", "", "a", "A "} {
		c, err := reg.Resolve(context.Background(), key)
		if c != nil {
			t.Errorf("Resolve(%q) returned a component", key)
		}
		if !IsNotFound(err) {
			t.Errorf("Resolve(%q) error = %v, want ErrTemplateNotFound", key, err)
		}
		var terr *TemplateError
		if !errors.As(err, &terr) || terr.Key != key {
			t.Errorf("Resolve(%q) error should be a *TemplateError carrying the key, got %v", key, err)
		}
	}
}

func TestRegistry_Resolve_LoadFailureNotCached(t *testing.T) {
	reg := NewRegistry()

	var calls atomic.Int32
	reg.MustRegister(&TemplateDescriptor{
		Key: "A",
		Loader: func(ctx context.Context) (Component, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("template file missing")
			}
			return &mockComponent{key: "A"}, nil
		},
	})

	_, err := reg.Resolve(context.Background(), "A")
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("Resolve() error = %v, want ErrLoadFailed", err)
	}
	if reg.Loaded("A") {
		t.Fatal("failed load must not be cached")
	}

	if _, err := reg.Resolve(context.Background(), "A"); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("loader called %d times, want 2", calls.Load())
	}
}

func TestRegistry_Resolve_LoaderMisbehaves(t *testing.T) {
	tests := []struct {
		name   string
		loader Loader
	}{
		{"nil component", func(ctx context.Context) (Component, error) { return nil, nil }},
		{"wrong key", staticLoader(&mockComponent{key: "B"})},
		{"panic", func(ctx context.Context) (Component, error) { panic("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			reg.MustRegister(&TemplateDescriptor{Key: "A", Loader: tt.loader})

			_, err := reg.Resolve(context.Background(), "A")
			if !errors.Is(err, ErrLoadFailed) {
				t.Errorf("Resolve() error = %v, want ErrLoadFailed", err)
			}
		})
	}
}

func TestRegistry_Keys(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&TemplateDescriptor{Key: "Timeline", Loader: staticLoader(&mockComponent{key: "Timeline"})})
	reg.MustRegister(&TemplateDescriptor{Key: "PricingCards", Loader: staticLoader(&mockComponent{key: "PricingCards"})})

	keys := reg.Keys()
	if len(keys) != 2 || keys[0] != "PricingCards" || keys[1] != "Timeline" {
		t.Errorf("Keys() = %v, want sorted [PricingCards Timeline]", keys)
	}
	if reg.Count() != 2 {
		t.Errorf("Count() = %d, want 2", reg.Count())
	}
}

func TestDefaultRegistry(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	MustRegister(&TemplateDescriptor{Key: "A", Loader: staticLoader(&mockComponent{key: "A"})})

	if names := ListRegistered(); len(names) != 1 || names[0] != "A" {
		t.Errorf("ListRegistered() = %v", names)
	}
	if _, err := Resolve(context.Background(), "A"); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}

	ClearRegistry()
	if len(ListRegistered()) != 0 {
		t.Error("Expected no templates after clear")
	}
}
