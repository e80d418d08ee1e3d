package asset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/youssefsiam38/volumetric"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setup(t *testing.T) (dir, manifest string) {
	t.Helper()
	dir = t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "images", "logo.svg"), `<svg xmlns="http://www.w3.org/2000/svg"/>`)
	manifest = filepath.Join(dir, "assets.yaml")
	writeFile(t, manifest, "logo: images/logo.svg\nmissing: images/nope.png\n")
	return dir, manifest
}

func TestRegistry_Resolve(t *testing.T) {
	dir, manifest := setup(t)
	reg, err := NewRegistry(&Config{Manifest: manifest})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		id   string
		want volumetric.AssetResolution
	}{
		{"logo", volumetric.AssetResolution{ID: "logo", LocalPath: filepath.Join(dir, "images", "logo.svg"), URL: "/assets/logo"}},
		{"a calm beach at sunrise", volumetric.AssetResolution{ID: "a calm beach at sunrise", Generate: true, Prompt: "a calm beach at sunrise"}},
		{"  ", volumetric.AssetResolution{}},
	}
	for _, tt := range tests {
		got := reg.Resolve(tt.id)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.id, diff)
		}
	}

	if !reg.Resolve("").Placeholder() || !reg.Resolve("a calm beach at sunrise").Placeholder() {
		t.Error("unregistered ids should render placeholders")
	}
	if reg.Resolve("logo").Placeholder() {
		t.Error("registered id should not be a placeholder")
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadManifest(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("missing manifest should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "- not\n- a map\n")
	if _, err := LoadManifest(bad); err == nil {
		t.Error("non-map manifest should fail")
	}

	empty := filepath.Join(dir, "empty.yaml")
	writeFile(t, empty, "logo: \"\"\n")
	if _, err := LoadManifest(empty); err == nil {
		t.Error("empty path should fail")
	}
}

func TestRegistry_ReloadKeepsEntriesOnError(t *testing.T) {
	_, manifest := setup(t)
	reg, err := NewRegistry(&Config{Manifest: manifest})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	writeFile(t, manifest, "logo: [unclosed\n")
	if err := reg.Reload(); err == nil {
		t.Fatal("Reload() should fail on a broken manifest")
	}
	if reg.Resolve("logo").LocalPath == "" {
		t.Error("entries lost after failed reload")
	}
}

func TestRegistry_Handler(t *testing.T) {
	_, manifest := setup(t)
	reg, err := NewRegistry(&Config{Manifest: manifest})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	srv := httptest.NewServer(http.StripPrefix("/assets", reg.Handler()))
	defer srv.Close()

	tests := []struct {
		path string
		want int
	}{
		{"/assets/logo", http.StatusOK},
		{"/assets/unknown", http.StatusNotFound},
		{"/assets/missing", http.StatusNotFound},
		{"/assets/", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}

	resp, err := http.Post(srv.URL+"/assets/logo", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST = %d, want 405", resp.StatusCode)
	}
}

func TestRegistry_HandlerEscapedIDs(t *testing.T) {
	dir, manifest := setup(t)
	reg, err := NewRegistry(&Config{Manifest: manifest})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	logo := filepath.Join(dir, "images", "logo.svg")
	for _, id := range []string{"50%off", "hero banner", "a%2Fb"} {
		reg.Set(id, logo)
	}

	srv := httptest.NewServer(http.StripPrefix("/assets", reg.Handler()))
	defer srv.Close()

	for _, id := range []string{"50%off", "hero banner", "a%2Fb"} {
		u := reg.Resolve(id).URL
		resp, err := http.Get(srv.URL + u)
		if err != nil {
			t.Fatalf("GET %s: %v", u, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s (id %q) = %d, want 200", u, id, resp.StatusCode)
		}
	}
}

func TestRegistry_WatchReloads(t *testing.T) {
	dir, manifest := setup(t)
	reg, err := NewRegistry(&Config{Manifest: manifest})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Watch(ctx, 20*time.Millisecond) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	}()

	writeFile(t, filepath.Join(dir, "images", "hero.png"), "png")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		// rewrite until the watcher has picked up the directory
		writeFile(t, manifest, "logo: images/logo.svg\nhero: images/hero.png\n")
		time.Sleep(50 * time.Millisecond)
		if reg.Resolve("hero").LocalPath != "" {
			return
		}
	}
	t.Fatal("manifest change was not picked up")
}

func TestRegistry_WatchWithoutManifest(t *testing.T) {
	reg, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := reg.Watch(context.Background(), 0); err == nil {
		t.Error("Watch() without a manifest should fail")
	}

	reg.Set("icon", "/tmp/icon.png")
	if got := reg.IDs(); len(got) != 1 || got[0] != "icon" {
		t.Errorf("IDs() = %v", got)
	}
}
