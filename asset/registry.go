// Package asset resolves the asset identifiers templates use for imagery.
//
// Registered identifiers map to local files listed in a YAML manifest:
//
//	logo: images/logo.png
//	team-photo: /srv/media/team.jpg
//
// Relative paths are resolved against the manifest's directory. Any
// identifier that is not registered is treated as a prompt for generating
// the image; templates render a placeholder for it.
package asset

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/youssefsiam38/volumetric"
)

// DefaultBaseURL is where registered assets are served.
const DefaultBaseURL = "/assets"

// Config configures a Registry.
type Config struct {
	// Manifest is the YAML file listing registered assets. Optional.
	Manifest string

	// BaseURL is the URL prefix of the asset handler. Defaults to "/assets".
	BaseURL string

	// Logger for structured logging. If nil, logging is disabled.
	Logger volumetric.Logger
}

// Registry maps asset ids to local files. It is safe for concurrent use
// and implements volumetric.AssetResolver.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
	config  Config
}

// NewRegistry creates a registry and loads the manifest if one is set.
func NewRegistry(cfg *Config) (*Registry, error) {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}

	r := &Registry{entries: make(map[string]string), config: c}
	if c.Manifest != "" {
		if err := r.Reload(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadManifest reads a manifest file. Relative paths are made absolute
// against the manifest's directory.
func LoadManifest(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset manifest: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse asset manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	entries := make(map[string]string, len(raw))
	for id, p := range raw {
		id = strings.TrimSpace(id)
		p = strings.TrimSpace(p)
		if id == "" || p == "" {
			return nil, fmt.Errorf("asset manifest %s: empty id or path", path)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		entries[id] = p
	}
	return entries, nil
}

// Reload re-reads the manifest and replaces all entries. On error the
// previous entries are kept.
func (r *Registry) Reload() error {
	if r.config.Manifest == "" {
		return nil
	}
	entries, err := LoadManifest(r.config.Manifest)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	r.config.Logger.Info("asset manifest loaded", "path", r.config.Manifest, "assets", len(entries))
	return nil
}

// Set registers or replaces a single asset.
func (r *Registry) Set(id, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = path
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve returns the local file and URL for a registered id, or a
// generation prompt for anything else. An empty id resolves to a bare
// placeholder.
func (r *Registry) Resolve(id string) volumetric.AssetResolution {
	id = strings.TrimSpace(id)
	if id == "" {
		return volumetric.AssetResolution{}
	}
	r.mu.RLock()
	p, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return volumetric.AssetResolution{ID: id, Generate: true, Prompt: id}
	}
	return volumetric.AssetResolution{
		ID:        id,
		LocalPath: p,
		URL:       r.config.BaseURL + "/" + url.PathEscape(id),
	}
}

// Handler serves registered assets at {BaseURL}/{id}. Mount it with the
// BaseURL prefix stripped. Unknown ids and missing files are 404s.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/")
		if id == "" {
			http.NotFound(w, req)
			return
		}
		res := r.Resolve(id)
		if res.LocalPath == "" {
			http.NotFound(w, req)
			return
		}
		f, err := os.Open(res.LocalPath)
		if err != nil {
			r.config.Logger.Warn("registered asset not readable", "id", id, "path", res.LocalPath, "error", err)
			http.NotFound(w, req)
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=300")
		http.ServeContent(w, req, info.Name(), info.ModTime(), f)
	})
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
