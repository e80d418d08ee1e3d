package frontend

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/internal/ratelimit"
	"github.com/youssefsiam38/volumetric/onboarding"
	"github.com/youssefsiam38/volumetric/session"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Default configuration values.
const (
	DefaultTitle     = "Volumetric"
	DefaultKeepAlive = 15 * time.Second
)

// Config holds frontend router configuration.
type Config struct {
	// BasePath is the URL prefix where the UI is mounted.
	// All links and HTMX endpoints will be prefixed with this path.
	BasePath string

	// Title is the page title.
	Title string

	// ReadOnly disables actions and onboarding controls.
	ReadOnly bool

	// KeepAlive is the interval between SSE comments on idle streams.
	KeepAlive time.Duration

	// Limiter bounds action phrases per session. Nil disables limiting.
	Limiter *ratelimit.Keyed

	// Assets serves /assets/{id}. Optional.
	Assets http.Handler

	// Logger for structured logging.
	Logger volumetric.Logger
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = DefaultKeepAlive
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}

// router holds the frontend router state.
type router struct {
	sessions   *session.Manager
	dispatcher *volumetric.Dispatcher
	tracker    *onboarding.Tracker
	config     *Config
	renderer   *renderer
}

// NewRouter creates a new frontend router. A nil tracker keeps onboarding
// progress in memory.
func NewRouter(sessions *session.Manager, dispatcher *volumetric.Dispatcher, tracker *onboarding.Tracker, cfg *Config) http.Handler {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()
	if tracker == nil {
		tracker = onboarding.NewTracker(nil)
	}

	// Parse base templates (layout, shared fragments)
	// Page-specific templates are parsed by the renderer into a clone.
	baseTmpl := template.Must(template.New("").
		Funcs(templateFuncs()).
		ParseFS(templatesFS,
			"templates/base.html",
			"templates/fragments/empty.html",
		))

	r := &router{
		sessions:   sessions,
		dispatcher: dispatcher,
		tracker:    tracker,
		config:     &c,
		renderer:   newRenderer(baseTmpl, templatesFS, &c),
	}

	mux := http.NewServeMux()

	// Static assets
	staticSub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	if c.Assets != nil {
		mux.Handle("GET /assets/", http.StripPrefix("/assets", c.Assets))
	}

	// Pages
	mux.HandleFunc("GET /{$}", r.handleNewSession)
	mux.HandleFunc("GET /s/{id}", r.handleSession)

	// HTMX fragments
	mux.HandleFunc("GET /s/{id}/panel", r.handlePanel)
	mux.HandleFunc("GET /s/{id}/events", r.handleEvents)
	mux.HandleFunc("POST /s/{id}/action", r.handleAction)
	mux.HandleFunc("POST /s/{id}/onboarding/{op}", r.handleOnboarding)

	return withFrontendMiddleware(mux, &c)
}

// withFrontendMiddleware wraps the handler with frontend-specific middleware.
func withFrontendMiddleware(handler http.Handler, cfg *Config) http.Handler {
	handler = frontendRecoveryMiddleware(handler, cfg.Logger)
	return handler
}

// frontendRecoveryMiddleware recovers from panics.
func frontendRecoveryMiddleware(next http.Handler, logger volumetric.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": formatTime,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
