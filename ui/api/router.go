package api

import (
	"net/http"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/internal/ratelimit"
	"github.com/youssefsiam38/volumetric/session"
)

// Default configuration values.
const (
	DefaultActionRate  = 2.0
	DefaultActionBurst = 5
)

// Config holds API router configuration.
type Config struct {
	// ReadOnly rejects navigation and action requests.
	ReadOnly bool

	// ActionRate is the number of action phrases per second allowed per
	// session. Zero uses DefaultActionRate; negative disables limiting.
	ActionRate float64

	// ActionBurst is the per-session burst. Defaults to DefaultActionBurst.
	ActionBurst int

	// Limiter overrides the limiter built from ActionRate/ActionBurst, so
	// the frontend and the API can share one budget per session.
	Limiter *ratelimit.Keyed

	// Logger for structured logging.
	Logger volumetric.Logger
}

func (c *Config) applyDefaults() {
	if c.ActionRate == 0 {
		c.ActionRate = DefaultActionRate
	}
	if c.ActionBurst == 0 {
		c.ActionBurst = DefaultActionBurst
	}
	if c.Limiter == nil {
		c.Limiter = ratelimit.New(c.ActionRate, c.ActionBurst)
	}
}

// router holds the API router state.
type router struct {
	host       *volumetric.Host
	sessions   *session.Manager
	dispatcher *volumetric.Dispatcher
	config     *Config
}

// NewRouter creates a new API router.
func NewRouter(host *volumetric.Host, sessions *session.Manager, dispatcher *volumetric.Dispatcher, cfg *Config) http.Handler {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()

	r := &router{
		host:       host,
		sessions:   sessions,
		dispatcher: dispatcher,
		config:     &c,
	}

	mux := http.NewServeMux()

	// Templates
	mux.HandleFunc("GET /templates", r.handleListTemplates)
	mux.HandleFunc("GET /templates/{key}", r.handleGetTemplate)

	// Navigation
	mux.HandleFunc("POST /navigate", r.handleNavigate)
	mux.HandleFunc("POST /render", r.handleRender)

	// Sessions
	mux.HandleFunc("POST /sessions", r.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", r.handleGetSession)

	// Actions
	mux.HandleFunc("POST /actions", r.handleAction)
	mux.HandleFunc("GET /dispatch/stats", r.handleDispatchStats)

	// Health
	mux.HandleFunc("GET /health", r.handleHealth)

	return withMiddleware(mux, &c)
}

// withMiddleware wraps the handler with common middleware.
func withMiddleware(handler http.Handler, cfg *Config) http.Handler {
	// Add JSON content type
	handler = jsonMiddleware(handler)
	// Add error recovery
	handler = recoveryMiddleware(handler, cfg.Logger)
	return handler
}

// jsonMiddleware sets JSON content type for all responses.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func recoveryMiddleware(next http.Handler, logger volumetric.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if logger != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				}
				http.Error(w, `{"error":{"code":"internal_error","message":"internal server error"}}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
