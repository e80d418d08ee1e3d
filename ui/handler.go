package ui

import (
	"net/http"
	"strings"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/internal/ratelimit"
	"github.com/youssefsiam38/volumetric/onboarding"
	"github.com/youssefsiam38/volumetric/session"
	"github.com/youssefsiam38/volumetric/ui/api"
	"github.com/youssefsiam38/volumetric/ui/frontend"
)

// Deps are the components the UI serves.
type Deps struct {
	// Host renders templates (required)
	Host *volumetric.Host

	// Sessions owns browser sessions (required)
	Sessions *session.Manager

	// Dispatcher forwards action phrases (required)
	Dispatcher *volumetric.Dispatcher

	// Tracker stores onboarding progress. Optional; defaults to memory.
	Tracker *onboarding.Tracker

	// Assets serves registered assets under /assets/. Optional.
	Assets http.Handler
}

func (d Deps) validate() error {
	if d.Host == nil || d.Sessions == nil || d.Dispatcher == nil {
		return ErrMissingDependency
	}
	return nil
}

// resolve applies defaults and validates, panicking on programmer errors.
func resolve(d Deps, cfg *Config) *Config {
	c := DefaultConfig()
	if cfg != nil {
		cp := *cfg
		c = &cp
		c.applyDefaults()
	}
	if err := c.validate(); err != nil {
		panic("ui: invalid configuration: " + err.Error())
	}
	if err := d.validate(); err != nil {
		panic(err.Error())
	}
	return c
}

// Handler returns the frontend with the JSON API mounted at APIPrefix.
// The page and the API share one action rate budget per session.
//
// Usage:
//
//	http.Handle("/", ui.Handler(deps, cfg))
//	http.Handle("/ui/", http.StripPrefix("/ui", ui.Handler(deps, &ui.Config{BasePath: "/ui"})))
func Handler(d Deps, cfg *Config) http.Handler {
	c := resolve(d, cfg)
	limiter := ratelimit.New(c.ActionRate, c.ActionBurst)

	mux := http.NewServeMux()
	mux.Handle(c.APIPrefix+"/", http.StripPrefix(c.APIPrefix, newAPI(d, c, limiter)))
	mux.Handle("/", newFrontend(d, c, limiter))
	return mux
}

// UIHandler returns an http.Handler for the SSR frontend only.
func UIHandler(d Deps, cfg *Config) http.Handler {
	c := resolve(d, cfg)
	return newFrontend(d, c, ratelimit.New(c.ActionRate, c.ActionBurst))
}

// APIHandler returns an http.Handler for the JSON API only.
func APIHandler(d Deps, cfg *Config) http.Handler {
	c := resolve(d, cfg)
	return newAPI(d, c, ratelimit.New(c.ActionRate, c.ActionBurst))
}

func newFrontend(d Deps, c *Config, limiter *ratelimit.Keyed) http.Handler {
	return frontend.NewRouter(d.Sessions, d.Dispatcher, d.Tracker, &frontend.Config{
		BasePath:  strings.TrimSuffix(c.BasePath, "/"),
		Title:     c.Title,
		ReadOnly:  c.ReadOnly,
		KeepAlive: c.KeepAlive,
		Limiter:   limiter,
		Assets:    d.Assets,
		Logger:    c.Logger,
	})
}

func newAPI(d Deps, c *Config, limiter *ratelimit.Keyed) http.Handler {
	return api.NewRouter(d.Host, d.Sessions, d.Dispatcher, &api.Config{
		ReadOnly: c.ReadOnly,
		Limiter:  limiter,
		Logger:   c.Logger,
	})
}
