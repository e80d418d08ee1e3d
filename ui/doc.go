// Package ui serves the volumetric host over HTTP.
//
// The package provides HTTP handlers for:
//   - Handler: browser frontend plus JSON API under /api
//   - UIHandler: browser frontend only (HTMX + SSE)
//   - APIHandler: JSON API only
//
// # Quick Start
//
//	reg := volumetric.NewRegistry()
//	catalog.MustRegister(reg)
//	host, _ := volumetric.NewHost(reg, nil)
//
//	sessions := session.NewManager(host, nil)
//	dispatcher, _ := volumetric.NewDispatcher(nil)
//	dispatcher.Start(ctx)
//	dispatcher.Attach(bridge)
//
//	http.ListenAndServe(":8080", ui.Handler(ui.Deps{
//	    Host:       host,
//	    Sessions:   sessions,
//	    Dispatcher: dispatcher,
//	}, nil))
//
// # Configuration
//
//	cfg := &ui.Config{
//	    BasePath:    "/ui",
//	    ReadOnly:    false,
//	    ActionRate:  2,  // phrases per second per session
//	    ActionBurst: 5,
//	}
//
// When mounted under a prefix, strip it and set BasePath so rendered
// panels post to the right endpoints:
//
//	http.Handle("/ui/", http.StripPrefix("/ui", ui.Handler(deps, cfg)))
package ui
