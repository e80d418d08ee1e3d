// Package volumetric renders agent-selected templates and forwards user
// clicks back to the agent as natural-language action phrases.
//
// An external conversational agent drives the UI by sending navigation
// requests: a template key plus a JSON props object. The host resolves the
// key in a Registry (components load lazily, once per key), decodes the
// props into the template's typed props struct and renders HTML. Clickable
// elements do not link anywhere; they post an action phrase such as
// "Show me the Pro plan" which the Dispatcher forwards, one-way, to the
// agent. The agent answers with a new navigation request. This loop is
// called volumetric navigation.
//
// # Quick Start
//
// Register templates and render a request:
//
//	reg := volumetric.NewRegistry()
//	catalog.MustRegister(reg)
//
//	host, _ := volumetric.NewHost(reg, nil)
//	req, _ := volumetric.ParseNavigationRequest([]byte(`{"templateKey":"PricingCards","props":{}}`))
//	result := host.Render(ctx, w, req, &volumetric.View{SessionID: "s1"})
//	if result.Fallback {
//	    // unknown template or malformed props; w holds the fallback panel
//	}
//
// # Dispatching Action Phrases
//
// The Dispatcher is the only outbound channel to the agent:
//
//	d, _ := volumetric.NewDispatcher(nil)
//	_ = d.Start(ctx)
//	d.Attach(bridge) // e.g. pgnotify.NewBridge(...)
//	d.Notify(ctx, volumetric.NewActionPhrase("Tell me more about the Pro plan"))
//
// Notify is fire-and-forget. Phrases are forwarded in order, once each.
// Phrases sent while no bridge is attached are dropped and never replayed.
//
// # Error Handling
//
// Nothing in this package is fatal to the process. Unknown template keys,
// loader failures, malformed props and panicking components all produce the
// fallback panel and a RenderResult describing the failure; use
// errors.Is(result.Err, volumetric.ErrTemplateNotFound) and friends to
// classify it.
package volumetric
