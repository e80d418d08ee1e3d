// Package frontend serves the browser side of the volumetric host.
//
// The page is a single stage that shows the session's current panel. Panels
// arrive over server-sent events and are swapped in by HTMX; clicks post
// action phrases back. HTMX and its SSE extension are loaded from a CDN.
//
// # Routes
//
// Pages:
//   - GET / - Create a session and redirect to it
//   - GET /s/{id} - Session page
//
// HTMX Fragments:
//   - GET /s/{id}/panel - Current panel (or the empty stage)
//   - GET /s/{id}/events - SSE stream of panels ("panel" events)
//   - POST /s/{id}/action - Send an action phrase (form value "phrase")
//   - POST /s/{id}/onboarding/{op} - Move the onboarding stepper (next, prev, skip, reset)
//
// Static Assets:
//   - GET /static/* - Embedded CSS and JS
//   - GET /assets/{id} - Registered assets (when an asset handler is set)
package frontend
