// Package api provides the JSON API agents and tools use to drive the
// volumetric host.
//
// Every response is wrapped in {"data": ..., "error": ..., "meta": ...}.
//
// # Endpoints
//
// Templates:
//   - GET /templates - Template catalog with props schemas
//   - GET /templates/{key} - One template
//
// Navigation:
//   - POST /navigate - Render a navigation request and push it to its session
//   - POST /render - Render a navigation request and return the HTML only
//
// Sessions:
//   - POST /sessions - Create a session
//   - GET /sessions/{id} - Current panel and history
//
// Actions:
//   - POST /actions - Send an action phrase to the agent (rate limited)
//   - GET /dispatch/stats - Dispatch counters
//
// Health:
//   - GET /health - Liveness and component status
package api
