package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Response wraps all API responses.
type Response struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
	Meta  *Meta     `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	TotalCount int `json:"total_count,omitempty"`
}

// PanelInfo describes a published panel.
type PanelInfo struct {
	SessionID    string                  `json:"sessionId"`
	RequestID    string                  `json:"requestId"`
	TemplateKey  string                  `json:"templateKey"`
	Generation   uint64                  `json:"generation"`
	Fallback     bool                    `json:"fallback"`
	FallbackKind volumetric.FallbackKind `json:"fallbackKind,omitempty"`
	RenderedAt   time.Time               `json:"renderedAt"`
}

// SessionInfo is a session with its current panel and history.
type SessionInfo struct {
	ID      string      `json:"id"`
	Current *PanelInfo  `json:"current,omitempty"`
	History []PanelInfo `json:"history"`
}

// RenderResponse is the body of a /render response.
type RenderResponse struct {
	HTML   string                   `json:"html"`
	Result *volumetric.RenderResult `json:"result"`
	Error  string                   `json:"error,omitempty"`
}

// ActionRequest is the body of a /actions request.
type ActionRequest struct {
	Text        string `json:"text"`
	SessionID   string `json:"sessionId"`
	TemplateKey string `json:"templateKey,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
}

// ActionResponse reports that a phrase was handed to the dispatcher.
// Delivery itself is fire-and-forget.
type ActionResponse struct {
	Accepted bool `json:"accepted"`
	Attached bool `json:"bridgeAttached"`
}

// HealthResponse is the body of a /health response.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Templates int                      `json:"templates"`
	Sessions  int                      `json:"sessions"`
	Dispatch  volumetric.DispatchStats `json:"dispatch"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

// writeJSONWithMeta writes a JSON response with metadata.
func writeJSONWithMeta(w http.ResponseWriter, status int, data any, meta *Meta) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data, Meta: meta})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Error: &APIError{Code: code, Message: message},
	})
}

// writeDomainError maps package errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, volumetric.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, volumetric.ErrInvalidPhrase):
		writeError(w, http.StatusBadRequest, "invalid_phrase", err.Error())
	case errors.Is(err, volumetric.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "template_not_found", err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, session.ErrSuperseded):
		writeError(w, http.StatusConflict, "superseded", err.Error())
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func panelInfo(p *session.Panel) PanelInfo {
	return PanelInfo{
		SessionID:    p.SessionID,
		RequestID:    p.RequestID,
		TemplateKey:  p.TemplateKey,
		Generation:   p.Generation,
		Fallback:     p.Fallback,
		FallbackKind: p.Kind,
		RenderedAt:   p.RenderedAt,
	}
}

// decodeRequest reads a navigation request body.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*volumetric.NavigationRequest, bool) {
	req, err := volumetric.DecodeNavigationRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return req, true
}

// Template handlers

func (rt *router) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := rt.host.Describe()
	writeJSONWithMeta(w, http.StatusOK, templates, &Meta{TotalCount: len(templates)})
}

func (rt *router) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	info, err := rt.host.DescribeTemplate(r.PathValue("key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Navigation handlers

func (rt *router) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "navigation is disabled")
		return
	}
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	panel, err := rt.sessions.Show(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panelInfo(panel))
}

func (rt *router) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = rt.sessions.DefaultSessionID()
	}

	var buf bytes.Buffer
	res := rt.host.Render(r.Context(), &buf, req, &volumetric.View{SessionID: sessionID})
	resp := RenderResponse{HTML: buf.String(), Result: res}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Session handlers

func (rt *router) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "session creation is disabled")
		return
	}
	s, err := rt.sessions.Create()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionInfo{ID: s.ID, History: []PanelInfo{}})
}

func (rt *router) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	history, err := rt.sessions.History(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	info := SessionInfo{ID: id, History: make([]PanelInfo, 0, len(history))}
	for _, p := range history {
		info.History = append(info.History, panelInfo(p))
	}
	if current, err := rt.sessions.Current(id); err == nil {
		pi := panelInfo(current)
		info.Current = &pi
	}
	writeJSON(w, http.StatusOK, info)
}

// Action handlers

func (rt *router) handleAction(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "actions are disabled")
		return
	}

	var body ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if body.SessionID == "" {
		body.SessionID = rt.sessions.DefaultSessionID()
	}
	if _, err := rt.sessions.Get(body.SessionID); err != nil {
		writeDomainError(w, err)
		return
	}

	phrase := volumetric.NewActionPhrase(body.Text)
	phrase.SessionID = body.SessionID
	phrase.TemplateKey = body.TemplateKey
	phrase.RequestID = body.RequestID
	if err := phrase.Validate(rt.host.Config().MaxPhraseLength); err != nil {
		writeDomainError(w, err)
		return
	}

	if !rt.config.Limiter.Allow(body.SessionID) {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many actions for this session")
		return
	}

	rt.dispatcher.Notify(r.Context(), phrase)
	writeJSON(w, http.StatusAccepted, ActionResponse{Accepted: true, Attached: rt.dispatcher.Attached()})
}

func (rt *router) handleDispatchStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.dispatcher.Stats())
}

// Health handlers

func (rt *router) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := rt.dispatcher.Stats()
	status := "ok"
	if !stats.Running {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Templates: rt.host.Registry().Count(),
		Sessions:  rt.sessions.Len(),
		Dispatch:  stats,
	})
}
