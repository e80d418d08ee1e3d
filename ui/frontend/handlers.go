package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/catalog"
	"github.com/youssefsiam38/volumetric/onboarding"
	"github.com/youssefsiam38/volumetric/session"
)

// errNotOnboarding is returned when an onboarding control is used while
// another template is on stage.
var errNotOnboarding = errors.New("current panel is not an onboarding flow")

// sessionError writes the HTTP error for a session lookup failure.
func (rt *router) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, session.ErrClosed):
		http.Error(w, "Shutting down", http.StatusServiceUnavailable)
	default:
		rt.config.Logger.Error("session lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Pages

func (rt *router) handleNewSession(w http.ResponseWriter, r *http.Request) {
	id := rt.sessions.DefaultSessionID()
	if !rt.config.ReadOnly {
		s, err := rt.sessions.Create()
		if err != nil {
			rt.sessionError(w, err)
			return
		}
		id = s.ID
	}
	http.Redirect(w, r, rt.config.BasePath+"/s/"+id, http.StatusSeeOther)
}

func (rt *router) handleSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := rt.sessions.Get(id); err != nil {
		rt.sessionError(w, err)
		return
	}

	stage := StageData{Empty: true}
	if p, err := rt.sessions.Current(id); err == nil {
		stage = StageData{Panel: p.HTML}
	}
	if err := rt.renderer.render(w, id, "session.html", stage); err != nil {
		rt.config.Logger.Error("failed to render session page", "error", err, "session_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HTMX fragments

func (rt *router) handlePanel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := rt.sessions.Current(id)
	if errors.Is(err, session.ErrNoPanel) {
		if err := rt.renderer.renderFragment(w, "empty", StageData{Empty: true}); err != nil {
			rt.config.Logger.Error("failed to render empty stage", "error", err)
		}
		return
	}
	if err != nil {
		rt.sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(p.HTML))
}

func (rt *router) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	panels, cancel, err := rt.sessions.Subscribe(id)
	if err != nil {
		rt.sessionError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(rt.config.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case p, ok := <-panels:
			if !ok {
				return
			}
			if err := writeEvent(w, "panel", p.RequestID, p.HTML); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes one SSE event. Multi-line data is split into one
// data field per line.
func writeEvent(w http.ResponseWriter, event, id string, data template.HTML) error {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteString("\n")
	if id != "" {
		b.WriteString("id: ")
		b.WriteString(id)
		b.WriteString("\n")
	}
	for _, line := range strings.Split(string(data), "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimSuffix(line, "\r"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, err := w.Write([]byte(b.String()))
	return err
}

func (rt *router) handleAction(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		http.Error(w, "Read-only mode", http.StatusForbidden)
		return
	}
	id := r.PathValue("id")
	if _, err := rt.sessions.Get(id); err != nil {
		rt.sessionError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	phrase := volumetric.NewActionPhrase(r.FormValue("phrase"))
	phrase.SessionID = id
	phrase.TemplateKey = r.FormValue("templateKey")
	phrase.RequestID = r.FormValue("requestId")
	if err := phrase.Validate(rt.dispatcher.Config().MaxPhraseLength); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !rt.config.Limiter.Allow(id) {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	rt.dispatcher.Notify(r.Context(), phrase)
	w.WriteHeader(http.StatusNoContent)
}

func (rt *router) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		http.Error(w, "Read-only mode", http.StatusForbidden)
		return
	}
	id := r.PathValue("id")
	op, err := onboarding.ParseOp(r.PathValue("op"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := rt.sessions.Update(r.Context(), id, func(req *volumetric.NavigationRequest) error {
		return rt.stepOnboarding(r.Context(), id, req, op)
	})
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNoPanel), errors.Is(err, errNotOnboarding), errors.Is(err, volumetric.ErrInvalidProps):
		http.Error(w, "No onboarding flow on stage", http.StatusConflict)
		return
	case errors.Is(err, session.ErrSuperseded):
		// A navigation replaced the flow; the stream delivers the new panel.
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		rt.sessionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(p.HTML))
}

// stepOnboarding applies op to the flow in req and rewrites its current
// step. Props the flow does not know are kept as sent by the agent.
func (rt *router) stepOnboarding(ctx context.Context, sessionID string, req *volumetric.NavigationRequest, op onboarding.Op) error {
	if req.TemplateKey != catalog.KeyOnboardingFlow {
		return errNotOnboarding
	}

	var flow catalog.OnboardingFlowProps
	if err := json.Unmarshal(req.Props, &flow); err != nil {
		return fmt.Errorf("%w: %v", volumetric.ErrInvalidProps, err)
	}
	flow.Normalize()

	// The rendered props are authoritative; the agent may have re-sent the
	// flow at another step.
	subject := onboarding.Subject(sessionID, flow.ID)
	rt.tracker.Stepper(subject, flow.Total(), flow.Current).Seek(flow.Current)

	index, err := rt.tracker.Apply(ctx, subject, flow.Total(), flow.Current, op)
	if err != nil {
		return err
	}

	props := map[string]any{}
	if err := json.Unmarshal(req.Props, &props); err != nil {
		return fmt.Errorf("%w: %v", volumetric.ErrInvalidProps, err)
	}
	props["current"] = index
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	req.Props = raw
	rt.config.Logger.Debug("onboarding step", "session_id", sessionID, "flow", flow.ID, "op", string(op), "current", index)
	return nil
}
