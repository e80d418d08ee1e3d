// Package session tracks browser sessions and pushes rendered panels to
// them.
//
// The agent addresses a session by id in each navigation request. The
// Manager renders the request through the Host and publishes the panel to
// every subscriber of the session (the browser's SSE streams). Renders are
// guarded by a per-session generation: when a newer navigation starts while
// an older one is still rendering, the older panel is discarded instead of
// overwriting the newer one.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/volumetric"
)

// Default configuration values.
const (
	DefaultSessionID        = "default"
	DefaultSubscriberBuffer = 8
	DefaultHistorySize      = 20
)

// Config configures a Manager.
type Config struct {
	// BasePath is the URL prefix the UI is mounted under; passed to views
	BasePath string

	// DefaultSessionID receives requests without a session id.
	// Defaults to "default".
	DefaultSessionID string

	// SubscriberBuffer is the number of panels buffered per subscriber
	// before the oldest is dropped. Defaults to 8.
	SubscriberBuffer int

	// HistorySize is the number of panels kept per session. Defaults to 20.
	HistorySize int

	// Assets resolves asset ids for rendered panels. Optional.
	Assets volumetric.AssetResolver

	// OnEvict is called with the id of each session removed by Sweep
	OnEvict func(id string)

	// Logger for structured logging. If nil, logging is disabled.
	Logger volumetric.Logger
}

func (c *Config) applyDefaults() {
	if c.DefaultSessionID == "" {
		c.DefaultSessionID = DefaultSessionID
	}
	if c.SubscriberBuffer < 1 {
		c.SubscriberBuffer = DefaultSubscriberBuffer
	}
	if c.HistorySize < 1 {
		c.HistorySize = DefaultHistorySize
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}

// Renderer renders navigation requests. *volumetric.Host implements it.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, req *volumetric.NavigationRequest, view *volumetric.View) *volumetric.RenderResult
}

// Manager owns all sessions. It implements volumetric.Navigator.
type Manager struct {
	renderer Renderer
	config   Config

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

var _ volumetric.Navigator = (*Manager)(nil)

// NewManager creates a manager rendering through r.
func NewManager(r Renderer, cfg *Config) *Manager {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()

	m := &Manager{
		renderer: r,
		config:   c,
		sessions: make(map[string]*Session),
	}
	m.sessions[c.DefaultSessionID] = newSession(c.DefaultSessionID)
	return m
}

// DefaultSessionID returns the id of the session that receives requests
// without a session id.
func (m *Manager) DefaultSessionID() string {
	return m.config.DefaultSessionID
}

// Create starts a new session.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	s := newSession(uuid.NewString())
	m.sessions[s.ID] = s
	m.config.Logger.Debug("session created", "session_id", s.ID)
	return s, nil
}

// Get returns the session with id. The empty id is the default session.
func (m *Manager) Get(id string) (*Session, error) {
	if id == "" {
		id = m.config.DefaultSessionID
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return nil, ErrClosed
	}
	if !ok {
		if id != m.config.DefaultSessionID {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		// the default session was swept; recreate it
		m.mu.Lock()
		if s, ok = m.sessions[id]; !ok {
			s = newSession(id)
			m.sessions[id] = s
		}
		m.mu.Unlock()
	}
	s.touch()
	return s, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Navigate renders req and publishes it to the target session. A request
// superseded by a newer navigation while rendering is dropped silently.
func (m *Manager) Navigate(ctx context.Context, req *volumetric.NavigationRequest) error {
	_, err := m.Show(ctx, req)
	if errors.Is(err, ErrSuperseded) {
		m.config.Logger.Debug("navigation superseded", "session_id", req.SessionID, "template", req.TemplateKey)
		return nil
	}
	return err
}

// Show renders req as the session's new panel and returns it. It returns
// ErrSuperseded if a newer navigation started before the render finished.
func (m *Manager) Show(ctx context.Context, req *volumetric.NavigationRequest) (*Panel, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", volumetric.ErrInvalidRequest)
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	s, err := m.Get(req.SessionID)
	if err != nil {
		return nil, err
	}
	req.SessionID = s.ID

	return m.renderAndCommit(ctx, s, req, s.begin())
}

// Update re-renders the session's current request after mutate edits a
// copy of it. The panel keeps its request id and generation, so an
// in-flight navigation still wins. Used for local panel state that never
// reaches the agent.
func (m *Manager) Update(ctx context.Context, sessionID string, mutate func(req *volumetric.NavigationRequest) error) (*Panel, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	current, _ := s.snapshot()
	if current == nil {
		return nil, ErrNoPanel
	}

	req := *current.Request
	req.Props = append(json.RawMessage(nil), current.Request.Props...)
	if err := mutate(&req); err != nil {
		return nil, err
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	return m.renderAndCommit(ctx, s, &req, current.Generation)
}

func (m *Manager) renderAndCommit(ctx context.Context, s *Session, req *volumetric.NavigationRequest, gen uint64) (*Panel, error) {
	var buf bytes.Buffer
	res := m.renderer.Render(ctx, &buf, req, &volumetric.View{
		SessionID: s.ID,
		BasePath:  m.config.BasePath,
		Assets:    m.config.Assets,
	})

	stored := *req
	stored.ID = res.RequestID

	p := &Panel{
		SessionID:   s.ID,
		RequestID:   res.RequestID,
		TemplateKey: req.TemplateKey,
		Generation:  gen,
		HTML:        template.HTML(buf.String()),
		Fallback:    res.Fallback,
		Kind:        res.Kind,
		RenderedAt:  time.Now(),
		Request:     &stored,
	}

	if !s.commit(p, m.config.HistorySize) {
		return nil, ErrSuperseded
	}
	m.config.Logger.Debug("panel published",
		"session_id", s.ID,
		"request_id", p.RequestID,
		"template", p.TemplateKey,
		"generation", gen,
		"fallback", p.Fallback,
	)
	return p, nil
}

// Subscribe streams the session's panels, starting with the current one.
// Slow subscribers lose their oldest pending panel. The returned function
// unsubscribes and closes the channel.
func (m *Manager) Subscribe(id string) (<-chan *Panel, func(), error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.subscribe(m.config.SubscriberBuffer)
	return ch, cancel, nil
}

// Current returns the session's current panel.
func (m *Manager) Current(id string) (*Panel, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	p, _ := s.snapshot()
	if p == nil {
		return nil, ErrNoPanel
	}
	return p, nil
}

// History returns the session's panels, oldest first.
func (m *Manager) History(id string) ([]*Panel, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	_, h := s.snapshot()
	return h, nil
}

// Sweep removes sessions idle for longer than maxIdle that have no
// subscribers and returns how many were removed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var evicted []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) && s.subscribers() == 0 {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	m.mu.Unlock()

	for _, id := range evicted {
		if m.config.OnEvict != nil {
			m.config.OnEvict(id)
		}
	}
	if len(evicted) > 0 {
		m.config.Logger.Info("idle sessions swept", "count", len(evicted))
	}
	return len(evicted)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(maxIdle)
		}
	}
}

// Close closes every subscriber stream. Further calls fail with ErrClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.closeSubscribers()
	}
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
