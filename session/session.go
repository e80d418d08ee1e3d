package session

import (
	"html/template"
	"sync"
	"time"

	"github.com/youssefsiam38/volumetric"
)

// Panel is a rendered navigation request.
type Panel struct {
	SessionID   string
	RequestID   string
	TemplateKey string
	Generation  uint64
	HTML        template.HTML
	Fallback    bool
	Kind        volumetric.FallbackKind
	RenderedAt  time.Time

	// Request is the navigation request the panel was rendered from
	Request *volumetric.NavigationRequest
}

// Session is one browser session. Each navigation bumps its generation;
// only a render that still holds the latest generation may be committed.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	lastSeen   time.Time
	generation uint64
	current    *Panel
	history    []*Panel
	subs       map[int64]chan *Panel
	nextSub    int64
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		lastSeen:  now,
		subs:      make(map[int64]chan *Panel),
	}
}

// Generation returns the generation of the latest navigation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// begin starts a navigation and returns its generation.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.lastSeen = time.Now()
	return s.generation
}

// commit publishes p if its generation is still the latest. A newer
// navigation makes the commit a no-op.
func (s *Session) commit(p *Panel, historySize int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Generation != s.generation {
		return false
	}
	replacing := s.current != nil && s.current.RequestID == p.RequestID
	s.current = p
	if replacing && len(s.history) > 0 {
		s.history[len(s.history)-1] = p
	} else {
		s.history = append(s.history, p)
		if over := len(s.history) - historySize; over > 0 {
			s.history = append([]*Panel(nil), s.history[over:]...)
		}
	}

	for _, ch := range s.subs {
		send(ch, p)
	}
	return true
}

// send delivers p without blocking. A full buffer loses its oldest panel.
func send(ch chan *Panel, p *Panel) {
	for {
		select {
		case ch <- p:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *Session) subscribe(buffer int) (<-chan *Panel, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *Panel, buffer)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.lastSeen = time.Now()

	if s.current != nil {
		ch <- s.current
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Session) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) snapshot() (*Panel, []*Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, append([]*Panel(nil), s.history...)
}
