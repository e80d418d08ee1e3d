package onboarding

import (
	"context"
	"strings"
	"sync"
)

// Tracker keeps one Stepper per subject and records completion in a
// FlagStore when a flow finishes.
type Tracker struct {
	mu       sync.Mutex
	steppers map[string]*Stepper
	store    FlagStore
}

// NewTracker creates a tracker. A nil store keeps flags in memory.
func NewTracker(store FlagStore) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		steppers: make(map[string]*Stepper),
		store:    store,
	}
}

// Stepper returns the stepper for subject, creating it at start. An
// existing stepper is resized to total.
func (t *Tracker) Stepper(subject string, total, start int) *Stepper {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.steppers[subject]
	if !ok {
		s = NewStepper(total)
		s.Seek(start)
		t.steppers[subject] = s
		return s
	}
	s.Resize(total)
	return s
}

// Apply performs op on the subject's stepper. Finishing the flow marks the
// subject completed; resetting clears the flag.
func (t *Tracker) Apply(ctx context.Context, subject string, total, start int, op Op) (int, error) {
	s := t.Stepper(subject, total, start)
	index, err := s.Apply(op)
	if err != nil {
		return index, err
	}
	switch {
	case op == OpReset:
		return index, t.store.Reset(ctx, subject)
	case s.Done():
		return index, t.store.MarkCompleted(ctx, subject)
	}
	return index, nil
}

// Completed reports whether subject has finished its flow.
func (t *Tracker) Completed(ctx context.Context, subject string) (bool, error) {
	return t.store.Completed(ctx, subject)
}

// Forget drops the in-memory stepper for subject. The persisted flag is
// kept.
func (t *Tracker) Forget(subject string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.steppers, subject)
}

// ForgetSession drops every stepper belonging to sessionID.
func (t *Tracker) ForgetSession(sessionID string) int {
	prefix := sessionID + ":"
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for subject := range t.steppers {
		if strings.HasPrefix(subject, prefix) {
			delete(t.steppers, subject)
			n++
		}
	}
	return n
}
