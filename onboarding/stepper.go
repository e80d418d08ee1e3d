// Package onboarding tracks progress through linear onboarding flows.
//
// A Stepper holds the index of the current step. The index ranges over
// [0, total]; total means the flow is done. Step navigation is local UI
// state and never reaches the agent. Completion is persisted through a
// FlagStore so a finished flow stays finished across sessions.
package onboarding

import (
	"fmt"
	"strings"
	"sync"
)

// Op is a step navigation operation.
type Op string

const (
	OpNext  Op = "next"
	OpPrev  Op = "prev"
	OpSkip  Op = "skip"
	OpReset Op = "reset"
)

// ParseOp parses a step operation name.
func ParseOp(s string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(s))); op {
	case OpNext, OpPrev, OpSkip, OpReset:
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Clamp limits index to [0, total].
func Clamp(index, total int) int {
	if total < 0 {
		total = 0
	}
	if index < 0 {
		return 0
	}
	if index > total {
		return total
	}
	return index
}

// Stepper is a linear step index. It is safe for concurrent use.
type Stepper struct {
	mu    sync.Mutex
	total int
	index int
}

// NewStepper creates a stepper over total steps, positioned at the first.
func NewStepper(total int) *Stepper {
	return &Stepper{total: max(total, 0)}
}

// Next advances one step. Advancing past the last step finishes the flow.
func (s *Stepper) Next() int {
	return s.move(func(i int) int { return i + 1 })
}

// Prev goes back one step, stopping at the first.
func (s *Stepper) Prev() int {
	return s.move(func(i int) int { return i - 1 })
}

// Skip finishes the flow immediately.
func (s *Stepper) Skip() int {
	return s.move(func(int) int { return s.total })
}

// Reset returns to the first step.
func (s *Stepper) Reset() int {
	return s.move(func(int) int { return 0 })
}

// Seek moves to index, clamped.
func (s *Stepper) Seek(index int) int {
	return s.move(func(int) int { return index })
}

// Apply performs op.
func (s *Stepper) Apply(op Op) (int, error) {
	switch op {
	case OpNext:
		return s.Next(), nil
	case OpPrev:
		return s.Prev(), nil
	case OpSkip:
		return s.Skip(), nil
	case OpReset:
		return s.Reset(), nil
	}
	return s.Current(), fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

// Resize changes the number of steps, clamping the current index.
func (s *Stepper) Resize(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = max(total, 0)
	s.index = Clamp(s.index, s.total)
}

// Current returns the current index.
func (s *Stepper) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Total returns the number of steps.
func (s *Stepper) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Done reports whether the flow is finished.
func (s *Stepper) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index >= s.total
}

func (s *Stepper) move(f func(int) int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = Clamp(f(s.index), s.total)
	return s.index
}
