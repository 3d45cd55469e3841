package picker

import (
	"context"
	"sync"
)

// Ticket identifies one scheduled operation. It stays valid until the slot
// that issued it is replaced or closed
type Ticket struct {
	Gen uint64
	ctx context.Context
}

// Context is cancelled as soon as the ticket is superseded
func (t Ticket) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Slot holds the single current operation of a picker. Replacing it cancels
// whatever was there before, so at most one generation is ever current
type Slot struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// Replace retires the current operation and starts a new one derived from
// parent. After Close the returned ticket is already cancelled and never
// current
func (s *Slot) Replace(parent context.Context) Ticket {
	if parent == nil {
		parent = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	ctx, cancel := context.WithCancel(parent)
	if s.closed {
		cancel()
		return Ticket{ctx: ctx}
	}

	s.gen++
	s.cancel = cancel
	return Ticket{Gen: s.gen, ctx: ctx}
}

// Current reports whether gen is the live generation
func (s *Slot) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen != 0 && gen == s.gen
}

// Close cancels the current operation and refuses new ones
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.closed = true
}

// Closed reports whether Close was called
func (s *Slot) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
