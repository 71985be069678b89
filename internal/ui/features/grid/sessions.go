package grid

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// DefaultSessionTTL is how long an idle browser session keeps its grid.
const DefaultSessionTTL = 30 * time.Minute

// Factory builds a grid attached to the shared record source.
type Factory func() *grid.Grid

// Session is one browser's view state.
type Session struct {
	ID   string
	Grid *grid.Grid

	mu       sync.Mutex
	lastSeen time.Time
	streams  int
	fetchErr error
	unsub    func()
}

// FetchError returns the last source failure seen by this session, fetch
// or write, or nil once a later load succeeded.
func (s *Session) FetchError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Registry maps session ids to grids. Every grid is attached to the same
// source; their view state is independent.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	onChange func(id string)
	onCount  func(n int)
	now      func() time.Time
}

// NewRegistry creates a registry. onChange is called with the session id
// whenever that session's grid emits events.
func NewRegistry(factory Factory, onChange func(id string)) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		onChange: onChange,
		now:      time.Now,
	}
}

// OnCount registers a callback receiving the session count after every
// change.
func (r *Registry) OnCount(fn func(n int)) {
	r.mu.Lock()
	r.onCount = fn
	r.mu.Unlock()
}

// Get returns the session for id, creating it when id is unknown or
// empty. New sessions get a fresh uuid.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok && id != "" {
		s.touch(r.now())
		return s, false
	}

	s := &Session{ID: uuid.NewString(), Grid: r.factory(), lastSeen: r.now()}
	s.unsub = s.Grid.Subscribe(func(ev grid.Event) {
		switch e := ev.(type) {
		case grid.FetchFailed:
			s.mu.Lock()
			s.fetchErr = e.Err
			s.mu.Unlock()
		case grid.WriteFailed:
			s.mu.Lock()
			s.fetchErr = e.Err
			s.mu.Unlock()
		case grid.LoadingChanged:
			if !e.Loading {
				s.mu.Lock()
				s.fetchErr = nil
				s.mu.Unlock()
			}
		}
		if r.onChange != nil {
			r.onChange(s.ID)
		}
	})
	r.sessions[s.ID] = s
	r.counted()
	return s, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StreamOpened marks id as having an open update stream. Sessions with
// open streams are never swept.
func (r *Registry) StreamOpened(s *Session) {
	s.mu.Lock()
	s.streams++
	s.mu.Unlock()
}

// StreamClosed releases a stream opened with StreamOpened.
func (r *Registry) StreamClosed(s *Session) {
	s.mu.Lock()
	s.streams--
	s.lastSeen = r.now()
	s.mu.Unlock()
}

// Sweep drops sessions idle for longer than ttl and without open streams.
// It returns the number dropped.
func (r *Registry) Sweep(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-ttl)
	dropped := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := s.streams == 0 && s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if !idle {
			continue
		}
		r.close(s)
		delete(r.sessions, id)
		dropped++
	}
	if dropped > 0 {
		r.counted()
	}
	return dropped
}

// Run sweeps idle sessions every interval until ctx is done, then closes
// every session.
func (r *Registry) Run(ctx context.Context, ttl, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep(ttl)
		}
	}
}

// Close detaches every grid and forgets all sessions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		r.close(s)
		delete(r.sessions, id)
	}
	r.counted()
}

func (r *Registry) close(s *Session) {
	s.unsub()
	s.Grid.Detach()
}

func (r *Registry) counted() {
	if r.onCount != nil {
		r.onCount(len(r.sessions))
	}
}
