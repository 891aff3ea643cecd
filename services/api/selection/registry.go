package selection

import (
	"sync"
	"time"
)

type session struct {
	sel      Selection
	lastSeen time.Time
}

// Registry keeps one Selection per session id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Current returns the session's selection, or Initial for an unknown id.
func (r *Registry) Current(id string) Selection {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Initial()
	}
	s.lastSeen = r.now()
	return s.sel
}

// Apply runs ev through Transition and stores the result.
func (r *Registry) Apply(id string, ev Event, lookup Lookup) (Selection, Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = &session{sel: Initial()}
		r.sessions[id] = s
	}
	next, effect := Transition(s.sel, ev, lookup)
	s.sel = next
	s.lastSeen = r.now()
	return next, effect
}

// Reset forgets the session, returning it to the initial state.
func (r *Registry) Reset(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Sweep drops sessions not seen for longer than idle and returns how many
// were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
