package workflow

import "sync"

// Registry owns all sessions. Creation is lazy: the first reference to
// an unseen id creates the session, exactly once even under concurrent
// first access. The registry lock only guards the map — after lookup,
// each session synchronizes independently, so unrelated sessions never
// serialize against each other.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it if this is the
// first reference.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := newSession(id)
	r.sessions[id] = s
	return s
}

// Reset discards a session's accumulated state entirely. The next
// reference to the same id starts from scratch. Used for explicit
// restarts and tests.
func (r *Registry) Reset(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
