package workflow

import (
	"sync"
	"time"
)

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// Session holds the accumulated validation state for one logical
// conversation with a calling agent. State only ever grows: once a
// topic is studied or a resource confirmed, it stays that way for the
// session's lifetime. There is no durable persistence — a process
// restart starts every session empty.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	phase     string
	studied   map[Topic]struct{}
	confirmed map[ResourceKind]map[string]struct{}
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: timeNow().UTC(),
		phase:     "start",
		studied:   make(map[Topic]struct{}),
		confirmed: make(map[ResourceKind]map[string]struct{}),
	}
}

// RecordTopicStudied marks a topic as studied. Idempotent: recording
// the same topic twice is a no-op.
func (s *Session) RecordTopicStudied(topic Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.studied[topic] = struct{}{}
}

// SetPhase updates the advisory phase label. The phase is informational
// only; nothing enforces it. Tools set it so a session dump shows
// roughly where the agent is.
func (s *Session) SetPhase(phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
}

// Phase returns the current advisory phase label.
func (s *Session) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ConfirmResources records names as user-confirmed for the given
// resource kind. The whole batch is checked against the placeholder
// patterns first: if any name matches, the violating names are returned
// and nothing is recorded. Confirmation is all-or-nothing.
func (s *Session) ConfirmResources(kind ResourceKind, names []string) []string {
	var violations []string
	for _, name := range names {
		if IsPlaceholder(name) {
			violations = append(violations, name)
		}
	}
	if len(violations) > 0 {
		return violations
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.confirmed[kind]
	if set == nil {
		set = make(map[string]struct{})
		s.confirmed[kind] = set
	}
	for _, name := range names {
		set[name] = struct{}{}
	}
	return nil
}

// Snapshot returns an immutable copy of the session's studied topics
// and confirmed resources. The copy is taken under the session lock so
// the gate never sees a torn view; because it shares no memory with the
// session, the (pure) gate evaluation runs without holding the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	studied := make(map[Topic]struct{}, len(s.studied))
	for t := range s.studied {
		studied[t] = struct{}{}
	}

	confirmed := make(map[ResourceKind]map[string]struct{}, len(s.confirmed))
	for kind, names := range s.confirmed {
		set := make(map[string]struct{}, len(names))
		for name := range names {
			set[name] = struct{}{}
		}
		confirmed[kind] = set
	}

	return Snapshot{studied: studied, confirmed: confirmed}
}

// Snapshot is a point-in-time, read-only view of a session's state.
type Snapshot struct {
	studied   map[Topic]struct{}
	confirmed map[ResourceKind]map[string]struct{}
}

// HasStudied reports whether the topic was studied at snapshot time.
func (s Snapshot) HasStudied(topic Topic) bool {
	_, ok := s.studied[topic]
	return ok
}

// IsConfirmed reports whether the exact name was confirmed for kind at
// snapshot time. Matching is case-sensitive on the confirmed string.
func (s Snapshot) IsConfirmed(kind ResourceKind, name string) bool {
	_, ok := s.confirmed[kind][name]
	return ok
}

// StudiedTopics returns a copy of the studied topics, unordered,
// mainly for status reporting.
func (s Snapshot) StudiedTopics() []Topic {
	out := make([]Topic, 0, len(s.studied))
	for t := range s.studied {
		out = append(out, t)
	}
	return out
}
