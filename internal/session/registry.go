package session

import "sync"

// Registry is the process-wide map from guild ID to its Session. All session
// lookup and lifecycle goes through it; nothing indexes a shared map
// directly.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the guild's session, creating and owner-binding it if
// absent. Exactly one racing caller observes created=true; the rest get the
// session that caller made.
func (r *Registry) GetOrCreate(guildID, owner, ownerName string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s, false
	}
	s := newSession(guildID, owner, ownerName)
	r.sessions[guildID] = s
	return s, true
}

// Get returns the guild's session if one exists.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// Remove drops the guild's session. Removing an absent guild is not an
// error. Callers cancel the session's tasks first so a still-running loop
// cannot resurrect state.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, guildID)
}

func (r *Registry) guildIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
