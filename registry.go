package backoffice

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the in-memory session store. It is the exclusive owner of all
// Session state: no other component mutates LastActivityAt or deletes a
// session directly. Every operation is linearizable via the internal lock and
// completes without blocking on I/O, so expensive work (bcrypt in particular)
// must happen before calling in.
//
// Sessions are not durable: a process restart drops every live login.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry. Construct one per process
// (or per test) and inject it; there is no package-level instance.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create allocates a new session with a fresh, previously unused identifier.
// CreatedAt and LastActivityAt both start at now. A user may hold multiple
// concurrent sessions; each login gets its own entry.
func (r *Registry) Create(userID string, role UserRole, now time.Time) Session {
	session := Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		Role:           role,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	r.mu.Lock()
	r.sessions[session.ID] = &session
	r.mu.Unlock()

	return session
}

// Get returns a copy of the session, or false if it was never created or has
// been removed.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Touch refreshes the session's activity marker. Updates resolve by
// timestamp, not arrival order: concurrent handlers can deliver touches out
// of order and the latest wall-clock instant still wins, keeping
// LastActivityAt monotonically non-decreasing. Touching an unknown id is a
// no-op.
func (r *Registry) Touch(id string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return
	}
	if now.After(session.LastActivityAt) {
		session.LastActivityAt = now
	}
}

// Remove deletes the session. Idempotent: removing an unknown id is not an error.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// PurgeIdle removes every session whose idle time exceeds idleTimeout and
// returns how many were dropped. It exists to bound memory for abandoned
// sessions; Guard.Authorize enforces expiry lazily either way, so running it
// never changes externally observable behavior.
func (r *Registry) PurgeIdle(now time.Time, idleTimeout time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, session := range r.sessions {
		if IsExpired(*session, now, idleTimeout) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged
}

// IsExpired is the pure idle-timeout predicate: strictly more than
// idleTimeout elapsed since the session's last authorized activity.
func IsExpired(session Session, now time.Time, idleTimeout time.Duration) bool {
	return session.IdleFor(now) > idleTimeout
}
