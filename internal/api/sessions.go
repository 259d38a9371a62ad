package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/storysplit/internal/session"
)

// SessionEntry is one live edit session. The session itself is not safe for
// concurrent use, so every access goes through Do.
type SessionEntry struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	sess *session.Session
}

// Do runs fn with exclusive access to the session and refreshes its TTL.
func (e *SessionEntry) Do(fn func(s *session.Session)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sess)
	e.UpdatedAt = time.Now()
}

func (e *SessionEntry) lastUsed() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.UpdatedAt
}

// SessionStore is a thread-safe in-memory session registry with TTL eviction.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*SessionEntry
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*SessionEntry),
		ttl:      ttl,
	}
}

// Add registers sess under a fresh id.
func (s *SessionStore) Add(sess *session.Session) *SessionEntry {
	now := time.Now()
	e := &SessionEntry{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		sess:      sess,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[e.ID] = e
	return e
}

func (s *SessionStore) Get(id string) *SessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Delete removes a session and reports whether it existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how many
// were dropped.
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastUsed()) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunCleanup evicts idle sessions every interval until ctx is done.
func (s *SessionStore) RunCleanup(ctx context.Context, interval time.Duration, onEvict func(n int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}
