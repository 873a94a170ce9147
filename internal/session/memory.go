package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with an idle TTL
type MemoryStore struct {
	sessions map[string]memoryEntry
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a store and starts the expiry sweep. Call Close to
// stop it.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	// Start cleanup routine
	go m.cleanupExpiredSessions(sweepInterval(ttl))

	return m
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < 5*time.Minute {
		return ttl
	}
	return 5 * time.Minute
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.sessions[id]
	if !exists || m.now().After(entry.expiresAt) {
		return New(id), nil
	}
	return entry.session.Clone(), nil
}

// Put stores a copy of s and refreshes its expiry.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s.UpdatedAt = now
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len counts unexpired sessions.
func (m *MemoryStore) Len(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.sessions {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the background sweep.
func (m *MemoryStore) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// cleanupExpiredSessions runs periodically to clean up expired sessions
func (m *MemoryStore) cleanupExpiredSessions(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("🧹 Cleaned up expired sessions")
			}
		}
	}
}
