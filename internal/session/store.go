package session

import (
	"context"
	"sync"
	"time"
)

// Store maps session ids to sessions. Implementations must be safe for
// concurrent use by different sessions.
type Store interface {
	Put(s *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

type storeEntry struct {
	session  *Session
	lastSeen time.Time
}

// MemoryStore keeps sessions in process memory. Sessions idle for longer
// than the TTL are treated as absent and removed by Sweep. A zero TTL
// never expires anything.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a store with the given idle TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*storeEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) expired(e *storeEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.lastSeen) > m.ttl
}

// Put inserts or replaces a session.
func (m *MemoryStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = &storeEntry{session: s, lastSeen: m.now()}
}

// Get returns the session and refreshes its idle timer.
func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	now := m.now()
	if m.expired(e, now) {
		delete(m.entries, id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep removes expired sessions and returns how many it removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done. onSweep, if set, receives
// the number of sessions each sweep removed.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := m.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}
