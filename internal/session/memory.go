package session

import (
	"context"
	"sync"
)

// MemoryStore is the single-instance fallback when no Redis address is
// configured. No TTL: sessions live as long as the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	counts   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		counts:   make(map[string]int),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) GetCartCount(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[userID], nil
}

func (m *MemoryStore) SetCartCount(_ context.Context, userID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID] = count
	return nil
}
