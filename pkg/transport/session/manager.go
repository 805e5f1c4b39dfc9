package session

import (
	"fmt"
	"sync"
	"time"
)

// DefaultSessionTTL is how long an idle session survives before cleanup.
const DefaultSessionTTL = 30 * time.Minute

// Factory creates a session for the given ID.
type Factory func(id string) Session

// Manager holds sessions with TTL cleanup. A session ID, once issued, is
// never reused for a different connection.
type Manager struct {
	sessions map[string]Session
	mu       sync.RWMutex
	ttl      time.Duration
	factory  Factory
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager with TTL and starts the cleanup worker.
func NewManager(ttl time.Duration, factory Factory) *Manager {
	m := &Manager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		factory:  factory,
		stopCh:   make(chan struct{}),
	}
	go m.cleanupRoutine()
	return m
}

func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.CleanupExpired()
		case <-m.stopCh:
			return
		}
	}
}

// AddWithID creates (and adds) a new session with the provided ID.
// Returns an error if the ID is empty or already exists.
func (m *Manager) AddWithID(id string) (Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session ID %q already exists", id)
	}

	s := m.factory(id)
	m.sessions[id] = s
	return s, nil
}

// Get retrieves a session by ID. Returns (session, true) if found, and also
// updates its last activity timestamp.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.Touch()
	return s, true
}

// Delete removes a session by ID.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Range calls f for each session, stopping if f returns false.
func (m *Manager) Range(f func(id string, s Session) bool) {
	m.mu.RLock()
	snapshot := make(map[string]Session, len(m.sessions))
	for id, s := range m.sessions {
		snapshot[id] = s
	}
	m.mu.RUnlock()

	for id, s := range snapshot {
		if !f(id, s) {
			return
		}
	}
}

// CleanupExpired removes sessions that have not been updated within the TTL,
// disconnecting SSE sessions so their write side unblocks.
func (m *Manager) CleanupExpired() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []Session
	for id, s := range m.sessions {
		if s.UpdatedAt().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		if sse, ok := s.(*SSESession); ok {
			sse.Disconnect()
		}
	}
}

// Stop stops the cleanup worker.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}
