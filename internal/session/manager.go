package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns all live sessions. The default session always exists.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	m := &Manager{sessions: make(map[string]*Session), now: time.Now}
	m.sessions[DefaultID] = newSession(DefaultID, m.now())
	return m
}

// Default returns the shared session for sessionless callers.
func (m *Manager) Default() *Session {
	s, _ := m.Get(DefaultID)
	return s
}

// Create starts a new session with a random ID.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSession(uuid.NewString(), m.now())
	m.sessions[s.ID] = s
	return s
}

// Get returns the session for id and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// GetOrCreate returns the session for a caller-chosen id, creating it on
// first use. An empty id maps to the default session.
func (m *Manager) GetOrCreate(id string) *Session {
	if id == "" {
		return m.Default()
	}
	if s, ok := m.Get(id); ok {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := newSession(id, m.now())
	m.sessions[id] = s
	return s
}

// Attach returns the session for id, creating it if needed, and marks it
// as held open by a transport stream. Attached sessions are never pruned;
// the stream's owner ends them with Delete.
func (m *Manager) Attach(id string) *Session {
	s := m.GetOrCreate(id)
	s.setAttached()
	return s
}

// Delete ends a session. The default session cannot be deleted.
func (m *Manager) Delete(id string) bool {
	if id == DefaultID {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Prune deletes detached sessions not seen for longer than idle and
// returns how many were removed.
func (m *Manager) Prune(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if id == DefaultID || s.Attached() {
			continue
		}
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions, including the default one.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
