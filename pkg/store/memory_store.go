package store

import (
	"sync"
	"time"

	"resrv/pkg/domain"
)

// MemoryStore keeps everything in-process. Used by tests and local runs
// without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User        // user ID -> user
	email    map[string]string             // email -> user ID
	sessions map[string]domain.ChatSession // session ID -> session
	order    []string                      // session IDs in creation order
	turns    map[string][]domain.Turn      // session ID -> turn log
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		email:    make(map[string]string),
		sessions: make(map[string]domain.ChatSession),
		turns:    make(map[string][]domain.Turn),
	}
}

// SaveUser registers or updates a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// CreateSession stores a new chat session.
func (m *MemoryStore) CreateSession(session domain.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[session.ID]; !exists {
		m.order = append(m.order, session.ID)
	}
	m.sessions[session.ID] = session
	return nil
}

// GetSession retrieves a chat session by ID.
func (m *MemoryStore) GetSession(id string) (domain.ChatSession, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

// ListSessionsByUser returns sessions of a user, most recently updated first.
func (m *MemoryStore) ListSessionsByUser(userID string, limit int) ([]domain.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	res := make([]domain.ChatSession, 0)
	for i := len(m.order) - 1; i >= 0 && len(res) < limit; i-- {
		if s, ok := m.sessions[m.order[i]]; ok && s.UserID == userID {
			res = append(res, s)
		}
	}
	return res, nil
}

// SavePreferences replaces the preference record on a session.
func (m *MemoryStore) SavePreferences(sessionID string, p domain.Preferences, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	session.Preferences = p
	session.UpdatedAt = updatedAt.UTC()
	m.sessions[sessionID] = session
	return nil
}

// AppendTurn records a turn in insertion order.
func (m *MemoryStore) AppendTurn(turn domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[turn.SessionID] = append(m.turns[turn.SessionID], turn)
	return nil
}

// ListTurns returns turns for a session in insertion order.
func (m *MemoryStore) ListTurns(sessionID string, limit int) ([]domain.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log := m.turns[sessionID]
	if limit > 0 && len(log) > limit {
		log = log[:limit]
	}
	out := make([]domain.Turn, len(log))
	copy(out, log)
	return out, nil
}
