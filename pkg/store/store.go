package store

import (
	"time"

	"resrv/pkg/domain"
)

// Store defines persistence operations for users, chat sessions, and turns.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// chat sessions
	CreateSession(domain.ChatSession) error
	GetSession(id string) (domain.ChatSession, bool, error)
	ListSessionsByUser(userID string, limit int) ([]domain.ChatSession, error)
	SavePreferences(sessionID string, p domain.Preferences, updatedAt time.Time) error

	// turns (append-only, insertion-ordered)
	AppendTurn(domain.Turn) error
	ListTurns(sessionID string, limit int) ([]domain.Turn, error)
}

// SessionStore persists auth session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
