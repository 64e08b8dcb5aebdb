package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"resrv/pkg/ai"
	"resrv/pkg/auth"
	"resrv/pkg/domain"
	"resrv/pkg/store"
)

// Extractor turns a free-form utterance into a preference update. A non-nil
// error means the result is unusable and the caller must degrade to the
// deterministic fallback; no extractor error is ever user-facing.
type Extractor interface {
	Extract(ctx context.Context, userText string, current domain.Preferences) (domain.Preferences, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL     string
	Store           store.Store
	Sessions        store.SessionStore
	SessionStrategy string // "redis" or "jwt"
	SessionTTL      time.Duration
	RedisAddr       string
	RedisPassword   string
	JWTSecret       string
	GeminiAPIKey    string
	ExtractionModel string
	Extractor       Extractor
}

// App is the core application service wiring together storage, auth, and the
// dialogue progression logic.
type App struct {
	store     store.Store
	sessions  store.SessionStore
	extractor Extractor

	// chatLocks serializes turns per chat session: preference merge is a
	// read-modify-write and concurrent turns for one session must not race.
	chatLocks sync.Map // session ID -> *sync.Mutex
}

// New constructs the application with database storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch strings.ToLower(strings.TrimSpace(cfg.SessionStrategy)) {
		case "", "redis":
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return nil, fmt.Errorf("redisAddr is required for redis session strategy")
			}
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		case "jwt":
			var err error
			sessionStore, err = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
		default:
			return nil, fmt.Errorf("unknown session strategy: %s", cfg.SessionStrategy)
		}
	}

	extractor := cfg.Extractor
	if extractor == nil && strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		extractor, err = ai.NewPreferenceExtractor(client, cfg.ExtractionModel)
		if err != nil {
			return nil, fmt.Errorf("init preference extractor: %w", err)
		}
	}
	if extractor == nil {
		slog.Info("preference extraction disabled, using fallback slot filling only")
	}

	return &App{
		store:     dataStore,
		sessions:  sessionStore,
		extractor: extractor,
	}, nil
}

// SignUp registers a new user and issues a session token.
func (a *App) SignUp(name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", ErrSignupFieldsRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Logout invalidates a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

func (a *App) lockSession(sessionID string) *sync.Mutex {
	mu, _ := a.chatLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
