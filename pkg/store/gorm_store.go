package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"resrv/pkg/domain"
)

const migrateLockID int64 = 47210947

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &ChatSessionModel{}, &TurnModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		if err := tx.Exec(`
			DO $$
			BEGIN
				DELETE FROM turn_models t
				WHERE NOT EXISTS (SELECT 1 FROM chat_session_models s WHERE s.id = t.session_id);
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'turn_models'
					AND constraint_name = 'turn_models_session_id_fkey'
				) THEN
					ALTER TABLE turn_models
					ADD CONSTRAINT turn_models_session_id_fkey
					FOREIGN KEY (session_id) REFERENCES chat_session_models(id) ON DELETE CASCADE;
				END IF;
			END $$;
		`).Error; err != nil {
			return fmt.Errorf("ensure turn foreign key: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "password_hash", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// CreateSession stores a new chat session.
func (s *GormStore) CreateSession(session domain.ChatSession) error {
	model, err := chatSessionToModel(session)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetSession retrieves a chat session by ID.
func (s *GormStore) GetSession(id string) (domain.ChatSession, bool, error) {
	var model ChatSessionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ChatSession{}, false, nil
		}
		return domain.ChatSession{}, false, err
	}
	return chatSessionFromModel(model), true, nil
}

// ListSessionsByUser returns the latest chat sessions of a user.
func (s *GormStore) ListSessionsByUser(userID string, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []ChatSessionModel
	if err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.ChatSession, 0, len(models))
	for _, model := range models {
		items = append(items, chatSessionFromModel(model))
	}
	return items, nil
}

// SavePreferences replaces the preference record on a session.
func (s *GormStore) SavePreferences(sessionID string, p domain.Preferences, updatedAt time.Time) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	return s.db.Model(&ChatSessionModel{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"preferences": raw,
			"updated_at":  updatedAt.UTC(),
		}).Error
}

// AppendTurn records a turn.
func (s *GormStore) AppendTurn(turn domain.Turn) error {
	model := turnToModel(turn)
	return s.db.Create(&model).Error
}

// ListTurns returns turns for a session in chronological order.
func (s *GormStore) ListTurns(sessionID string, limit int) ([]domain.Turn, error) {
	query := s.db.Where("session_id = ?", sessionID).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []TurnModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, 0, len(models))
	for _, model := range models {
		turns = append(turns, turnFromModel(model))
	}
	return turns, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func chatSessionToModel(c domain.ChatSession) (ChatSessionModel, error) {
	raw, err := json.Marshal(c.Preferences)
	if err != nil {
		return ChatSessionModel{}, fmt.Errorf("marshal preferences: %w", err)
	}
	return ChatSessionModel{
		ID:          c.ID,
		UserID:      c.UserID,
		Preferences: raw,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func chatSessionFromModel(m ChatSessionModel) domain.ChatSession {
	var p domain.Preferences
	if len(m.Preferences) > 0 {
		_ = json.Unmarshal(m.Preferences, &p)
	}
	return domain.ChatSession{
		ID:          m.ID,
		UserID:      m.UserID,
		Preferences: p,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func turnToModel(t domain.Turn) TurnModel {
	return TurnModel{
		ID:        t.ID,
		SessionID: t.SessionID,
		Role:      t.Role,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
	}
}

func turnFromModel(m TurnModel) domain.Turn {
	return domain.Turn{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
