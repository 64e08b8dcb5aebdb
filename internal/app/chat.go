package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"resrv/internal/util"
	"resrv/pkg/domain"
	"resrv/pkg/prefs"
)

const (
	// completionReply acknowledges that all five slots are filled and a
	// search filter was produced.
	completionReply = "收到 我幫你整理成推薦條件了"
	// exhaustedReply is only reachable when a brand-new session somehow has
	// no missing slot; kept for parity with the question sequence.
	exhaustedReply = "你想吃什麼 我可以幫你推薦"
)

// TurnResult is the outcome of one processed chat turn.
type TurnResult struct {
	SessionID string              `json:"sessionId"`
	Reply     string              `json:"reply"`
	Stage     domain.Stage        `json:"stage"`
	Filters   *domain.Preferences `json:"filters,omitempty"`
}

// StartChat creates a session for the user and returns the first question.
func (a *App) StartChat(user domain.User) (TurnResult, error) {
	now := time.Now().UTC()
	session := domain.ChatSession{
		ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateSession(session); err != nil {
		return TurnResult{}, fmt.Errorf("create session: %w", err)
	}

	reply := exhaustedReply
	if q, ok := prefs.NextMissingSlot(session.Preferences); ok {
		reply = q.Prompt
	}
	if err := a.appendTurn(session.ID, domain.RoleAssistant, reply); err != nil {
		return TurnResult{}, err
	}
	return TurnResult{SessionID: session.ID, Reply: reply, Stage: domain.StageCollecting}, nil
}

// SendMessage processes one inbound user turn: persist it, try extraction,
// fall back to single-slot filling when extraction is unusable, then either
// ask the next question or emit the completed filter. Turns for one session
// are serialized; different sessions proceed in parallel.
func (a *App) SendMessage(ctx context.Context, user domain.User, sessionID, message string) (TurnResult, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return TurnResult{}, ErrEmptyMessage
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return TurnResult{}, ErrSessionNotFound
	}

	mu := a.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, ok, err := a.store.GetSession(sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load session: %w", err)
	}
	if !ok || session.UserID != user.ID {
		return TurnResult{}, ErrSessionNotFound
	}

	if err := a.appendTurn(session.ID, domain.RoleUser, text); err != nil {
		return TurnResult{}, err
	}

	current := session.Preferences
	extracted, extractErr := a.extract(ctx, text, current)
	if extractErr == nil {
		current = prefs.Merge(current, extracted)
	} else {
		slog.Debug("extraction unusable, falling back", "session_id", session.ID, "err", extractErr)
		updated, prompt := prefs.FillNextSlot(text, current)
		if prompt != "" {
			// Numeric slot got no digits: re-ask without consuming the turn.
			if err := a.savePreferences(session.ID, current); err != nil {
				return TurnResult{}, err
			}
			if err := a.appendTurn(session.ID, domain.RoleAssistant, prompt); err != nil {
				return TurnResult{}, err
			}
			return TurnResult{SessionID: session.ID, Reply: prompt, Stage: domain.StageCollecting}, nil
		}
		current = updated
	}

	if err := a.savePreferences(session.ID, current); err != nil {
		return TurnResult{}, err
	}

	if q, missing := prefs.NextMissingSlot(current); missing {
		if err := a.appendTurn(session.ID, domain.RoleAssistant, q.Prompt); err != nil {
			return TurnResult{}, err
		}
		return TurnResult{SessionID: session.ID, Reply: q.Prompt, Stage: domain.StageCollecting}, nil
	}

	if err := a.appendTurn(session.ID, domain.RoleAssistant, completionReply); err != nil {
		return TurnResult{}, err
	}
	filters := current
	return TurnResult{
		SessionID: session.ID,
		Reply:     completionReply,
		Stage:     domain.StageRecommend,
		Filters:   &filters,
	}, nil
}

// ListSessions lists recent chat sessions for the user.
func (a *App) ListSessions(user domain.User, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	items, err := a.store.ListSessionsByUser(user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return items, nil
}

// ListTurns returns the session's turn log in insertion order.
func (a *App) ListTurns(user domain.User, sessionID string, limit int) ([]domain.Turn, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	session, ok, err := a.store.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok || session.UserID != user.ID {
		return nil, ErrSessionNotFound
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	turns, err := a.store.ListTurns(sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}

// extract shields the controller from the adapter: whatever goes wrong inside
// extraction surfaces as a plain error here, and every error means "use the
// fallback for this turn".
func (a *App) extract(ctx context.Context, text string, current domain.Preferences) (domain.Preferences, error) {
	if a.extractor == nil {
		return domain.Preferences{}, fmt.Errorf("no extractor configured")
	}
	return a.extractor.Extract(ctx, text, current)
}

func (a *App) appendTurn(sessionID, role, content string) error {
	turn := domain.Turn{
		ID:        newID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AppendTurn(turn); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (a *App) savePreferences(sessionID string, p domain.Preferences) error {
	if err := a.store.SavePreferences(sessionID, p, time.Now().UTC()); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func newID() string {
	return util.NewID()
}
