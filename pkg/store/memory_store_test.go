package store

import (
	"testing"
	"time"

	"resrv/pkg/domain"
)

func TestMemoryStoreUsers(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	user := domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
	if err := s.SaveUser(user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	ok, err := s.HasUserEmail("ada@example.com")
	if err != nil || !ok {
		t.Fatalf("HasUserEmail = (%v, %v), want (true, nil)", ok, err)
	}
	got, found, err := s.GetUserByEmail("ada@example.com")
	if err != nil || !found || got.ID != "u1" {
		t.Fatalf("GetUserByEmail = (%+v, %v, %v)", got, found, err)
	}
	if _, found, _ := s.GetUserByID("nope"); found {
		t.Fatalf("unknown user ID should not be found")
	}
}

func TestMemoryStoreSessionsAndTurns(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	session := domain.ChatSession{ID: "s1", UserID: "u1", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateSession(session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	budget := 500
	if err := s.SavePreferences("s1", domain.Preferences{Budget: &budget}, now); err != nil {
		t.Fatalf("save preferences: %v", err)
	}
	got, ok, err := s.GetSession("s1")
	if err != nil || !ok {
		t.Fatalf("GetSession = (%v, %v)", ok, err)
	}
	if got.Preferences.Budget == nil || *got.Preferences.Budget != 500 {
		t.Fatalf("budget = %v, want 500", got.Preferences.Budget)
	}

	for i, content := range []string{"第一句", "第二句", "第三句"} {
		turn := domain.Turn{ID: string(rune('a' + i)), SessionID: "s1", Role: domain.RoleUser, Content: content, CreatedAt: now.Add(time.Duration(i) * time.Second)}
		if err := s.AppendTurn(turn); err != nil {
			t.Fatalf("append turn: %v", err)
		}
	}
	turns, err := s.ListTurns("s1", 0)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 3 || turns[0].Content != "第一句" || turns[2].Content != "第三句" {
		t.Fatalf("turns out of insertion order: %+v", turns)
	}
	limited, err := s.ListTurns("s1", 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("ListTurns limit = %d entries, want 2", len(limited))
	}
}

func TestMemoryStoreListSessionsByUser(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	for _, id := range []string{"s1", "s2", "s3"} {
		owner := "u1"
		if id == "s2" {
			owner = "u2"
		}
		if err := s.CreateSession(domain.ChatSession{ID: id, UserID: owner, CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatalf("create session %s: %v", id, err)
		}
	}
	sessions, err := s.ListSessionsByUser("u1", 0)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "s3" || sessions[1].ID != "s1" {
		t.Fatalf("sessions = %+v, want s3 then s1", sessions)
	}
}
