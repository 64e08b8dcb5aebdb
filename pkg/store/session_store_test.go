package store

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	s := NewRedisSessionStore(redisSrv.Addr(), "", time.Minute)

	token, err := s.NewSession("u1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	uid, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok || uid != "u1" {
		t.Fatalf("GetUserIDByToken = (%q, %v, %v), want (u1, true, nil)", uid, ok, err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("deleted token should not resolve")
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	s := NewRedisSessionStore(redisSrv.Addr(), "", time.Minute)

	token, err := s.NewSession("u1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	redisSrv.FastForward(2 * time.Minute)
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("expired token should not resolve")
	}
}

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret-test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new jwt store: %v", err)
	}
	token, err := s.NewSession("u1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	uid, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok || uid != "u1" {
		t.Fatalf("GetUserIDByToken = (%q, %v, %v), want (u1, true, nil)", uid, ok, err)
	}
}

func TestJWTSessionStoreRejectsTamperedToken(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret-test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new jwt store: %v", err)
	}
	token, err := s.NewSession("u1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	if _, ok, _ := s.GetUserIDByToken(tampered); ok {
		t.Fatalf("tampered token should be rejected")
	}
	other, err := NewJWTSessionStore("another-secret-entirely", time.Minute)
	if err != nil {
		t.Fatalf("new jwt store: %v", err)
	}
	if _, ok, _ := other.GetUserIDByToken(token); ok {
		t.Fatalf("token signed with different secret should be rejected")
	}
}

func TestJWTSessionStoreRequiresSecret(t *testing.T) {
	if _, err := NewJWTSessionStore("  ", time.Minute); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
