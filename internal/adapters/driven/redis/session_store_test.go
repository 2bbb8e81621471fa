package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// setupTestSessionStore creates a test Redis client and SessionStore
func setupTestSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewSessionStore(client)

	return store, mr, func() {
		client.Close()
		mr.Close()
	}
}

// createTestSession creates a test session with default values
func createTestSession(id, userID string) *domain.Session {
	return &domain.Session{
		ID:        id,
		UserID:    userID,
		Token:     "token-" + id,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
		UserAgent: "Mozilla/5.0",
		IPAddress: "192.168.1.1",
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("session-1", "user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error saving session: %v", err)
	}

	retrieved, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to retrieve saved session: %v", err)
	}
	if retrieved.ID != session.ID || retrieved.UserID != session.UserID {
		t.Errorf("retrieved session mismatch: %+v", retrieved)
	}
	if retrieved.Token != session.Token {
		t.Errorf("expected token %s, got %s", session.Token, retrieved.Token)
	}
}

func TestSessionStore_SaveExpiredIsNoop(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("session-1", "user-1")
	session.ExpiresAt = time.Now().Add(-time.Hour)

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expired session must not be stored, got %v", err)
	}
}

func TestSessionStore_GetByToken(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("session-1", "user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	retrieved, err := store.GetByToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if retrieved.ID != session.ID {
		t.Errorf("expected session %s, got %s", session.ID, retrieved.ID)
	}

	if _, err := store.GetByToken(ctx, "unknown"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store, mr, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("session-1", "user-1")
	session.ExpiresAt = time.Now().Add(time.Minute)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected session to expire via TTL, got %v", err)
	}
	if _, err := store.GetByToken(ctx, session.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected token index to expire via TTL, got %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("session-1", "user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected session gone, got %v", err)
	}
	if _, err := store.GetByToken(ctx, session.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected token index gone, got %v", err)
	}

	// deleting again is a no-op
	if err := store.Delete(ctx, session.ID); err != nil {
		t.Errorf("double delete must not error: %v", err)
	}
}

func TestSessionStore_DeleteByUser(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	for _, id := range []string{"session-1", "session-2"} {
		if err := store.Save(ctx, createTestSession(id, "user-1")); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	other := createTestSession("session-3", "user-2")
	if err := store.Save(ctx, other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.DeleteByUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}

	for _, id := range []string{"session-1", "session-2"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("expected %s deleted, got %v", id, err)
		}
	}
	if _, err := store.Get(ctx, other.ID); err != nil {
		t.Errorf("other user's session must survive: %v", err)
	}
}
