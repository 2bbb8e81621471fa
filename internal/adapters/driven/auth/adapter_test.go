package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/chatstack/rag-core/internal/core/domain"
)

func testAdapter() *Adapter {
	// MinCost keeps the tests fast
	return NewAdapterWithCost("test-secret", bcrypt.MinCost)
}

func testClaims() *domain.TokenClaims {
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    "user-1",
		Email:     "admin@example.com",
		Role:      domain.RoleAdmin,
		SessionID: "session-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestAdapter_PasswordRoundTrip(t *testing.T) {
	a := testAdapter()

	hash, err := a.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret" {
		t.Error("hash must not equal the plaintext")
	}

	if !a.VerifyPassword("secret", hash) {
		t.Error("correct password must verify")
	}
	if a.VerifyPassword("wrong", hash) {
		t.Error("wrong password must not verify")
	}
}

func TestAdapter_TokenRoundTrip(t *testing.T) {
	a := testAdapter()
	claims := testClaims()

	token, err := a.GenerateToken(claims)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parsed, err := a.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if parsed.UserID != claims.UserID || parsed.Email != claims.Email {
		t.Errorf("claims mismatch: %+v", parsed)
	}
	if parsed.Role != domain.RoleAdmin || parsed.SessionID != "session-1" {
		t.Errorf("claims mismatch: %+v", parsed)
	}
}

func TestAdapter_ParseExpiredToken(t *testing.T) {
	a := testAdapter()
	claims := testClaims()
	claims.IssuedAt = time.Now().Add(-2 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()

	token, err := a.GenerateToken(claims)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := a.ParseToken(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAdapter_ParseInvalidToken(t *testing.T) {
	a := testAdapter()

	if _, err := a.ParseToken("not-a-jwt"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAdapter_ParseTokenWrongSecret(t *testing.T) {
	a := testAdapter()
	other := NewAdapterWithCost("other-secret", bcrypt.MinCost)

	token, err := a.GenerateToken(testClaims())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.ParseToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}
}
