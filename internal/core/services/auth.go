package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
	"github.com/chatstack/rag-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService implements the AuthService interface
type authService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
	tokenTTL     time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
) driving.AuthService {
	return &authService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
		tokenTTL:     24 * time.Hour,
	}
}

// Authenticate validates credentials and creates a session
func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrUnauthorized
	}

	if !s.authAdapter.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	now := time.Now()
	claims := &domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.tokenTTL)
	session := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.sessionStore.Save(ctx, session); err != nil {
		return nil, err
	}

	// Best effort; login succeeds even if the timestamp update fails
	_ = s.userStore.UpdateLastLogin(ctx, user.ID)

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToSummary(),
	}, nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, err
	}

	// The session must still exist; logout revokes tokens before they expire
	session, err := s.sessionStore.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userStore.Get(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrUnauthorized
	}

	return &domain.AuthContext{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		SessionID: session.ID,
	}, nil
}

// Logout invalidates the session behind a token
func (s *authService) Logout(ctx context.Context, token string) error {
	session, err := s.sessionStore.GetByToken(ctx, token)
	if err != nil {
		return domain.ErrSessionNotFound
	}
	return s.sessionStore.Delete(ctx, session.ID)
}
