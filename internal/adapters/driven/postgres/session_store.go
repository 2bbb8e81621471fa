package postgres

import (
	"context"
	"database/sql"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore using PostgreSQL. Used when
// Redis is not configured; expiry is checked on read instead of by TTL.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save stores a session
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token, expires_at, created_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at,
			user_agent = EXCLUDED.user_agent,
			ip_address = EXCLUDED.ip_address
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt,
		session.CreatedAt,
		session.UserAgent,
		session.IPAddress,
	)
	return err
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at, user_agent, ip_address
		FROM sessions
		WHERE id = $1 AND expires_at > now()
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByToken retrieves a session by token value
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at, user_agent, ip_address
		FROM sessions
		WHERE token = $1 AND expires_at > now()
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, token))
}

// Delete deletes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteByUser deletes all sessions for a user
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (s *SessionStore) scanOne(row *sql.Row) (*domain.Session, error) {
	var session domain.Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UserAgent,
		&session.IPAddress,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
