package postgres

import (
	"context"
	"database/sql"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UserStore = (*UserStore)(nil)

// UserStore implements driven.UserStore using PostgreSQL
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Save creates or updates a user
func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, active, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at,
			last_login_at = EXCLUDED.last_login_at
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		string(user.Role),
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
		NullTime(user.LastLoginAt),
	)
	return err
}

// Get retrieves a user by ID
func (s *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, active, created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, active, created_at, updated_at, last_login_at
		FROM users
		WHERE email = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

// Count returns the total number of users
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// UpdateLastLogin updates the last login timestamp
func (s *UserStore) UpdateLastLogin(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = now(), updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UserStore) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.LastLoginAt = TimePtr(lastLoginAt)
	return &user, nil
}
