package driven

import (
	"context"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// UserStore handles user persistence (PostgreSQL)
type UserStore interface {
	// Save creates or updates a user
	Save(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Count returns the total number of users
	Count(ctx context.Context) (int, error)

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, id string) error
}
