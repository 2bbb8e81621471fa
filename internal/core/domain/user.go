package domain

import "time"

// Role defines user permission level
type Role string

const (
	RoleAdmin  Role = "admin"  // Manage users and document ingestion
	RoleMember Role = "member" // Query and view collections
)

// User represents an account on the RAG backend
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// UserSummary provides a safe view of user data (no password hash)
type UserSummary struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToSummary converts a User to UserSummary
func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
	}
}

// IsAdmin checks if the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanIngest checks if the user can trigger document chunking
func (u *User) CanIngest() bool {
	return u.Active && u.Role == RoleAdmin
}

// CanQuery checks if the user can run RAG queries
func (u *User) CanQuery() bool {
	return u.Active && (u.Role == RoleAdmin || u.Role == RoleMember)
}
