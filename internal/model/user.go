package model

import "time"

// Role names accepted in a user's metadata.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is an account of the admin dashboard, stored under user_<email>.
// PasswordHash is a bcrypt hash and never leaves the server.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash"`
	Name         string         `json:"name"`
	Role         string         `json:"role"`
	Metadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TokenRecord is a hashed refresh or password-reset token. Only the SHA-256
// hash of the raw token is stored.
type TokenRecord struct {
	TokenHash string     `json:"token_hash"`
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the token is neither revoked nor expired at now.
func (t TokenRecord) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
