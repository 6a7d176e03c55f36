package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder
type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	Image         *string   `json:"image,omitempty" db:"image"`  // Nullable
	PasswordHash  string    `json:"-" db:"password_hash"`        // Never expose password in JSON
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Session represents a server-side login session.
// A signed-in client holds a token that names the session by ID.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	IPAddress string    `json:"ipAddress" db:"ip_address"`
	UserAgent string    `json:"userAgent" db:"user_agent"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"` // Stored as unix seconds
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the session is no longer usable at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NewUser creates a new User with a generated UUID
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewSession creates a new Session for userID that lasts ttl
func NewSession(userID string, ttl time.Duration, ipAddress, userAgent string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		// second precision, matching what the store keeps
		ExpiresAt: now.Add(ttl).Truncate(time.Second),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
