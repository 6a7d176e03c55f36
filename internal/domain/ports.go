package domain

import (
	"context"
	"time"

	"github.com/authstarter/internal/db"
)

// ============================================================================
// Primary Ports (Application Use Cases)
// ============================================================================

// AccountService defines the primary port for account and session use cases
type AccountService interface {
	// SignUp creates the user and opens their first session
	SignUp(ctx context.Context, req SignUpRequest, client ClientInfo) (*SessionView, error)
	// CheckCredentials reports whether email/password match a stored user
	CheckCredentials(ctx context.Context, email, password string) (bool, error)
	// OpenSession starts a session for an already authenticated email
	OpenSession(ctx context.Context, email string, client ClientInfo) (*SessionView, error)
	// ResolveSession returns the live session and its user
	ResolveSession(ctx context.Context, sessionID string) (*SessionView, error)
	// RevokeSession ends a single session. Missing sessions are ignored.
	RevokeSession(ctx context.Context, sessionID string) error
	// DeleteAccount removes the user after re-checking their password
	DeleteAccount(ctx context.Context, userID string, req DeleteAccountRequest) error
	// SweepExpiredSessions deletes sessions expired at now
	SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ============================================================================
// Secondary Ports (Storage)
// ============================================================================

// UserRepository is the user storage the account service depends on
type UserRepository interface {
	CreateUser(ctx context.Context, user *db.User) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id string) (*db.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository is the session storage the account service depends on
type SessionRepository interface {
	CreateSession(ctx context.Context, session *db.Session) error
	GetSession(ctx context.Context, id string) (*db.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ============================================================================
// Request/Response Types
// ============================================================================

// SignUpRequest represents the request to create an account
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DeleteAccountRequest represents the request to delete the caller's account
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// ClientInfo is what the server knows about the caller when a session opens
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// SessionView is the authenticated identity returned to clients
type SessionView struct {
	User    *db.User    `json:"user"`
	Session *db.Session `json:"session"`
}
