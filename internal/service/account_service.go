package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/authstarter/internal/config"
	"github.com/authstarter/internal/db"
	"github.com/authstarter/internal/domain"
	"github.com/authstarter/internal/validation"
)

// accountService implements the AccountService interface
type accountService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	sessionTTL time.Duration
	policy     validation.PasswordPolicy
	hashCost   int
	logger     *slog.Logger
	now        func() time.Time

	// compared against when the email is unknown so both paths cost one bcrypt check
	dummyHash []byte
}

// AccountOption customizes an account service
type AccountOption func(*accountService)

// WithHashCost overrides the bcrypt cost (tests use bcrypt.MinCost)
func WithHashCost(cost int) AccountOption {
	return func(s *accountService) { s.hashCost = cost }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) AccountOption {
	return func(s *accountService) { s.now = now }
}

// NewAccountService creates a new account service
func NewAccountService(users domain.UserRepository, sessions domain.SessionRepository, cfg *config.Config, logger *slog.Logger, opts ...AccountOption) domain.AccountService {
	s := &accountService{
		users:      users,
		sessions:   sessions,
		sessionTTL: cfg.Auth.SessionTTL,
		policy: validation.PasswordPolicy{
			MinLength: cfg.Auth.MinPasswordLength,
			MaxLength: cfg.Auth.MaxPasswordLength,
		},
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dummyHash, _ = bcrypt.GenerateFromPassword(passwordKey("not-a-real-password"), s.hashCost)
	return s
}

// SignUp creates the user and opens their first session
func (s *accountService) SignUp(ctx context.Context, req domain.SignUpRequest, client domain.ClientInfo) (*domain.SessionView, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = validation.NormalizeEmail(req.Email)

	s.logger.DebugContext(ctx, "signing up user", "email", req.Email)

	if err := validation.ValidateSignUp(req, s.policy); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, domain.ErrUserAlreadyExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, domain.WrapDatabaseOperation("get user by email", err)
	}

	hash, err := bcrypt.GenerateFromPassword(passwordKey(req.Password), s.hashCost)
	if err != nil {
		return nil, domain.WrapCredentialOperation("hash password", err)
	}

	user := db.NewUser(req.Name, req.Email, string(hash))
	if err := s.users.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent sign-up for the same email
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, domain.WrapDatabaseOperation("create user", err)
	}

	session, err := s.createSession(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return &domain.SessionView{User: user, Session: session}, nil
}

// CheckCredentials reports whether email/password match a stored user.
// Unknown emails and wrong passwords both return false with no error.
func (s *accountService) CheckCredentials(ctx context.Context, email, password string) (bool, error) {
	email = validation.NormalizeEmail(email)
	// A malformed attempt is a failed sign-in, not a server error
	if err := validation.ValidateCredentials(email, password); err != nil {
		s.logger.DebugContext(ctx, "sign in rejected", "error", err)
		return false, nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, passwordKey(password))
			s.logger.DebugContext(ctx, "sign in for unknown email", "email", email)
			return false, nil
		}
		return false, domain.WrapDatabaseOperation("get user by email", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordKey(password)); err != nil {
		s.logger.DebugContext(ctx, "sign in with wrong password", "user_id", user.ID)
		return false, nil
	}
	return true, nil
}

// OpenSession starts a session for an already authenticated email
func (s *accountService) OpenSession(ctx context.Context, email string, client domain.ClientInfo) (*domain.SessionView, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapUserNotFound(email, err)
		}
		return nil, domain.WrapDatabaseOperation("get user by email", err)
	}

	session, err := s.createSession(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session opened", "user_id", user.ID, "session_id", session.ID)
	return &domain.SessionView{User: user, Session: session}, nil
}

// passwordKey digests the password so inputs over bcrypt's 72-byte limit
// are neither rejected nor silently truncated.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (s *accountService) createSession(ctx context.Context, userID string, client domain.ClientInfo) (*db.Session, error) {
	session := db.NewSession(userID, s.sessionTTL, client.IPAddress, client.UserAgent)
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, domain.WrapDatabaseOperation("create session", err)
	}
	return session, nil
}

// ResolveSession returns the live session and its user
func (s *accountService) ResolveSession(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.WrapDatabaseOperation("get session", err)
	}

	if session.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, session.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, domain.ErrSessionExpired
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.WrapDatabaseOperation("get user by id", err)
	}

	return &domain.SessionView{User: user, Session: session}, nil
}

// RevokeSession ends a single session
func (s *accountService) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return domain.WrapDatabaseOperation("delete session", err)
	}
	s.logger.InfoContext(ctx, "session revoked", "session_id", sessionID)
	return nil
}

// DeleteAccount removes the user and every session they hold
func (s *accountService) DeleteAccount(ctx context.Context, userID string, req domain.DeleteAccountRequest) error {
	if err := validation.ValidateDeletePassword(req.Password); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapUserNotFound(userID, err)
		}
		return domain.WrapDatabaseOperation("get user by id", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordKey(req.Password)); err != nil {
		s.logger.InfoContext(ctx, "account deletion rejected: wrong password", "user_id", userID)
		return domain.ErrInvalidPassword
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapUserNotFound(userID, err)
		}
		return domain.WrapDatabaseOperation("delete user", err)
	}

	s.logger.InfoContext(ctx, "account deleted", "user_id", userID)
	return nil
}

// SweepExpiredSessions deletes sessions expired at now
func (s *accountService) SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return 0, domain.WrapDatabaseOperation("delete expired sessions", err)
	}
	return n, nil
}
