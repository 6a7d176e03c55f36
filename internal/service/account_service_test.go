package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/authstarter/internal/config"
	"github.com/authstarter/internal/db"
	"github.com/authstarter/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		Auth: config.AuthConfig{
			TokenTTL:          15 * time.Minute,
			SessionTTL:        time.Hour,
			MinPasswordLength: 8,
			MaxPasswordLength: 128,
		},
	}
}

// setupTestAccountService creates an account service backed by a temp database
func setupTestAccountService(t *testing.T, opts ...AccountOption) (domain.AccountService, *db.DB) {
	t.Helper()

	database, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	opts = append([]AccountOption{WithHashCost(bcrypt.MinCost)}, opts...)
	svc := NewAccountService(database, database, testConfig(), slog.Default(), opts...)
	return svc, database
}

func signUp(t *testing.T, svc domain.AccountService, email, password string) *domain.SessionView {
	t.Helper()
	view, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Name:     "Test User",
		Email:    email,
		Password: password,
	}, domain.ClientInfo{IPAddress: "127.0.0.1", UserAgent: "go-test"})
	require.NoError(t, err)
	return view
}

func TestSignUp_CreatesUserAndSession(t *testing.T) {
	svc, database := setupTestAccountService(t)
	ctx := context.Background()

	view := signUp(t, svc, "  Test@Example.com ", "password1234")

	assert.Equal(t, "test@example.com", view.User.Email, "email is normalized")
	assert.Equal(t, "Test User", view.User.Name)
	assert.NotEqual(t, "password1234", view.User.PasswordHash)
	require.NotNil(t, view.Session)
	assert.Equal(t, view.User.ID, view.Session.UserID)
	assert.Equal(t, "127.0.0.1", view.Session.IPAddress)

	stored, err := database.GetSession(ctx, view.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, view.User.ID, stored.UserID)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _ := setupTestAccountService(t)
	signUp(t, svc, "test@example.com", "password1234")

	_, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Name: "Other", Email: "TEST@example.com", Password: "password5678",
	}, domain.ClientInfo{})

	require.Error(t, err)
	assert.True(t, domain.IsConflictError(err))
	assert.Equal(t, "User already exists", domain.PublicMessage(err))
}

func TestSignUp_Validation(t *testing.T) {
	svc, _ := setupTestAccountService(t)

	tests := []struct {
		name string
		req  domain.SignUpRequest
	}{
		{"short password", domain.SignUpRequest{Name: "T", Email: "t@example.com", Password: "short"}},
		{"missing name", domain.SignUpRequest{Email: "t@example.com", Password: "password1234"}},
		{"bad email", domain.SignUpRequest{Name: "T", Email: "nope", Password: "password1234"}},
		{"whitespace name", domain.SignUpRequest{Name: "   ", Email: "t@example.com", Password: "password1234"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.req, domain.ClientInfo{})
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err), "got %v", err)
		})
	}
}

func TestSignUp_LongPassword(t *testing.T) {
	svc, _ := setupTestAccountService(t)
	password := strings.Repeat("p", 128)

	signUp(t, svc, "long@example.com", password)

	ok, err := svc.CheckCredentials(context.Background(), "long@example.com", password)
	require.NoError(t, err)
	assert.True(t, ok)

	// differs only after byte 72
	ok, err = svc.CheckCredentials(context.Background(), "long@example.com", strings.Repeat("p", 127)+"q")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckCredentials(t *testing.T) {
	svc, _ := setupTestAccountService(t)
	signUp(t, svc, "test@example.com", "password1234")
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"correct", "test@example.com", "password1234", true},
		{"email case-insensitive", "TEST@EXAMPLE.COM", "password1234", true},
		{"wrong password", "test@example.com", "wrongpassword", false},
		{"unknown email", "nobody@example.com", "password1234", false},
		{"empty password", "test@example.com", "", false},
		{"empty email", "", "password1234", false},
		{"malformed email", "test", "password1234", false},
		{"padded email", "  test@example.com ", "password1234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := svc.CheckCredentials(ctx, tt.email, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestOpenAndResolveSession(t *testing.T) {
	svc, _ := setupTestAccountService(t)
	signUp(t, svc, "test@example.com", "password1234")
	ctx := context.Background()

	view, err := svc.OpenSession(ctx, "Test@Example.com", domain.ClientInfo{})
	require.NoError(t, err)

	resolved, err := svc.ResolveSession(ctx, view.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", resolved.User.Email)
	assert.Equal(t, view.Session.ID, resolved.Session.ID)

	_, err = svc.OpenSession(ctx, "nobody@example.com", domain.ClientInfo{})
	assert.True(t, domain.IsNotFoundError(err))
}

func TestResolveSession_MissingAndRevoked(t *testing.T) {
	svc, _ := setupTestAccountService(t)
	view := signUp(t, svc, "test@example.com", "password1234")
	ctx := context.Background()

	_, err := svc.ResolveSession(ctx, "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.ResolveSession(ctx, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, svc.RevokeSession(ctx, view.Session.ID))
	_, err = svc.ResolveSession(ctx, view.Session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// revoking twice is fine
	assert.NoError(t, svc.RevokeSession(ctx, view.Session.ID))
}

func TestResolveSession_Expired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc, database := setupTestAccountService(t, WithClock(clock))
	view := signUp(t, svc, "test@example.com", "password1234")
	ctx := context.Background()

	_, err := svc.ResolveSession(ctx, view.Session.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.ResolveSession(ctx, view.Session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.True(t, domain.IsAuthenticationError(err))

	// expired rows are removed on sight
	_, err = database.GetSession(ctx, view.Session.ID)
	assert.Error(t, err)
}

func TestDeleteAccount(t *testing.T) {
	svc, database := setupTestAccountService(t)
	view := signUp(t, svc, "test@example.com", "password1234")
	ctx := context.Background()

	second, err := svc.OpenSession(ctx, "test@example.com", domain.ClientInfo{})
	require.NoError(t, err)

	t.Run("requires password", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, view.User.ID, domain.DeleteAccountRequest{})
		require.Error(t, err)
		assert.Equal(t, "Password is required to delete account", domain.PublicMessage(err))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, view.User.ID, domain.DeleteAccountRequest{Password: "wrongpassword"})
		assert.ErrorIs(t, err, domain.ErrInvalidPassword)

		_, err = database.GetUserByID(ctx, view.User.ID)
		assert.NoError(t, err, "user must survive a rejected deletion")
	})

	t.Run("deletes user and all sessions", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, view.User.ID, domain.DeleteAccountRequest{Password: "password1234"})
		require.NoError(t, err)

		for _, id := range []string{view.Session.ID, second.Session.ID} {
			_, err := svc.ResolveSession(ctx, id)
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		}

		ok, err := svc.CheckCredentials(ctx, "test@example.com", "password1234")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, view.User.ID, domain.DeleteAccountRequest{Password: "password1234"})
		assert.True(t, domain.IsNotFoundError(err))
	})
}

func TestSweepExpiredSessions(t *testing.T) {
	svc, database := setupTestAccountService(t)
	view := signUp(t, svc, "test@example.com", "password1234")
	ctx := context.Background()

	n, err := svc.SweepExpiredSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.SweepExpiredSessions(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = database.GetSession(ctx, view.Session.ID)
	assert.Error(t, err)
}
