package authclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/authstarter/internal/config"
	"github.com/authstarter/internal/db"
	authhttp "github.com/authstarter/internal/http"
	"github.com/authstarter/internal/service"
)

// setupTestClient runs the real server on a temp database and returns a client for it
func setupTestClient(t *testing.T) *Client {
	t.Helper()

	database, err := db.Init(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			APIPath:           "/api/auth",
			Secret:            "client-test-secret-at-least-32-characters",
			BaseURL:           "http://localhost",
			Issuer:            "authstarter-test",
			TokenTTL:          15 * time.Minute,
			SessionTTL:        time.Hour,
			MinPasswordLength: 8,
			MaxPasswordLength: 128,
		},
	}
	accounts := service.NewAccountService(database, database, cfg, slog.Default(), service.WithHashCost(bcrypt.MinCost))
	ts := httptest.NewServer(authhttp.NewServer(cfg, accounts, slog.Default()).Handler())
	t.Cleanup(ts.Close)

	client, err := NewClient(ts.URL)
	require.NoError(t, err)
	return client
}

func requireAPIError(t *testing.T, err error, status int) *APIError {
	t.Helper()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	return apiErr
}

func TestClient_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	client := setupTestClient(t)

	assert.True(t, client.Session().State().Pending)

	user, err := client.SignUp(ctx, "Test User", "test@example.com", "password1234")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)

	state := client.Session().State()
	assert.False(t, state.Pending)
	require.True(t, state.SignedIn(), "sign up should sign the user in")
	assert.Equal(t, user.ID, state.Session.User.ID)
	assert.Equal(t, "Test User", state.Session.User.Name)
	require.NotNil(t, state.Session.ExpiresAt)
	assert.True(t, state.Session.ExpiresAt.After(time.Now()))

	require.NoError(t, client.SignOut(ctx))
	assert.False(t, client.Session().State().SignedIn())

	require.NoError(t, client.SignIn(ctx, "test@example.com", "password1234"))
	assert.True(t, client.Session().State().SignedIn())

	err = client.DeleteUser(ctx, "wrong-password")
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "Invalid password", apiErr.Message)
	assert.True(t, client.Session().State().SignedIn(), "failed delete keeps the session")

	require.NoError(t, client.DeleteUser(ctx, "password1234"))
	assert.False(t, client.Session().State().SignedIn())

	err = client.SignIn(ctx, "test@example.com", "password1234")
	requireAPIError(t, err, http.StatusForbidden)
}

func TestClient_SignUpErrors(t *testing.T) {
	ctx := context.Background()
	client := setupTestClient(t)

	_, err := client.SignUp(ctx, "Test User", "dupe@example.com", "password1234")
	require.NoError(t, err)
	require.NoError(t, client.SignOut(ctx))

	_, err = client.SignUp(ctx, "Other", "dupe@example.com", "password1234")
	apiErr := requireAPIError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "User already exists", Message(err))
	assert.Equal(t, "User already exists", apiErr.Message)

	_, err = client.SignUp(ctx, "Short", "short@example.com", "short")
	requireAPIError(t, err, http.StatusBadRequest)
	assert.False(t, client.Session().State().SignedIn())
}

func TestClient_GetSession_SignedOut(t *testing.T) {
	client := setupTestClient(t)

	session, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestClient_DeleteUserRequiresSession(t *testing.T) {
	client := setupTestClient(t)

	err := client.DeleteUser(context.Background(), "password1234")
	apiErr := requireAPIError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "", Message(errors.New("dial tcp: connection refused")))
	assert.Equal(t, "Invalid password", Message(&APIError{Status: 400, Message: "Invalid password"}))

	wrapped := errors.Join(errors.New("context"), &APIError{Status: 422, Message: "User already exists"})
	assert.Equal(t, "User already exists", Message(wrapped))
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "server returned status 500", (&APIError{Status: 500}).Error())
	assert.Equal(t, "server returned status 400: Invalid password", (&APIError{Status: 400, Message: "Invalid password"}).Error())
}
