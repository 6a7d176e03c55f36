package authclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Refresh(t *testing.T) {
	var current *Session
	store := NewSessionStore(func(context.Context) (*Session, error) {
		return current, nil
	})

	state := store.State()
	assert.True(t, state.Pending)
	assert.False(t, state.SignedIn())

	store.Refresh(context.Background())
	state = store.State()
	assert.False(t, state.Pending)
	assert.False(t, state.SignedIn())

	current = &Session{User: User{ID: "u1", Email: "a@example.com"}}
	state = store.Refresh(context.Background())
	require.True(t, state.SignedIn())
	assert.Equal(t, "u1", state.Session.User.ID)
}

func TestSessionStore_FetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	store := NewSessionStore(func(context.Context) (*Session, error) {
		return &Session{}, fetchErr
	})

	state := store.Refresh(context.Background())
	assert.False(t, state.Pending)
	assert.False(t, state.SignedIn())
	assert.ErrorIs(t, state.Err, fetchErr)
}

func TestSessionStore_Subscribe(t *testing.T) {
	store := NewSessionStore(func(context.Context) (*Session, error) {
		return &Session{User: User{ID: "u1"}}, nil
	})

	var seen []SessionState
	unsubscribe := store.Subscribe(func(s SessionState) {
		// reading the store from a subscriber must not deadlock
		assert.Equal(t, s, store.State())
		seen = append(seen, s)
	})

	store.Refresh(context.Background())
	require.Len(t, seen, 1)
	assert.True(t, seen[0].SignedIn())

	unsubscribe()
	store.Refresh(context.Background())
	assert.Len(t, seen, 1)
}
