package authclient

import (
	"context"
	"sync"
)

// SessionState is what the UI knows about the session at a point in time.
// Pending is true until the first fetch completes; Session is nil when
// signed out.
type SessionState struct {
	Pending bool
	Session *Session
	Err     error
}

// SignedIn reports whether a session is present
func (s SessionState) SignedIn() bool {
	return s.Session != nil
}

// SessionFetcher loads the current session from its source of truth
type SessionFetcher func(ctx context.Context) (*Session, error)

// SessionStore caches the session state and notifies subscribers when it changes
type SessionStore struct {
	mu          sync.RWMutex
	fetch       SessionFetcher
	state       SessionState
	subscribers map[int]func(SessionState)
	nextID      int
}

// NewSessionStore creates a store in the pending state
func NewSessionStore(fetch SessionFetcher) *SessionStore {
	return &SessionStore{
		fetch:       fetch,
		state:       SessionState{Pending: true},
		subscribers: make(map[int]func(SessionState)),
	}
}

// State returns the current state
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Refresh refetches the session and publishes the result. A failed fetch
// leaves the store signed out with Err set.
func (s *SessionStore) Refresh(ctx context.Context) SessionState {
	session, err := s.fetch(ctx)
	next := SessionState{Session: session, Err: err}
	if err != nil {
		next.Session = nil
	}
	s.set(next)
	return next
}

// Subscribe registers fn for every state change and returns a function that
// removes it
func (s *SessionStore) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) set(next SessionState) {
	s.mu.Lock()
	s.state = next
	subscribers := make([]func(SessionState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	// Subscribers may read the store, so call them outside the lock
	for _, fn := range subscribers {
		fn(next)
	}
}
