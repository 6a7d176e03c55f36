// Package guard keeps the client's current route consistent with its session.
//
// Routes are grouped by their first segment: "(auth)" screens are for signed
// out users, everything else requires a session.
package guard

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/authstarter/internal/authclient"
)

// Group is the route group the client is currently in
type Group string

const (
	GroupAuth Group = "auth"
	GroupApp  Group = "app"
)

// Routes the guard and forms navigate between
const (
	RouteSignIn = "/(auth)/sign-in"
	RouteSignUp = "/(auth)/sign-up"
	RouteApp    = "/(app)"
)

// GroupOf returns the group a route belongs to
func GroupOf(route string) Group {
	first, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	if first == "(auth)" {
		return GroupAuth
	}
	return GroupApp
}

// Action is a navigation decision. The zero value means stay put.
type Action struct {
	Replace string
}

// None reports whether the action does nothing
func (a Action) None() bool {
	return a.Replace == ""
}

// Decide picks the navigation for a session state and route group.
// Nothing happens until the first session fetch has resolved.
func Decide(state authclient.SessionState, group Group) Action {
	switch {
	case state.Pending:
		return Action{}
	case !state.SignedIn() && group != GroupAuth:
		return Action{Replace: RouteSignIn}
	case state.SignedIn() && group == GroupAuth:
		return Action{Replace: RouteApp}
	default:
		return Action{}
	}
}

// Navigator is the router the guard drives. Replace swaps the current route
// without leaving it in history.
type Navigator interface {
	Current() string
	Replace(route string)
	OnChange(fn func(route string)) (unsubscribe func())
}

// SessionSource is the read-only session capability the guard observes
type SessionSource interface {
	State() authclient.SessionState
	Subscribe(fn func(authclient.SessionState)) (unsubscribe func())
}

// Guard re-evaluates Decide whenever the session or the route changes
type Guard struct {
	session SessionSource
	nav     Navigator
	logger  *slog.Logger

	mu   sync.Mutex
	stop []func()
}

// New creates a guard. Call Start to begin watching.
func New(session SessionSource, nav Navigator, logger *slog.Logger) *Guard {
	return &Guard{
		session: session,
		nav:     nav,
		logger:  logger,
	}
}

// Start evaluates once and then on every session or route change
func (g *Guard) Start() {
	g.mu.Lock()
	g.stop = append(g.stop,
		g.session.Subscribe(func(authclient.SessionState) { g.Evaluate() }),
		g.nav.OnChange(func(string) { g.Evaluate() }),
	)
	g.mu.Unlock()

	g.Evaluate()
}

// Stop detaches the guard from the session and navigator
func (g *Guard) Stop() {
	g.mu.Lock()
	stop := g.stop
	g.stop = nil
	g.mu.Unlock()

	for _, fn := range stop {
		fn()
	}
}

// Evaluate applies the current decision and returns it
func (g *Guard) Evaluate() Action {
	route := g.nav.Current()
	action := Decide(g.session.State(), GroupOf(route))
	if action.None() {
		return action
	}

	g.logger.Debug("guard redirect", "from", route, "to", action.Replace)
	g.nav.Replace(action.Replace)
	return action
}
