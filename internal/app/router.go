package app

import (
	"sync"

	"github.com/authstarter/internal/guard"
)

// Router tracks the current screen. It is the guard's Navigator.
type Router struct {
	mu        sync.RWMutex
	route     string
	listeners map[int]func(string)
	nextID    int
}

func NewRouter(initial string) *Router {
	return &Router{route: initial, listeners: make(map[int]func(string))}
}

var _ guard.Navigator = (*Router)(nil)

// Current returns the active route
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.route
}

// Replace swaps the active route. There is no back stack, so this is also
// how screens link to each other.
func (r *Router) Replace(route string) {
	r.mu.Lock()
	if r.route == route {
		r.mu.Unlock()
		return
	}
	r.route = route
	listeners := make([]func(string), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(route)
	}
}

// OnChange registers fn for route changes
func (r *Router) OnChange(fn func(string)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}
