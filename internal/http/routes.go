package http

import (
	"github.com/authstarter/internal/apipaths"
)

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check endpoint (no auth required)
	s.engine.GET(apipaths.Health, s.getHealth)

	// Mount auth routes (sign-up, login, logout, user)
	// go-pkgz/auth expects paths relative to mount point, so the prefix is stripped
	prefix := s.config.Auth.APIPath
	s.engine.Any(prefix+"/*path", s.authRouter(prefix))

	// Protected routes
	protected := s.engine.Group("")
	protected.Use(s.requireSession())
	{
		protected.GET(apipaths.Me, s.getCurrentUser)
		protected.POST(apipaths.DeleteAccount, s.deleteAccount)
	}
}
