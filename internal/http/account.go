package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authstarter/internal/domain"
)

// getHealth reports liveness; no auth required
func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getCurrentUser returns the caller's user and session
func (s *Server) getCurrentUser(c *gin.Context) {
	view, exists := getSessionFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, unauthorized)
		return
	}

	c.JSON(http.StatusOK, view)
}

// deleteAccount deletes the caller's account after re-checking their password.
// All of the user's sessions go with it and the auth cookie is cleared.
func (s *Server) deleteAccount(c *gin.Context) {
	view, exists := getSessionFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, unauthorized)
		return
	}

	// A missing or malformed body is treated as a missing password
	var req domain.DeleteAccountRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.accounts.DeleteAccount(c.Request.Context(), view.User.ID, req); err != nil {
		status := http.StatusBadRequest
		switch {
		case domain.IsAuthenticationError(err):
			status = http.StatusUnauthorized
		case domain.IsInfrastructureError(err):
			status = http.StatusInternalServerError
			s.logger.ErrorContext(c.Request.Context(), "failed to delete account", "user_id", view.User.ID, "error", err)
		}
		c.JSON(status, ErrorResponse{Error: domain.PublicMessage(err)})
		return
	}

	s.authService.TokenService().Reset(c.Writer)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
