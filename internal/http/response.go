package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authstarter/internal/domain"
	"github.com/authstarter/internal/validation"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// unauthorized is the fixed body for every request without a valid session
var unauthorized = ErrorResponse{Error: "Unauthorized"}

// statusForError maps a domain error onto an HTTP status
func statusForError(err error) int {
	switch {
	case domain.IsAuthenticationError(err):
		return http.StatusUnauthorized
	case domain.IsValidationError(err), domain.IsCredentialError(err):
		return http.StatusBadRequest
	case domain.IsConflictError(err):
		return http.StatusUnprocessableEntity
	case domain.IsNotFoundError(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status and public message
func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{
		Error:  domain.PublicMessage(err),
		Fields: validation.FieldErrors(err),
	})
}
