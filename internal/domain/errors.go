package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Domain Error Types
// ============================================================================

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so sentinels compare equal to wrapped copies
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// ============================================================================
// Common Domain Errors
// ============================================================================

var (
	// User Errors
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrUserAlreadyExists = &DomainError{
		Code:    "USER_ALREADY_EXISTS",
		Message: "User already exists",
	}

	// Credential Errors
	ErrInvalidPassword = &DomainError{
		Code:    "INVALID_PASSWORD",
		Message: "Invalid password",
	}

	// Session Errors
	ErrSessionNotFound = &DomainError{
		Code:    "SESSION_NOT_FOUND",
		Message: "session not found",
	}
	ErrSessionExpired = &DomainError{
		Code:    "SESSION_EXPIRED",
		Message: "session expired",
	}

	// Validation Errors
	ErrValidationFailed = &DomainError{
		Code:    "VALIDATION_FAILED",
		Message: "validation failed",
	}
	ErrRequiredFieldMissing = &DomainError{
		Code:    "REQUIRED_FIELD_MISSING",
		Message: "required field is missing",
	}

	// Infrastructure Errors
	ErrDatabaseOperation = &DomainError{
		Code:    "DATABASE_OPERATION_FAILED",
		Message: "database operation failed",
	}
	ErrCredentialOperation = &DomainError{
		Code:    "CREDENTIAL_OPERATION_FAILED",
		Message: "credential operation failed",
	}
)

// ============================================================================
// Error Wrapping Helpers
// ============================================================================

// WrapUserNotFound wraps an error as a user not found error
func WrapUserNotFound(lookup string, cause error) error {
	return &DomainError{
		Code:    ErrUserNotFound.Code,
		Message: fmt.Sprintf("user not found: %s", lookup),
		Cause:   cause,
	}
}

// WrapValidationError wraps an error as a validation failure for a field
func WrapValidationError(field string, cause error) error {
	message := fmt.Sprintf("validation failed for %s", field)
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &DomainError{
		Code:    ErrValidationFailed.Code,
		Message: message,
		Cause:   cause,
	}
}

// WrapRequiredField builds a required field error with a user-facing message
func WrapRequiredField(message string) error {
	return &DomainError{
		Code:    ErrRequiredFieldMissing.Code,
		Message: message,
	}
}

// WrapDatabaseOperation wraps an error as a database operation failure
func WrapDatabaseOperation(operation string, cause error) error {
	return &DomainError{
		Code:    ErrDatabaseOperation.Code,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Cause:   cause,
	}
}

// WrapCredentialOperation wraps a hashing failure
func WrapCredentialOperation(operation string, cause error) error {
	return &DomainError{
		Code:    ErrCredentialOperation.Code,
		Message: fmt.Sprintf("credential operation failed: %s", operation),
		Cause:   cause,
	}
}

// ============================================================================
// Error Checking Helpers
// ============================================================================

func hasCode(err error, codes ...string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	for _, code := range codes {
		if domainErr.Code == code {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return hasCode(err, ErrUserNotFound.Code, ErrSessionNotFound.Code)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasCode(err, ErrValidationFailed.Code, ErrRequiredFieldMissing.Code)
}

// IsAuthenticationError checks if an error means the caller is not (or no longer) signed in
func IsAuthenticationError(err error) bool {
	return hasCode(err, ErrSessionNotFound.Code, ErrSessionExpired.Code)
}

// IsCredentialError checks if an error is a rejected email/password pair
func IsCredentialError(err error) bool {
	return hasCode(err, ErrInvalidPassword.Code)
}

// IsConflictError checks if an error is a uniqueness violation
func IsConflictError(err error) bool {
	return hasCode(err, ErrUserAlreadyExists.Code)
}

// IsInfrastructureError checks if an error is an infrastructure error
func IsInfrastructureError(err error) bool {
	return hasCode(err, ErrDatabaseOperation.Code, ErrCredentialOperation.Code)
}

// PublicMessage returns the message safe to show to API clients.
// Infrastructure details never leave the server.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsInfrastructureError(err) {
		return "Internal server error"
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "Something went wrong"
}
