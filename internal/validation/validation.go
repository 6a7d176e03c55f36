package validation

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/authstarter/internal/constants"
	"github.com/authstarter/internal/domain"
)

// PasswordPolicy bounds accepted password lengths
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

func (p PasswordPolicy) rule() validation.Rule {
	return validation.RuneLength(p.MinLength, p.MaxLength).
		Error(fmt.Sprintf("must be between %d and %d characters", p.MinLength, p.MaxLength))
}

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignUp checks a sign-up request. The email is expected to be normalized.
func ValidateSignUp(req domain.SignUpRequest, policy PasswordPolicy) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, constants.MaxNameLength)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, policy.rule()),
	)
	if err != nil {
		return domain.WrapValidationError("sign up", err)
	}
	return nil
}

// ValidateCredentials checks the shape of a sign-in attempt
func ValidateCredentials(email, password string) error {
	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if err != nil {
		return domain.WrapValidationError("credentials", err)
	}
	return nil
}

// ValidateDeletePassword requires a password before an account can be deleted
func ValidateDeletePassword(password string) error {
	if err := validation.Validate(password, validation.Required); err != nil {
		return domain.WrapRequiredField("Password is required to delete account")
	}
	return nil
}

// FieldErrors flattens a validation error into field -> message, or nil
// when err does not carry per-field details.
func FieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr != nil {
			out[field] = fieldErr.Error()
		}
	}
	return out
}
