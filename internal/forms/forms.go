// Package forms holds the sign-in, sign-up and delete-account form logic,
// independent of how the screens are drawn.
package forms

import (
	"context"
	"sync/atomic"
	"unicode/utf8"

	"github.com/authstarter/internal/authclient"
	"github.com/authstarter/internal/constants"
)

// Authenticator signs a user in
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) error
}

// Registrar creates accounts
type Registrar interface {
	SignUp(ctx context.Context, name, email, password string) (*authclient.User, error)
}

// errorMessage is the alert text for a failed call
func errorMessage(err error) string {
	if msg := authclient.Message(err); msg != "" {
		return msg
	}
	return MsgFallback
}

// SignInForm is the state behind the sign-in screen
type SignInForm struct {
	Email    string
	Password string

	auth    Authenticator
	alerts  Alerter
	loading atomic.Bool
}

func NewSignInForm(auth Authenticator, alerts Alerter) *SignInForm {
	return &SignInForm{auth: auth, alerts: alerts}
}

// Loading reports whether a submission is in flight
func (f *SignInForm) Loading() bool {
	return f.loading.Load()
}

// Submit signs in with the entered credentials. On success the session
// store changes and the guard takes over; nothing else happens here.
func (f *SignInForm) Submit(ctx context.Context) error {
	if f.loading.Load() {
		return ErrBusy
	}
	email, password := f.Email, f.Password
	if email == "" || password == "" {
		f.alerts.Alert(TitleError, MsgFillAllFields)
		return ErrInvalidInput
	}

	if !f.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	err := f.auth.SignIn(ctx, email, password)
	f.loading.Store(false)

	if err != nil {
		f.alerts.Alert(TitleSignInFailed, errorMessage(err))
		return err
	}
	return nil
}

// SignUpForm is the state behind the sign-up screen
type SignUpForm struct {
	Name     string
	Email    string
	Password string

	auth    Registrar
	alerts  Alerter
	loading atomic.Bool
}

func NewSignUpForm(auth Registrar, alerts Alerter) *SignUpForm {
	return &SignUpForm{auth: auth, alerts: alerts}
}

// Loading reports whether a submission is in flight
func (f *SignUpForm) Loading() bool {
	return f.loading.Load()
}

// Submit creates the account. The server signs the new user in.
func (f *SignUpForm) Submit(ctx context.Context) error {
	if f.loading.Load() {
		return ErrBusy
	}
	name, email, password := f.Name, f.Email, f.Password
	if name == "" || email == "" || password == "" {
		f.alerts.Alert(TitleError, MsgFillAllFields)
		return ErrInvalidInput
	}
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		f.alerts.Alert(TitleError, MsgPasswordTooShort)
		return ErrInvalidInput
	}

	if !f.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	_, err := f.auth.SignUp(ctx, name, email, password)
	f.loading.Store(false)

	if err != nil {
		f.alerts.Alert(TitleSignUpFailed, errorMessage(err))
		return err
	}
	return nil
}
