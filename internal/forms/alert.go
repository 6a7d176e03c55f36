package forms

import "errors"

// ButtonStyle controls how an alert button is presented
type ButtonStyle int

const (
	StyleDefault ButtonStyle = iota
	StyleCancel
	StyleDestructive
)

// AlertButton is one choice on an alert. OnPress may be nil.
type AlertButton struct {
	Text    string
	Style   ButtonStyle
	OnPress func()
}

// Alerter shows a blocking message to the user. With no buttons the alert
// has a single dismiss action.
type Alerter interface {
	Alert(title, message string, buttons ...AlertButton)
}

// AlerterFunc adapts a function to Alerter
type AlerterFunc func(title, message string, buttons ...AlertButton)

func (f AlerterFunc) Alert(title, message string, buttons ...AlertButton) {
	f(title, message, buttons...)
}

// Alert titles and messages
const (
	TitleError        = "Error"
	TitleSignInFailed = "Sign In Failed"
	TitleSignUpFailed = "Sign Up Failed"
	TitleDeleteFailed = "Delete Failed"
	TitleDelete       = "Delete Account"

	MsgFillAllFields    = "Please fill in all fields"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgEnterPassword    = "Please enter your password"
	MsgDeleteWarning    = "This permanently deletes your account and signs you out. This cannot be undone."
	MsgFallback         = "Something went wrong"
)

// ErrBusy is returned when a form is submitted while its previous
// submission is still in flight
var ErrBusy = errors.New("submission already in progress")

// ErrInvalidInput is returned when local checks fail. The user has already
// been alerted.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotConfirmed is returned when deletion is confirmed before the password
// step is open
var ErrNotConfirmed = errors.New("account deletion not confirmed")
