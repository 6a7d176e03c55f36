// Package app is the terminal client: sign-in, sign-up and profile screens
// kept consistent with the session by the guard.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/authstarter/internal/authclient"
	"github.com/authstarter/internal/forms"
	"github.com/authstarter/internal/guard"
)

// errQuit ends Run without an error
var errQuit = errors.New("quit")

// noExpiry is shown when the session has no expiry
const noExpiry = "—"

// App is the interactive client
type App struct {
	client  *authclient.Client
	router  *Router
	guard   *guard.Guard
	console *console
	logger  *slog.Logger
}

// New creates an app that talks to the server through client
func New(client *authclient.Client, in io.Reader, out io.Writer, logger *slog.Logger) *App {
	router := NewRouter(guard.RouteApp)
	return &App{
		client:  client,
		router:  router,
		guard:   guard.New(client.Session(), router, logger),
		console: newConsole(in, out),
		logger:  logger,
	}
}

// Run shows screens until the user quits, the input ends or ctx is done
func (a *App) Run(ctx context.Context) error {
	a.guard.Start()
	defer a.guard.Stop()

	a.console.muted.Fprintln(a.console.out, "Loading...")
	if state := a.client.Session().Refresh(ctx); state.Err != nil {
		a.logger.Warn("failed to load session", "error", state.Err)
	}

	for ctx.Err() == nil {
		var err error
		switch a.router.Current() {
		case guard.RouteSignIn:
			err = a.signInScreen(ctx)
		case guard.RouteSignUp:
			err = a.signUpScreen(ctx)
		default:
			err = a.profileScreen(ctx)
		}

		switch {
		case errors.Is(err, errQuit), errors.Is(err, errInputClosed):
			return nil
		case err != nil:
			return err
		}
	}
	return nil
}

func (a *App) signInScreen(ctx context.Context) error {
	a.console.heading("Sign In")
	choice, err := a.console.choose("Sign in", "Create an account", "Quit")
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		a.router.Replace(guard.RouteSignUp)
		return nil
	case 2:
		return errQuit
	}

	form := forms.NewSignInForm(a.client, a.console)
	if form.Email, err = a.console.ask("Email"); err != nil {
		return err
	}
	if form.Password, err = a.console.askPassword("Password"); err != nil {
		return err
	}

	// Failures were already shown to the user
	if err := form.Submit(ctx); err != nil {
		a.logger.Debug("sign in failed", "error", err)
	}
	return nil
}

func (a *App) signUpScreen(ctx context.Context) error {
	a.console.heading("Create Account")
	choice, err := a.console.choose("Sign up", "Back to sign in", "Quit")
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		a.router.Replace(guard.RouteSignIn)
		return nil
	case 2:
		return errQuit
	}

	form := forms.NewSignUpForm(a.client, a.console)
	if form.Name, err = a.console.ask("Name"); err != nil {
		return err
	}
	if form.Email, err = a.console.ask("Email"); err != nil {
		return err
	}
	if form.Password, err = a.console.askPassword("Password"); err != nil {
		return err
	}

	if err := form.Submit(ctx); err != nil {
		a.logger.Debug("sign up failed", "error", err)
	}
	return nil
}

func (a *App) profileScreen(ctx context.Context) error {
	state := a.client.Session().State()
	if state.Pending || !state.SignedIn() {
		// The guard moves us once the session resolves
		a.console.muted.Fprintln(a.console.out, "Loading...")
		a.client.Session().Refresh(ctx)
		return nil
	}

	session := state.Session
	a.console.heading("Profile")
	a.console.printf("Name:            %s\n", session.User.Name)
	a.console.printf("Email:           %s\n", session.User.Email)
	a.console.printf("User ID:         %s\n", session.User.ID)
	a.console.printf("Session expires: %s\n", formatExpiry(session.ExpiresAt))

	choice, err := a.console.choose("Sign Out", "Delete Account", "Refresh", "Quit")
	if err != nil {
		return err
	}

	switch choice {
	case 0:
		if err := a.client.SignOut(ctx); err != nil {
			a.console.Alert("Sign Out Failed", alertMessage(err))
		}
	case 1:
		return a.deleteAccount(ctx)
	case 2:
		a.client.Session().Refresh(ctx)
	case 3:
		return errQuit
	}
	return nil
}

// deleteAccount runs the delete flow until it is cancelled or succeeds
func (a *App) deleteAccount(ctx context.Context) error {
	flow := forms.NewDeleteAccountFlow(a.client, a.console)
	flow.Press()

	for {
		if _, ok := flow.State().(forms.PasswordEntry); !ok {
			return nil
		}

		password, err := a.console.askPassword("Password")
		if err != nil {
			flow.Cancel()
			return err
		}
		flow.SetPassword(password)

		choice, err := a.console.choose(a.console.danger.Sprint("Delete my account"), "Cancel")
		if err != nil {
			flow.Cancel()
			return err
		}
		if choice == 1 {
			flow.Cancel()
			return nil
		}

		if err := flow.Confirm(ctx); err != nil {
			a.logger.Debug("delete account failed", "error", err)
		}
	}
}

func alertMessage(err error) string {
	if msg := authclient.Message(err); msg != "" {
		return msg
	}
	return forms.MsgFallback
}

// formatExpiry renders a session expiry in local time
func formatExpiry(t *time.Time) string {
	if t == nil {
		return noExpiry
	}
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}
