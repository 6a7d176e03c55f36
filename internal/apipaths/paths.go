package apipaths

import "github.com/authstarter/internal/constants"

// Single API surface paths. Used by routes and by the auth client.

const (
	Health        = "/health"
	Me            = "/api/me"
	DeleteAccount = "/api/delete-account"
)

// Paths below are relative to the auth prefix (AUTH_API_PATH), as seen by the auth handler
const (
	SignUpEmail = "/sign-up/email"
	SignInEmail = "/" + constants.DirectProviderName + "/login"
	SignOut     = "/logout"
)

func AuthSignUp(prefix string) string { return prefix + SignUpEmail }
func AuthSignIn(prefix string) string { return prefix + SignInEmail }
func AuthSignOut(prefix string) string { return prefix + SignOut }
