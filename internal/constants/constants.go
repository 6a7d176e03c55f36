package constants

import "time"

// Shared between server and client
const (
	// AuthAPIPath is where the auth handler is mounted
	AuthAPIPath = "/api/auth"

	// DefaultServerPort is the port the server listens on when SERVER_ADDRESS is unset
	DefaultServerPort = 3000

	// DirectProviderName is the go-pkgz/auth direct provider used for email/password login
	DirectProviderName = "email"
)

// Password policy
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxNameLength     = 200
)

// JWT user attributes written by the claims updater
const (
	ClaimAttrUserID    = "uid"
	ClaimAttrSessionID = "sid"
)

// Timeout and interval constants
const (
	// HTTPClientTimeout bounds every request made by the auth client
	HTTPClientTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful server shutdown
	ShutdownTimeout = 30 * time.Second
)

// ContextKeySession is the gin context key holding the resolved *domain.SessionView
const ContextKeySession = "session"
