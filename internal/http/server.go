package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pkgz/auth"
	"github.com/go-pkgz/auth/avatar"
	authlog "github.com/go-pkgz/auth/logger"
	"github.com/go-pkgz/auth/provider"
	"github.com/go-pkgz/auth/token"

	"github.com/authstarter/internal/config"
	"github.com/authstarter/internal/constants"
	"github.com/authstarter/internal/domain"
)

// Server wraps the HTTP server
type Server struct {
	config      *config.Config
	accounts    domain.AccountService
	engine      *gin.Engine
	authService *auth.Service
	logger      *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, accounts domain.AccountService, logger *slog.Logger) *Server {
	// Set Gin mode based on environment
	switch cfg.Environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	_ = engine.SetTrustedProxies(nil)

	// Middleware - order matters
	engine.Use(securityHeadersMiddleware())
	engine.Use(corsMiddleware(cfg))
	engine.Use(cacheControlMiddleware(cfg.Auth.APIPath))
	engine.Use(loggerMiddleware(logger))
	engine.Use(jsonBodyLimitMiddleware(maxBodySize))

	server := &Server{
		config:   cfg,
		accounts: accounts,
		engine:   engine,
		logger:   logger,
	}
	server.authService = server.initAuthService()

	// Setup routes
	server.setupRoutes()

	return server
}

// initAuthService initializes go-pkgz/auth with an email/password direct provider.
// Every token carries the user and session IDs; see claimsUpdater.
func (s *Server) initAuthService() *auth.Service {
	cfg := s.config

	opts := auth.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return cfg.Auth.Secret, nil
		}),
		TokenDuration:  cfg.Auth.TokenTTL,
		CookieDuration: cfg.Auth.SessionTTL,
		Issuer:         cfg.Auth.Issuer,
		URL:            cfg.Auth.BaseURL + cfg.Auth.APIPath,
		AvatarStore:    avatar.NewNoOp(), // No avatar storage
		SecureCookies:  cfg.Auth.SecureCookie,
		SameSiteCookie: http.SameSiteLaxMode,
		DisableXSRF:    true, // Disable for API usage; native clients cannot read the XSRF cookie
		ClaimsUpd:      token.ClaimsUpdFunc(s.claimsUpdater),
		Validator: token.ValidatorFunc(func(_ string, claims token.Claims) bool {
			// Reject tokens this server did not bind to a session
			if claims.User == nil {
				s.logger.Warn("JWT validation failed: no user in claims")
				return false
			}
			if claims.User.StrAttr(constants.ClaimAttrSessionID) == "" {
				s.logger.Warn("JWT validation failed: no session in claims", "user", claims.User.Name)
				return false
			}
			return true
		}),
		Logger: authlog.Func(func(format string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(format, args...), "component", "go-pkgz/auth")
		}),
	}

	authService := auth.NewService(opts)

	// Email/password login backed by the users table
	authService.AddDirectProvider(constants.DirectProviderName, provider.CredCheckerFunc(func(user, password string) (bool, error) {
		return s.accounts.CheckCredentials(context.Background(), user, password)
	}))

	return authService
}

// claimsUpdater runs whenever go-pkgz/auth mints a token. A token without a
// session ID comes from a fresh login, so a session row is opened for it.
// Refreshed tokens keep their session ID untouched.
func (s *Server) claimsUpdater(claims token.Claims) token.Claims {
	if claims.User == nil || claims.Handshake != nil {
		return claims
	}
	if claims.User.StrAttr(constants.ClaimAttrSessionID) != "" {
		return claims
	}

	view, err := s.accounts.OpenSession(context.Background(), claims.User.Name, domain.ClientInfo{})
	if err != nil {
		// Leaving the claims unbound makes the validator reject the token
		s.logger.Error("failed to open session for login", "user", claims.User.Name, "error", err)
		return claims
	}

	bindSession(claims.User, view)
	return claims
}

// bindSession writes the user and session identity into token user attributes
func bindSession(u *token.User, view *domain.SessionView) {
	u.Name = view.User.Name
	u.Email = view.User.Email
	u.SetStrAttr(constants.ClaimAttrUserID, view.User.ID)
	u.SetStrAttr(constants.ClaimAttrSessionID, view.Session.ID)
}

const (
	maxBodySize  = 1 << 20          // 1MB max request body
	readTimeout  = 30 * time.Second // 30s for reading request
	writeTimeout = 30 * time.Second
	idleTimeout  = 120 * time.Second // 2 minutes idle
)

// Handler exposes the engine, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server and shuts it down gracefully when ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.ServerAddress
	if addr == "" {
		addr = fmt.Sprintf(":%d", constants.DefaultServerPort)
	}

	// Configure server with timeouts
	server := &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", constants.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
