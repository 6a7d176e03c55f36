package http

// Authentication is handled by go-pkgz/auth with an email/password direct provider.
// Auth endpoints, relative to AUTH_API_PATH:
//   - POST /sign-up/email  - Create an account and sign in
//   - POST /email/login    - Sign in ({"user": email, "passwd": password})
//   - GET  /logout         - Revoke the session and clear cookies
//   - GET  /user           - Token user info
//
// Protected routes resolve the session named by the token on every request,
// so revoking a session row signs the holder out immediately.

import (
	"crypto/sha1"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-pkgz/auth/token"
	"github.com/golang-jwt/jwt"

	"github.com/authstarter/internal/apipaths"
	"github.com/authstarter/internal/constants"
	"github.com/authstarter/internal/domain"
)

// authRouter serves everything under the auth prefix. Sign-up and sign-out
// need the account service; the rest goes to go-pkgz/auth unchanged.
func (s *Server) authRouter(prefix string) gin.HandlerFunc {
	authHandler, _ := s.authService.Handlers()
	delegate := wrapAuthHandler(authHandler, prefix)

	return func(c *gin.Context) {
		path := c.Param("path")

		switch {
		case path == apipaths.SignUpEmail && c.Request.Method == http.MethodPost:
			s.signUp(c)
			return
		case strings.HasSuffix(path, apipaths.SignOut):
			s.revokeRequestSession(c)
		}

		delegate(c)
	}
}

// wrapAuthHandler wraps an http.Handler for use with Gin, stripping the prefix
// go-pkgz/auth expects paths relative to where it's mounted
func wrapAuthHandler(handler http.Handler, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Strip the prefix from the URL path for the handler
		originalPath := c.Request.URL.Path
		c.Request.URL.Path = strings.TrimPrefix(originalPath, prefix)

		handler.ServeHTTP(c.Writer, c.Request)

		// Restore original path so the request logger sees it
		c.Request.URL.Path = originalPath
	}
}

// signUp creates the account, opens a session and sets the auth cookie
func (s *Server) signUp(c *gin.Context) {
	var req domain.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	view, err := s.accounts.SignUp(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		respondError(c, statusForError(err), err)
		return
	}

	// Same user shape the direct provider issues on login
	claims := token.Claims{
		User: &token.User{
			ID: constants.DirectProviderName + "_" + token.HashID(sha1.New(), view.User.Email),
		},
		StandardClaims: jwt.StandardClaims{
			Id:     view.Session.ID,
			Issuer: s.config.Auth.Issuer,
		},
	}
	bindSession(claims.User, view)

	if _, err := s.authService.TokenService().Set(c.Writer, claims); err != nil {
		s.logger.ErrorContext(c.Request.Context(), "failed to issue token after sign up", "user_id", view.User.ID, "error", err)
		// The account exists but the caller is not signed in; drop the orphan session
		_ = s.accounts.RevokeSession(c.Request.Context(), view.Session.ID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": view.User})
}

// revokeRequestSession ends the session named by the request's token, if any.
// go-pkgz/auth then clears the cookies.
func (s *Server) revokeRequestSession(c *gin.Context) {
	claims, _, err := s.authService.TokenService().Get(c.Request)
	if err != nil || claims.User == nil {
		return
	}

	sid := claims.User.StrAttr(constants.ClaimAttrSessionID)
	if err := s.accounts.RevokeSession(c.Request.Context(), sid); err != nil {
		s.logger.WarnContext(c.Request.Context(), "failed to revoke session on logout", "session_id", sid, "error", err)
	}
}

// requireSession returns a Gin middleware that requires a live session.
// The token is checked (and refreshed) by go-pkgz/auth, then the session it
// names is looked up so revoked or expired sessions are refused.
func (s *Server) requireSession() gin.HandlerFunc {
	authMiddleware := s.authService.Middleware()

	return func(c *gin.Context) {
		var userInfo token.User
		var authenticated bool

		// go-pkgz/auth writes a text/plain 401 on failure; capture it so the
		// response stays JSON, but keep any refreshed cookie it sets.
		capture := newHeaderCapture()
		handler := authMiddleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := token.GetUserInfo(r); err == nil {
				userInfo = u
				authenticated = true
			}
			c.Request = r
		}))
		handler.ServeHTTP(capture, c.Request)

		if !authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
			return
		}
		for _, cookie := range capture.header.Values("Set-Cookie") {
			c.Writer.Header().Add("Set-Cookie", cookie)
		}

		view, err := s.accounts.ResolveSession(c.Request.Context(), userInfo.StrAttr(constants.ClaimAttrSessionID))
		if err != nil {
			if domain.IsAuthenticationError(err) {
				// Stale token: tell the client to forget it
				s.authService.TokenService().Reset(c.Writer)
				c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
				return
			}
			s.logger.ErrorContext(c.Request.Context(), "failed to resolve session", "error", err)
			c.AbortWithStatusJSON(statusForError(err), ErrorResponse{Error: domain.PublicMessage(err)})
			return
		}

		c.Set(constants.ContextKeySession, view)
		c.Next()
	}
}

// getSessionFromContext extracts the resolved session from context
func getSessionFromContext(c *gin.Context) (*domain.SessionView, bool) {
	if v, exists := c.Get(constants.ContextKeySession); exists {
		if view, ok := v.(*domain.SessionView); ok {
			return view, true
		}
	}
	return nil, false
}

func clientInfo(c *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// headerCapture is a ResponseWriter that keeps headers and drops the
// status and body. Only a refreshed token cookie is forwarded.
type headerCapture struct {
	header http.Header
}

func newHeaderCapture() *headerCapture {
	return &headerCapture{header: make(http.Header)}
}

func (h *headerCapture) Header() http.Header         { return h.header }
func (h *headerCapture) Write(b []byte) (int, error) { return len(b), nil }
func (h *headerCapture) WriteHeader(int)             {}
