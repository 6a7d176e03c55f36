package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/authstarter/internal/apipaths"
	"github.com/authstarter/internal/constants"
)

// Client talks to the auth server. Session cookies are kept in its jar, so a
// single Client represents one signed-in (or signed-out) user.
type Client struct {
	baseURL    string
	authPath   string
	httpClient *http.Client
	store      *SessionStore
}

// Option configures a Client
type Option func(*Client)

// WithAuthPath overrides the prefix the auth handler is mounted under
func WithAuthPath(path string) Option {
	return func(c *Client) {
		c.authPath = strings.TrimRight(path, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client. A client without a
// cookie jar cannot hold a session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		authPath: constants.AuthAPIPath,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: constants.HTTPClientTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = NewSessionStore(c.GetSession)

	return c, nil
}

// Session returns the store backing this client's session state
func (c *Client) Session() *SessionStore {
	return c.store
}

// User is the account as returned by the server
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         *string   `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Session is the signed-in user plus when their session ends.
// ExpiresAt is nil when the server did not report one.
type Session struct {
	ID        string
	User      User
	ExpiresAt *time.Time
}

type meResponse struct {
	User    User `json:"user"`
	Session *struct {
		ID        string    `json:"id"`
		ExpiresAt time.Time `json:"expiresAt"`
	} `json:"session"`
}

// SignIn signs in with email and password
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	body := map[string]string{"user": email, "passwd": password}
	if err := c.post(ctx, apipaths.AuthSignIn(c.authPath), body, nil); err != nil {
		return err
	}
	c.store.Refresh(ctx)
	return nil
}

// SignUp creates an account. The server signs the new user in.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var resp struct {
		User User `json:"user"`
	}
	if err := c.post(ctx, apipaths.AuthSignUp(c.authPath), body, &resp); err != nil {
		return nil, err
	}
	c.store.Refresh(ctx)
	return &resp.User, nil
}

// SignOut ends the current session
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, apipaths.AuthSignOut(c.authPath), nil, nil); err != nil {
		return err
	}
	c.store.Refresh(ctx)
	return nil
}

// DeleteUser deletes the signed-in account after re-checking its password
func (c *Client) DeleteUser(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	if err := c.post(ctx, apipaths.DeleteAccount, body, nil); err != nil {
		return err
	}
	c.store.Refresh(ctx)
	return nil
}

// GetSession returns the current session, or nil when signed out
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	var resp meResponse
	err := c.do(ctx, http.MethodGet, apipaths.Me, nil, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, nil
		}
		return nil, err
	}

	session := &Session{User: resp.User}
	if resp.Session != nil {
		session.ID = resp.Session.ID
		if !resp.Session.ExpiresAt.IsZero() {
			expiresAt := resp.Session.ExpiresAt
			session.ExpiresAt = &expiresAt
		}
	}
	return session, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// do sends a request and decodes a 2xx JSON body into out, if given.
// Any other status becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
