package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL  = "https://connectapi.garmin.com"
	DefaultTokenURL = "https://connectapi.garmin.com/oauth-service/oauth/token"
	DefaultClientID = "GarminConnectMobile"
	TokenFile       = "tokens.json"
)

var (
	// ErrNotAuthenticated is returned by every API call made before a session token is set
	ErrNotAuthenticated = errors.New("garmin: not authenticated")
	// ErrMissingCredentials is returned when no saved token exists and no email/password was given
	ErrMissingCredentials = errors.New("garmin: email and password are required")
)

// Client represents a Garmin Connect API client
type Client struct {
	baseURL  string
	tokenURL string
	clientID string
	tokenDir string
	base     http.RoundTripper
	timeout  time.Duration

	mu    sync.Mutex
	token *oauth2.Token
	http  *http.Client
}

type Option func(*Client)

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw != "" {
			c.baseURL = raw
		}
	}
}

func WithTokenURL(raw string) Option {
	return func(c *Client) {
		if raw != "" {
			c.tokenURL = raw
		}
	}
}

func WithClientID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.clientID = id
		}
	}
}

// WithTokenDir sets where the session token is persisted. Empty disables persistence.
func WithTokenDir(dir string) Option {
	return func(c *Client) { c.tokenDir = dir }
}

// WithTransport sets the base transport under the auth layer (e.g. an httpcache transport)
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a new Garmin client. It is unauthenticated until Authenticate or SetToken is called.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
		clientID: DefaultClientID,
		timeout:  30 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: c.clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (c *Client) tokenPath() string {
	if c.tokenDir == "" {
		return ""
	}
	return filepath.Join(c.tokenDir, TokenFile)
}

// LoadToken loads the saved session token from the token directory
func (c *Client) LoadToken() (*oauth2.Token, error) {
	path := c.tokenPath()
	if path == "" {
		return nil, os.ErrNotExist
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t oauth2.Token
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &t, nil
}

// SaveToken persists the session token to the token directory
func (c *Client) SaveToken(t *oauth2.Token) error {
	path := c.tokenPath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(c.tokenDir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Authenticate resumes a saved session if its token is still valid, otherwise
// logs in with email and password and saves the new token.
func (c *Client) Authenticate(ctx context.Context, email, password string) error {
	if tok, err := c.LoadToken(); err == nil && tok.Valid() {
		c.SetToken(tok)
		return nil
	}

	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: c.timeout, Transport: c.base})
	tok, err := c.oauthConfig().PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return fmt.Errorf("garmin login: %w", err)
	}
	if err := c.SaveToken(tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	c.SetToken(tok)
	return nil
}

// SetToken installs a session token. Refreshed tokens are written back to the token directory.
func (c *Client) SetToken(tok *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	base := c.base
	if base == nil {
		base = http.DefaultTransport
	}
	src := &savingSource{
		src:    c.oauthConfig().TokenSource(context.Background(), tok),
		save:   c.SaveToken,
		access: tok.AccessToken,
	}
	c.token = tok
	c.http = &http.Client{
		Timeout:   c.timeout,
		Transport: &oauth2.Transport{Source: src, Base: base},
	}
}

// Authenticated reports whether a session token is present
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != nil
}

func (c *Client) httpClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http == nil {
		return nil, ErrNotAuthenticated
	}
	return c.http, nil
}

// savingSource persists the token whenever the underlying source refreshes it
type savingSource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	save   func(*oauth2.Token) error
	access string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.AccessToken != s.access {
		s.access = t.AccessToken
		_ = s.save(t)
	}
	return t, nil
}
