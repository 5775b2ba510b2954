package client

import (
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tathya/tathya-cli/pkg/credentials"
	"github.com/tathya/tathya-cli/pkg/logger"
)

const userAgent = "Tathya-CLI/0.1.0"

// Options configures an HTTP client
type Options struct {
	BaseURL string
	Timeout time.Duration
	Session *credentials.Credentials
}

// Client wraps a resty client with a swappable bearer session
type Client struct {
	http *resty.Client

	mu      sync.RWMutex
	session *credentials.Credentials
}

// New creates an HTTP client bound to a session. The session may be nil.
func New(opts Options) *Client {
	c := &Client{
		http:    resty.New(),
		session: opts.Session,
	}

	c.http.SetBaseURL(opts.BaseURL)
	if opts.Timeout > 0 {
		c.http.SetTimeout(opts.Timeout)
	}
	c.http.SetHeader("User-Agent", userAgent)
	c.http.SetHeader("Accept", "application/json")

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)

		if token := c.Token(); token != "" {
			req.SetAuthToken(token)
		}
		return nil
	})

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})

	return c
}

// R starts a new request
func (c *Client) R() *resty.Request {
	return c.http.R()
}

// Resty exposes the underlying client
func (c *Client) Resty() *resty.Client {
	return c.http
}

// Session returns the current session, nil when logged out
func (c *Client) Session() *credentials.Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the session used for the Authorization header
func (c *Client) SetSession(creds *credentials.Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = creds
}

// ClearSession drops the bearer token
func (c *Client) ClearSession() {
	c.SetSession(nil)
}

// Token returns the bearer token or ""
func (c *Client) Token() string {
	s := c.Session()
	if s == nil {
		return ""
	}
	return s.AccessToken
}
