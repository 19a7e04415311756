// Package api provides HTTP client for communicating with the VIP Mudanças API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vip-mudancas/vip-cli/internal/logging"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token at dispatch time.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// RequestInterceptor runs on every outgoing request before transmission.
type RequestInterceptor func(req *http.Request) error

// AuthFailure describes a request the backend answered with 401.
type AuthFailure struct {
	Method    string
	Path      string
	Token     string // bearer token the request carried, "" if none
	RequestID string
}

// AuthFailureFunc receives authentication-failure events.
type AuthFailureFunc func(ctx context.Context, f AuthFailure)

// Client is an HTTP client for the VIP Mudanças API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string
	logger     *slog.Logger

	interceptors []RequestInterceptor

	mu          sync.RWMutex
	authFailure []AuthFailureFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets where the bearer token is read from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRequestInterceptor appends an outgoing-request hook.
func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, fn) }
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: "vip-cli",
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnAuthFailure subscribes fn to authentication-failure events.
// The client itself never clears credentials; subscribers decide what a
// 401 means for the session.
func (c *Client) OnAuthFailure(fn AuthFailureFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authFailure = append(c.authFailure, fn)
}

func (c *Client) emitAuthFailure(ctx context.Context, f AuthFailure) {
	c.mu.RLock()
	subs := append([]AuthFailureFunc(nil), c.authFailure...)
	c.mu.RUnlock()

	for _, fn := range subs {
		fn(ctx, f)
	}
}

type quietUnauthorizedKey struct{}

// withQuietUnauthorized marks a request whose 401 does not mean the held
// session expired: a login with rejected credentials, or the logout
// notification of a session that is being cleared anyway.
func withQuietUnauthorized(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietUnauthorizedKey{}, true)
}

func isQuietUnauthorized(ctx context.Context) bool {
	v, _ := ctx.Value(quietUnauthorizedKey{}).(bool)
	return v
}

// Request performs an HTTP request to the API
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	return c.do(ctx, method, path, nil, body, result)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	token, err := c.intercept(req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", req.Header.Get(RequestIDHeader)),
			slog.String("error", logging.Mask(err.Error())))
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized && !isQuietUnauthorized(ctx) {
		c.emitAuthFailure(ctx, AuthFailure{
			Method:    method,
			Path:      path,
			Token:     token,
			RequestID: req.Header.Get(RequestIDHeader),
		})
	}

	// Read response body
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error status codes
	if resp.StatusCode >= 400 {
		return newAPIError(resp.StatusCode, respBody)
	}

	// Parse response if result is provided
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// intercept runs the built-in interceptors followed by the configured ones.
// It returns the bearer token attached to req.
func (c *Client) intercept(req *http.Request) (string, error) {
	req.Header.Set(RequestIDHeader, uuid.NewString())

	var token string
	if c.tokens != nil {
		t, err := c.tokens.Token(req.Context())
		if err != nil {
			// an unreadable store is treated as "no token"
			c.logger.Warn("failed to read token", slog.String("error", err.Error()))
		} else if t != "" {
			token = t
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	for _, fn := range c.interceptors {
		if err := fn(req); err != nil {
			return "", fmt.Errorf("request interceptor: %w", err)
		}
	}
	return token, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, result)
}

// GetWithQuery performs a GET request with query parameters
func (c *Client) GetWithQuery(ctx context.Context, path string, query url.Values, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, result)
}
