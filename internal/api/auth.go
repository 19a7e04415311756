package api

import (
	"context"
	"fmt"
	"strconv"
)

// User is the profile record returned by the backend. It is kept as-is so
// that persisting and reloading it never drops fields.
type User map[string]any

// String returns the field as a string, formatting numbers when needed.
func (u User) String(field string) string {
	switch v := u[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (u User) ID() string    { return u.String("id") }
func (u User) Name() string  { return u.String("name") }
func (u User) Email() string { return u.String("email") }
func (u User) CPF() string   { return u.String("cpf") }
func (u User) Role() string  { return u.String("role") }

// Ack is the acknowledgement body most mutating endpoints return.
type Ack struct {
	Message string `json:"message"`
}

// LoginRequest represents the request body for POST /auth/login
type LoginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

// LoginResponse represents the response from POST /auth/login
type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// RegisterRequest represents the request body for POST /auth/register
type RegisterRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// RegisterResponse represents the response from POST /auth/register
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// MeResponse represents the response from GET /auth/me
type MeResponse struct {
	User User `json:"user"`
}

// ChangePasswordRequest represents the request body for POST /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login exchanges credentials for a token. A 401 here means the credentials
// were rejected, so it is not reported as an authentication failure.
func (c *Client) Login(ctx context.Context, cpf, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := &LoginRequest{CPF: cpf, Password: password}
	if err := c.Post(withQuietUnauthorized(ctx), "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new user account. Role defaults to "user".
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req.Role == "" {
		req.Role = "user"
	}
	var resp RegisterResponse
	if err := c.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the profile of the token's owner
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.Get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the backend that the session ended. The caller is
// already ending the session, so a 401 is not reported as a failure event.
func (c *Client) Logout(ctx context.Context) (*Ack, error) {
	var resp Ack
	if err := c.Post(withQuietUnauthorized(ctx), "/auth/logout", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword changes the password of the current user
func (c *Client) ChangePassword(ctx context.Context, current, next string) (*Ack, error) {
	var resp Ack
	req := &ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	if err := c.Post(ctx, "/auth/change-password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse represents the response from GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health checks backend liveness. No authentication required.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.Get(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
