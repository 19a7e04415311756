// Package iface defines service interfaces for the vip CLI.
// These interfaces enable dependency injection and mocking for tests.
package iface

import (
	"context"
	"errors"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/session"
)

var (
	// ErrNotLoggedIn is returned by operations that need a session when none is held
	ErrNotLoggedIn = errors.New("not logged in. Please run 'vip login' first")

	// ErrSessionExpired is returned when the backend rejected the held session
	ErrSessionExpired = errors.New("session expired. Please run 'vip login' again")

	// ErrStaleProfile accompanies the cached profile when a refresh failed
	ErrStaleProfile = errors.New("could not refresh the profile from the API; showing the cached copy")
)

// RegisterInput represents the input for creating a user account
type RegisterInput struct {
	CPF      string
	Password string
	Name     string
	Email    string
	Role     string
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login exchanges credentials for a session and stores it
	Login(ctx context.Context, cpf, password string) error

	// Logout ends the session locally and notifies the backend when possible
	Logout(ctx context.Context) error

	// IsLoggedIn reports whether a token and profile are held
	IsLoggedIn() bool

	// Session returns a snapshot of the held session
	Session() session.Session

	// CurrentUser returns the profile. With refresh it is fetched from the API first.
	CurrentUser(ctx context.Context, refresh bool) (api.User, error)

	// UpdateProfile replaces the locally stored profile
	UpdateProfile(ctx context.Context, user api.User) error

	// Register creates a user account
	Register(ctx context.Context, input *RegisterInput) (*api.RegisterResponse, error)

	// ChangePassword changes the logged-in user's password
	ChangePassword(ctx context.Context, current, next string) error

	// Health checks whether the API is up
	Health(ctx context.Context) (*api.HealthResponse, error)

	// EnsureAuthenticated returns ErrNotLoggedIn when no session is held
	EnsureAuthenticated(ctx context.Context) error
}
