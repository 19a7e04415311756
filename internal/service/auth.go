package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vip-mudancas/vip-cli/internal/api"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
	"github.com/vip-mudancas/vip-cli/internal/session"
)

// authService implements iface.AuthService
type authService struct {
	store  *session.Store
	client *api.Client
}

// NewAuthService creates a new authentication service
func NewAuthService(store *session.Store, client *api.Client) iface.AuthService {
	return &authService{
		store:  store,
		client: client,
	}
}

// Login exchanges credentials for a session and stores it
func (s *authService) Login(ctx context.Context, cpf, password string) error {
	cpf = NormalizeCPF(cpf)
	if cpf == "" || password == "" {
		return fmt.Errorf("CPF and password are required")
	}
	return s.store.Login(ctx, cpf, password)
}

// Logout ends the session locally and notifies the backend when possible.
// Leftover records are cleared even when no session was held, in which
// case ErrNotLoggedIn is returned afterwards.
func (s *authService) Logout(ctx context.Context) error {
	wasLoggedIn := s.store.IsAuthenticated()
	if err := s.store.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	if !wasLoggedIn {
		return iface.ErrNotLoggedIn
	}
	return nil
}

// IsLoggedIn reports whether a token and profile are held.
// This only checks that they exist, not that the backend still accepts them.
func (s *authService) IsLoggedIn() bool {
	return s.store.IsAuthenticated()
}

// Session returns a snapshot of the held session
func (s *authService) Session() session.Session {
	return s.store.Snapshot()
}

// CurrentUser returns the profile, optionally refreshed from the API
func (s *authService) CurrentUser(ctx context.Context, refresh bool) (api.User, error) {
	if err := s.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if !refresh {
		return s.store.User(), nil
	}

	if u := s.store.GetCurrentUser(ctx); u != nil {
		return u, nil
	}
	if !s.store.IsAuthenticated() {
		return nil, iface.ErrSessionExpired
	}
	return s.store.User(), iface.ErrStaleProfile
}

// UpdateProfile replaces the locally stored profile
func (s *authService) UpdateProfile(ctx context.Context, user api.User) error {
	if err := s.EnsureAuthenticated(ctx); err != nil {
		return err
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Register creates a user account
func (s *authService) Register(ctx context.Context, input *iface.RegisterInput) (*api.RegisterResponse, error) {
	req := &api.RegisterRequest{
		CPF:      NormalizeCPF(input.CPF),
		Password: input.Password,
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Role:     input.Role,
	}
	if req.CPF == "" || req.Password == "" || req.Name == "" {
		return nil, fmt.Errorf("CPF, password and name are required")
	}
	if !ValidCPF(req.CPF) {
		return nil, fmt.Errorf("invalid CPF %q: expected 11 digits", input.CPF)
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return resp, nil
}

// ChangePassword changes the logged-in user's password
func (s *authService) ChangePassword(ctx context.Context, current, next string) error {
	if err := s.EnsureAuthenticated(ctx); err != nil {
		return err
	}
	if _, err := s.client.ChangePassword(ctx, current, next); err != nil {
		// the 401 has already cleared the session; keep the backend's reason
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.IsUnauthorized() {
			if apiErr.FromBackend {
				return fmt.Errorf("%s: %w", apiErr.Message, iface.ErrSessionExpired)
			}
			return iface.ErrSessionExpired
		}
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// Health checks whether the API is up
func (s *authService) Health(ctx context.Context) (*api.HealthResponse, error) {
	return s.client.Health(ctx)
}

// EnsureAuthenticated returns ErrNotLoggedIn when no session is held
func (s *authService) EnsureAuthenticated(ctx context.Context) error {
	if !s.store.IsAuthenticated() {
		return iface.ErrNotLoggedIn
	}
	return nil
}

// NormalizeCPF strips the punctuation of a formatted CPF ("123.456.789-09").
func NormalizeCPF(cpf string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cpf)
}

// ValidCPF applies the backend's format check: 11 digits, not all equal.
func ValidCPF(cpf string) bool {
	cpf = NormalizeCPF(cpf)
	if len(cpf) != 11 {
		return false
	}
	return strings.Count(cpf, cpf[:1]) != len(cpf)
}
