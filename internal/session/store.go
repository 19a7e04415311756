// Package session holds the authentication state shared by every command:
// the bearer token, the user profile, and the one-time loading flag.
//
// A Store is created empty, hydrated once from durable storage by
// Initialize, and mutated only through its operations. After any mutating
// operation completes, the in-memory session and the persisted record agree.
//
// Mutations are serialized: at most one Login, Logout, GetCurrentUser or
// UpdateUser runs at a time. Reads never wait for a pending mutation.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/logging"
	"github.com/vip-mudancas/vip-cli/internal/storage"
)

// DefaultLoginMessage is shown when a failed login carries no backend message.
const DefaultLoginMessage = "Erro ao fazer login"

// DefaultLoginRoute is where an expired session sends the user.
const DefaultLoginRoute = "/login"

// Backend is the part of the API the store talks to.
type Backend interface {
	Login(ctx context.Context, cpf, password string) (*api.LoginResponse, error)
	Me(ctx context.Context) (*api.MeResponse, error)
	Logout(ctx context.Context) (*api.Ack, error)
}

// Session is a snapshot of the authentication state.
type Session struct {
	Token   string
	User    api.User
	Loading bool
}

// IsAuthenticated reports whether both token and user are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && len(s.User) > 0
}

// LoginError is returned by Login when the backend rejects the attempt
// or cannot be reached.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// ExpiredEvent is delivered to OnExpired subscribers after a forced logout.
type ExpiredEvent struct {
	LoginRoute string
	Failure    api.AuthFailure
}

// ExpiredFunc reacts to a forced logout, typically by sending the user to
// the login entry point.
type ExpiredFunc func(ctx context.Context, ev ExpiredEvent)

// Store is the single source of truth for who is logged in.
type Store struct {
	backend    Backend
	storage    storage.Store
	logger     *slog.Logger
	loginRoute string

	// opMu serializes mutating operations.
	opMu sync.Mutex

	mu      sync.RWMutex
	state   Session
	initted sync.Once

	listenersMu sync.Mutex
	nextID      int
	listeners   map[int]func(Session)
	expired     []ExpiredFunc
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithLoginRoute overrides the route reported in ExpiredEvent.
func WithLoginRoute(route string) Option {
	return func(s *Store) {
		if route != "" {
			s.loginRoute = route
		}
	}
}

// NewStore creates an empty store in the loading state.
func NewStore(backend Backend, store storage.Store, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		storage:    store,
		logger:     logging.Discard(),
		loginRoute: DefaultLoginRoute,
		state:      Session{Loading: true},
		listeners:  map[int]func(Session){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize hydrates the session from durable storage. It never calls the
// backend: the persisted copy is trusted until a request proves otherwise.
// Only the first call has any effect.
func (s *Store) Initialize(ctx context.Context) {
	s.initted.Do(func() {
		s.opMu.Lock()
		defer s.opMu.Unlock()

		token, user := s.readPersisted(ctx)

		s.mu.Lock()
		if token != "" && len(user) > 0 {
			s.state.Token = token
			s.state.User = user
		}
		s.state.Loading = false
		s.mu.Unlock()

		s.notify()
	})
}

func (s *Store) readPersisted(ctx context.Context) (string, api.User) {
	token, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to read persisted token", slog.String("error", err.Error()))
		}
		return "", nil
	}

	raw, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to read persisted user", slog.String("error", err.Error()))
		}
		return "", nil
	}

	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("ignoring unreadable persisted user", slog.String("error", err.Error()))
		return "", nil
	}
	return token, user
}

// Login sends the credentials to the backend. On success the token and
// user are persisted together and then published; on failure nothing
// changes and a *LoginError is returned.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	resp, err := s.backend.Login(ctx, identifier, secret)
	if err != nil {
		s.logger.Warn("login failed", slog.String("error", logging.Mask(err.Error())))
		return &LoginError{Message: loginMessage(err), Err: err}
	}
	if resp.AccessToken == "" || len(resp.User) == 0 {
		return &LoginError{Message: DefaultLoginMessage, Err: errors.New("login response missing token or user")}
	}

	rawUser, err := json.Marshal(resp.User)
	if err != nil {
		return &LoginError{Message: DefaultLoginMessage, Err: err}
	}

	if err := s.storage.SetMany(ctx, map[string]string{
		storage.KeyToken: resp.AccessToken,
		storage.KeyUser:  string(rawUser),
	}); err != nil {
		s.logger.Warn("failed to persist session", slog.String("error", err.Error()))
		return &LoginError{Message: DefaultLoginMessage, Err: err}
	}

	s.mu.Lock()
	s.state.Token = resp.AccessToken
	s.state.User = resp.User
	s.mu.Unlock()

	s.notify()
	return nil
}

func loginMessage(err error) string {
	if apiErr, ok := api.AsAPIError(err); ok && apiErr.FromBackend {
		return apiErr.Message
	}
	return DefaultLoginMessage
}

// Logout notifies the backend when a token is held, then clears storage
// and memory whatever the notification's outcome. Only a failure to clear
// durable storage is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.logout(ctx)
}

func (s *Store) logout(ctx context.Context) error {
	if s.Token() != "" {
		if _, err := s.backend.Logout(ctx); err != nil {
			s.logger.Warn("logout notification failed", slog.String("error", logging.Mask(err.Error())))
		}
	}
	return s.clear(ctx)
}

// clear deletes the persisted record and empties memory.
func (s *Store) clear(ctx context.Context) error {
	err := s.storage.Delete(ctx, storage.KeyToken, storage.KeyUser)
	if err != nil {
		s.logger.Warn("failed to clear persisted session", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.state.Token = ""
	s.state.User = nil
	s.mu.Unlock()

	s.notify()
	return err
}

// IsAuthenticated reports whether a token and a user are held.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// GetCurrentUser refreshes the profile from the backend. It returns nil
// without a network call when no token is held, and nil on any failure.
// A 401 logs the session out.
func (s *Store) GetCurrentUser(ctx context.Context) api.User {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.Token() == "" {
		return nil
	}

	resp, err := s.backend.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			if err := s.logout(ctx); err != nil {
				s.logger.Warn("logout after 401 failed", slog.String("error", err.Error()))
			}
			return nil
		}
		s.logger.Warn("failed to fetch current user", slog.String("error", logging.Mask(err.Error())))
		return nil
	}
	if len(resp.User) == 0 {
		s.logger.Warn("current user response has no user")
		return nil
	}

	if err := s.persistUser(ctx, resp.User); err != nil {
		s.logger.Warn("failed to persist current user", slog.String("error", err.Error()))
		return nil
	}
	return resp.User
}

// UpdateUser replaces the profile locally. The token is untouched.
func (s *Store) UpdateUser(ctx context.Context, user api.User) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.persistUser(ctx, user)
}

func (s *Store) persistUser(ctx context.Context, user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.User = user
	s.mu.Unlock()

	s.notify()
	return nil
}

// HandleAuthFailure is the subscriber for the API client's 401 events.
// It clears the session when the failed request carried the token that is
// still current, then tells OnExpired subscribers.
//
// This deliberately narrows "every 401 clears the session": a 401 for a
// token that has since been replaced by a newer login is ignored, so a
// slow request from the old session cannot log the new one out. Requests
// that carried no token still clear.
//
// It takes no operation lock: it may run while Login or GetCurrentUser is
// waiting on the very request that failed.
func (s *Store) HandleAuthFailure(ctx context.Context, f api.AuthFailure) {
	current := s.persistedToken(ctx)
	if f.Token != "" && current != "" && f.Token != current {
		s.logger.Debug("ignoring 401 for a replaced token", slog.String("path", f.Path))
		return
	}

	s.logger.Warn("session rejected by backend",
		slog.String("method", f.Method),
		slog.String("path", f.Path),
		slog.String("request_id", f.RequestID))

	_ = s.clear(ctx)

	ev := ExpiredEvent{LoginRoute: s.loginRoute, Failure: f}
	for _, fn := range s.expiredSubscribers() {
		fn(ctx, ev)
	}
}

func (s *Store) persistedToken(ctx context.Context) string {
	t, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		return s.Token()
	}
	return t
}

// OnExpired subscribes fn to forced logouts.
func (s *Store) OnExpired(fn ExpiredFunc) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.expired = append(s.expired, fn)
}

func (s *Store) expiredSubscribers() []ExpiredFunc {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	return append([]ExpiredFunc(nil), s.expired...)
}

// Subscribe registers fn to receive a snapshot after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()

	s.listenersMu.Lock()
	fns := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the held token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns the held profile, or nil.
func (s *Store) User() api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

// Loading reports whether Initialize has not run yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}
