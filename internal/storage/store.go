// Package storage provides the durable key-value stores that hold the
// persisted session record (the bearer token and the serialized user profile).
//
// Several backends are available: a private JSON file, the OS keychain,
// a Redis server and an in-process map. All of them satisfy Store and can be
// swapped through configuration.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Keys of the persisted session record.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// SetMany stores every pair. Implementations either write all pairs
	// or leave the previous values in place.
	SetMany(ctx context.Context, values map[string]string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendRedis   = "redis"
	BackendMemory  = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// FilePath is the session file used by the file backend.
	FilePath string

	// KeyringDir is where the file-based keyring fallback keeps its data.
	KeyringDir string

	Redis RedisConfig

	// Logger receives storage warnings. Nil discards them.
	Logger *slog.Logger
}

// Open returns the store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.FilePath == "" {
			return nil, fmt.Errorf("storage: file backend requires a path")
		}
		return NewFileStore(opts.FilePath).WithLogger(opts.Logger), nil
	case BackendKeyring:
		return NewKeyringStore(opts.KeyringDir)
	case BackendRedis:
		return NewRedisStore(opts.Redis)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}

// TokenSource reads the persisted bearer token on every call.
type TokenSource struct {
	store Store
}

// NewTokenSource adapts store into a token source for the API client.
func NewTokenSource(store Store) *TokenSource {
	return &TokenSource{store: store}
}

// Token returns the persisted token, or "" when none is stored.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	v, err := t.store.Get(ctx, KeyToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
