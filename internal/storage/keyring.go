package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// KeyringServiceName identifies our namespace in the OS credential store.
const KeyringServiceName = "vip"

// keyringPasswordEnv enables the encrypted-file fallback when set.
const keyringPasswordEnv = "VIP_KEYRING_PASSWORD"

// KeyringStore keeps values in the OS keychain / credential manager.
type KeyringStore struct {
	mu   sync.Mutex
	ring keyring.Keyring
}

// NewKeyringStore opens the native credential store for the current OS.
// When VIP_KEYRING_PASSWORD is set an encrypted file keyring under dir is
// allowed as a last resort (headless Linux hosts).
func NewKeyringStore(dir string) (*KeyringStore, error) {
	cfg := keyring.Config{
		ServiceName:     KeyringServiceName,
		AllowedBackends: nativeBackends(),
		PassPrefix:      KeyringServiceName,
		KWalletAppID:    KeyringServiceName,
		KWalletFolder:   KeyringServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = KeyringServiceName
	}

	if pw := os.Getenv(keyringPasswordEnv); pw != "" && dir != "" {
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.FileBackend)
		cfg.FileDir = dir
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// NewKeyringStoreWithRing wraps an already opened keyring.
// This is useful for testing with keyring.NewArrayKeyring.
func NewKeyringStoreWithRing(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func nativeBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		}
	}
}

func (k *KeyringStore) Get(ctx context.Context, key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.get(key)
}

func (k *KeyringStore) get(key string) (string, error) {
	it, err := k.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

func (k *KeyringStore) Set(ctx context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ring.Set(item(key, value))
}

func item(key, value string) keyring.Item {
	return keyring.Item{Key: key, Data: []byte(value), Label: KeyringServiceName + " " + key}
}

// SetMany writes the pairs one by one and restores the previous values
// if any write fails.
func (k *KeyringStore) SetMany(ctx context.Context, values map[string]string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	previous := make(map[string]string, len(values))
	for key := range values {
		if v, err := k.get(key); err == nil {
			previous[key] = v
		}
	}

	written := make([]string, 0, len(values))
	for key, v := range values {
		if err := k.ring.Set(item(key, v)); err != nil {
			k.restore(written, previous)
			return err
		}
		written = append(written, key)
	}
	return nil
}

func (k *KeyringStore) restore(keys []string, previous map[string]string) {
	for _, key := range keys {
		if v, ok := previous[key]; ok {
			_ = k.ring.Set(item(key, v))
		} else {
			_ = k.ring.Remove(key)
		}
	}
}

func (k *KeyringStore) Delete(ctx context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var errs []error
	for _, key := range keys {
		err := k.ring.Remove(key)
		if err == nil || errors.Is(err, keyring.ErrKeyNotFound) {
			continue
		}
		// not every backend maps a missing item to ErrKeyNotFound
		if _, getErr := k.get(key); errors.Is(getErr, ErrNotFound) {
			continue
		}
		errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
	}
	return errors.Join(errs...)
}
