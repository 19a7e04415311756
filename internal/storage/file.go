package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vip-mudancas/vip-cli/internal/logging"
)

// ErrCorrupt is returned by Get when the backing file cannot be decoded.
var ErrCorrupt = errors.New("storage: unreadable session file")

// FileStore keeps all values in a single JSON document on disk.
// Every mutation rewrites the whole file, so batches are applied together.
//
// An undecodable file reads as an error but never blocks a write: SetMany
// and Delete discard it and start from an empty document.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore creates a file store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, logger: logging.Discard()}
}

// WithLogger sets the logger used to report a discarded file.
func (f *FileStore) WithLogger(l *slog.Logger) *FileStore {
	if l != nil {
		f.logger = l
	}
	return f
}

// Path returns the location of the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Get returns the value stored under key.
func (f *FileStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (f *FileStore) Set(ctx context.Context, key, value string) error {
	return f.SetMany(ctx, map[string]string{key: value})
}

// SetMany stores every pair with a single write.
func (f *FileStore) SetMany(ctx context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.loadForWrite()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return f.save(current)
}

// Delete removes keys. The file is removed once it holds nothing.
func (f *FileStore) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.loadForWrite()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(current, k)
	}
	if len(current) == 0 {
		err := os.Remove(f.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return f.save(current)
}

// load reads the document. A missing file is an empty document.
func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return values, nil
}

// loadForWrite is load with a corrupt document replaced by an empty one.
func (f *FileStore) loadForWrite() (map[string]string, error) {
	values, err := f.load()
	if errors.Is(err, ErrCorrupt) {
		f.logger.Warn("discarding unreadable session file",
			slog.String("path", f.path),
			slog.String("error", err.Error()))
		return map[string]string{}, nil
	}
	return values, err
}

// save writes the document through a temp file so readers never see a partial write.
func (f *FileStore) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
