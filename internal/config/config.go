// Package config provides configuration management for the vip CLI.
// It handles reading and writing settings to the config file and applies
// environment overrides on top of them.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vip-mudancas/vip-cli/internal/storage"
)

const (
	// DefaultAPIURL is the default VIP Mudanças API endpoint
	DefaultAPIURL = "https://vip-mudancas-api.glitch.me/api"

	// DefaultLoginRoute is the web route an expired session is sent to
	DefaultLoginRoute = "/login"

	// DefaultTimeoutSeconds bounds each API request
	DefaultTimeoutSeconds = 30

	// DefaultLogLevel keeps the CLI quiet unless something goes wrong
	DefaultLogLevel = "warn"

	// ConfigDirName is the name of the config directory
	ConfigDirName = ".vip"

	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"

	// SessionFileName is the file backend's session record
	SessionFileName = "session.json"

	// KeyringDirName holds the encrypted-file keyring fallback
	KeyringDirName = "keyring"
)

// Environment variables that override the config file.
const (
	EnvAPIURL    = "VIP_API_URL"
	EnvWebURL    = "VIP_WEB_URL"
	EnvStorage   = "VIP_STORAGE"
	EnvLogLevel  = "VIP_LOG_LEVEL"
	EnvRedisAddr = "VIP_REDIS_ADDR"
)

// Config represents the CLI configuration stored on disk
type Config struct {
	// APIURL is the base URL of the VIP Mudanças API, including the /api prefix
	APIURL string `json:"api_url,omitempty"`

	// WebURL is the web application's origin, used to open pages in the browser
	WebURL string `json:"web_url,omitempty"`

	// LoginRoute is appended to WebURL when a session expires
	LoginRoute string `json:"login_route,omitempty"`

	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	LogLevel       string `json:"log_level,omitempty"`

	// OpenBrowserOnExpiry opens the login page when the backend rejects the session
	OpenBrowserOnExpiry bool `json:"open_browser_on_expiry,omitempty"`

	Storage StorageConfig `json:"storage"`
}

// StorageConfig selects where the session record is kept
type StorageConfig struct {
	// Backend is one of file, keyring, redis, memory
	Backend string `json:"backend,omitempty"`

	// Path overrides the file backend's session file
	Path string `json:"path,omitempty"`

	Redis RedisConfig `json:"redis"`
}

// RedisConfig configures the redis backend
type RedisConfig struct {
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
}

// Timeout returns the request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoginURL returns the web login page, or "" when no web URL is configured
func (c *Config) LoginURL() string {
	if c.WebURL == "" {
		return ""
	}
	return strings.TrimRight(c.WebURL, "/") + c.LoginRoute
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.LoginRoute == "" {
		c.LoginRoute = DefaultLoginRoute
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = storage.BackendFile
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := getenv(EnvWebURL); v != "" {
		c.WebURL = v
	}
	if v := getenv(EnvStorage); v != "" {
		c.Storage.Backend = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Storage.Redis.Addr = v
	}
}

// Manager handles configuration file operations
type Manager struct {
	configPath string
	getenv     func(string) string
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(homeDir, ConfigDirName, ConfigFileName)
	return &Manager{configPath: configPath, getenv: os.Getenv}, nil
}

// NewManagerWithPath creates a new configuration manager with a custom path
// This is useful for testing
func NewManagerWithPath(configPath string) *Manager {
	return &Manager{configPath: configPath, getenv: os.Getenv}
}

// WithEnv replaces the environment lookup. Tests pass a map-backed function.
func (m *Manager) WithEnv(getenv func(string) string) *Manager {
	m.getenv = getenv
	return m
}

// Load reads the configuration from disk and applies environment overrides.
// Returns the default config if the file doesn't exist
func (m *Manager) Load() (*Config, error) {
	config, err := m.loadFile()
	if err != nil {
		return nil, err
	}
	config.applyEnv(m.getenv)
	config.applyDefaults()
	return config, nil
}

// loadFile reads only what is on disk, without environment overrides.
func (m *Manager) loadFile() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", m.configPath, err)
	}
	return &config, nil
}

// Save writes the configuration to disk
func (m *Manager) Save(config *Config) error {
	// Ensure the config directory exists
	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// Write with restricted permissions (owner read/write only)
	return os.WriteFile(m.configPath, data, 0600)
}

// Delete removes the config file entirely
func (m *Manager) Delete() error {
	err := os.Remove(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type setter func(c *Config, value string) error

var setters = map[string]setter{
	"api_url": func(c *Config, v string) error {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("api_url must start with http:// or https://")
		}
		c.APIURL = strings.TrimRight(v, "/")
		return nil
	},
	"web_url": func(c *Config, v string) error {
		if v != "" && !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("web_url must start with http:// or https://")
		}
		c.WebURL = strings.TrimRight(v, "/")
		return nil
	},
	"login_route": func(c *Config, v string) error {
		if !strings.HasPrefix(v, "/") {
			return fmt.Errorf("login_route must start with /")
		}
		c.LoginRoute = v
		return nil
	},
	"timeout_seconds": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds must be a positive integer")
		}
		c.TimeoutSeconds = n
		return nil
	},
	"log_level": func(c *Config, v string) error {
		switch v {
		case "debug", "info", "warn", "error":
			c.LogLevel = v
			return nil
		}
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	},
	"open_browser_on_expiry": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("open_browser_on_expiry must be true or false")
		}
		c.OpenBrowserOnExpiry = b
		return nil
	},
	"storage.backend": func(c *Config, v string) error {
		switch v {
		case storage.BackendFile, storage.BackendKeyring, storage.BackendRedis, storage.BackendMemory:
			c.Storage.Backend = v
			return nil
		}
		return fmt.Errorf("storage.backend must be one of file, keyring, redis, memory")
	},
	"storage.path": func(c *Config, v string) error {
		c.Storage.Path = v
		return nil
	},
	"storage.redis.addr": func(c *Config, v string) error {
		c.Storage.Redis.Addr = v
		return nil
	},
	"storage.redis.password": func(c *Config, v string) error {
		c.Storage.Redis.Password = v
		return nil
	},
	"storage.redis.db": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("storage.redis.db must be a non-negative integer")
		}
		c.Storage.Redis.DB = n
		return nil
	},
	"storage.redis.prefix": func(c *Config, v string) error {
		c.Storage.Redis.Prefix = v
		return nil
	},
}

// Keys lists the settable configuration keys in order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set validates and stores a single key. Environment overrides are not
// written back to the file.
func (m *Manager) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}

	config, err := m.loadFile()
	if err != nil {
		return err
	}
	if err := set(config, value); err != nil {
		return err
	}
	return m.Save(config)
}

// ConfigPath returns the path to the config file
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// ConfigDir returns the directory holding the config file
func (m *Manager) ConfigDir() string {
	return filepath.Dir(m.configPath)
}

// SessionPath returns the file backend's session record path
func (m *Manager) SessionPath(c *Config) string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(m.ConfigDir(), SessionFileName)
}

// StorageOptions translates the configuration into storage options
func (m *Manager) StorageOptions(c *Config) storage.Options {
	redisCfg := storage.DefaultRedisConfig()
	if c.Storage.Redis.Addr != "" {
		redisCfg.Addr = c.Storage.Redis.Addr
	}
	if c.Storage.Redis.Prefix != "" {
		redisCfg.Prefix = c.Storage.Redis.Prefix
	}
	redisCfg.Password = c.Storage.Redis.Password
	redisCfg.DB = c.Storage.Redis.DB

	return storage.Options{
		Backend:    c.Storage.Backend,
		FilePath:   m.SessionPath(c),
		KeyringDir: filepath.Join(m.ConfigDir(), KeyringDirName),
		Redis:      redisCfg,
	}
}
