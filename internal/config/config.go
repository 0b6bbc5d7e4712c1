package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type StoreDriver string

const (
	Memory StoreDriver = "memory"
	SQLite StoreDriver = "sqlite"
)

const (
	DefaultPort          = "3000"
	DefaultSessionMaxAge = 86400 // 24 hours
	DefaultSQLitePath    = ":memory:"
)

// DefaultSessionKeys sign the session cookie when SESSION_KEYS is unset
var DefaultSessionKeys = []string{"key1", "key2"}

type Config struct {
	Port string
	// Session cookie config. The first key signs, every key verifies.
	SessionKeys   [][]byte
	SessionMaxAge int
	SecureCookie  bool
	// Store config
	StoreDriver StoreDriver
	SQLitePath  string
	// TLS is enabled when both files are set
	TLSCertFile string
	TLSKeyFile  string
	// Ambient
	LogLevel       string
	Development    bool
	MetricsEnabled bool
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	config := &Config{
		Port:           DefaultPort,
		SessionMaxAge:  DefaultSessionMaxAge,
		StoreDriver:    Memory,
		SQLitePath:     DefaultSQLitePath,
		LogLevel:       "info",
		MetricsEnabled: true,
	}

	if port := getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("PORT must be numeric, got %q", port)
		}
		config.Port = port
	}

	keys := DefaultSessionKeys
	if raw := getenv("SESSION_KEYS"); raw != "" {
		keys = nil
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("SESSION_KEYS is set but contains no keys")
		}
	}
	for _, k := range keys {
		config.SessionKeys = append(config.SessionKeys, []byte(k))
	}

	if raw := getenv("SESSION_MAX_AGE"); raw != "" {
		maxAge, err := strconv.Atoi(raw)
		if err != nil || maxAge <= 0 {
			return nil, fmt.Errorf("SESSION_MAX_AGE must be a positive number of seconds, got %q", raw)
		}
		config.SessionMaxAge = maxAge
	}

	if driver := getenv("STORE_DRIVER"); driver != "" {
		config.StoreDriver = StoreDriver(driver)
	}
	switch config.StoreDriver {
	case Memory:
	case SQLite:
		if path := getenv("SQLITE_PATH"); path != "" {
			config.SQLitePath = path
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER: %s", config.StoreDriver)
	}

	config.TLSCertFile = getenv("TLS_CERT_FILE")
	config.TLSKeyFile = getenv("TLS_KEY_FILE")
	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return nil, fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	config.SecureCookie = config.TLSEnabled()

	if level := getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = strings.ToLower(level)
	}
	config.Development = getenv("APP_ENV") == "development"

	if raw := getenv("METRICS_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("METRICS_ENABLED must be a boolean, got %q", raw)
		}
		config.MetricsEnabled = enabled
	}

	return config, nil
}

// TLSEnabled reports whether the server should terminate TLS itself
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}
