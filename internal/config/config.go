// Package config loads runtime configuration from the environment (and an
// optional .env file), following the convention the rest of this codebase
// uses for every other external dependency: explicit environment
// variables with sane defaults, nothing implicit.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting the application needs.
type Config struct {
	DataDir          string
	DatabaseFilename string
	DefaultCurrency  string
	LogLevel         string

	RedisAddr     string
	RedisPassword string
	CacheEnabled  bool

	HTTPPort string
}

// Load reads a .env file if present (a missing file is not an error: the
// not-exist error godotenv.Load returns for it is ignored) and builds a Config
// from the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	dataDir := getEnv("DATA_DIR", defaultDataDir())
	cfg := &Config{
		DataDir:          dataDir,
		DatabaseFilename: getEnv("DATABASE_FILENAME", "finlite.db"),
		DefaultCurrency:  getEnv("DEFAULT_CURRENCY", "USD"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		CacheEnabled:     getEnvBool("CACHE_ENABLED", false),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
	}
	return cfg, nil
}

// DatabasePath is the full path to the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DatabaseFilename)
}

// EnsureDataDir creates the data directory if it does not already exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o755)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".finlite"
	}
	return filepath.Join(home, ".finlite")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
