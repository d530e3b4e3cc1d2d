// Package config loads recipebox settings from the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"recipebox/internal/database"
)

// Prefix is prepended to every environment variable, e.g. RECIPEBOX_PORT.
const Prefix = "RECIPEBOX"

// Config holds all environment-based configuration.
type Config struct {
	// Host is the interface the HTTP server binds to.
	// Env: RECIPEBOX_HOST (default: 127.0.0.1)
	Host string `envconfig:"HOST" default:"127.0.0.1"`

	// Port is the HTTP listen port.
	// Env: RECIPEBOX_PORT (default: 9898)
	Port int `envconfig:"PORT" default:"9898"`

	// DatabaseURL selects the store, sqlite:///path or postgres://...
	// Env: RECIPEBOX_DATABASE_URL (default: sqlite:///main.db)
	DatabaseURL string `envconfig:"DATABASE_URL" default:"sqlite:///main.db"`

	// Env: RECIPEBOX_LOG_LEVEL (default: info)
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogFormat is json or console.
	// Env: RECIPEBOX_LOG_FORMAT (default: console)
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// AuthUser and AuthPassword enable HTTP basic auth when AuthUser is set.
	AuthUser     string `envconfig:"AUTH_USER"`
	AuthPassword string `envconfig:"AUTH_PASSWORD"`

	// CORSOrigins is a comma-separated list of allowed origins.
	// Env: RECIPEBOX_CORS_ORIGINS (default: http://localhost:9898)
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:9898"`
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AuthEnabled reports whether basic auth credentials are configured.
func (c Config) AuthEnabled() bool {
	return c.AuthUser != ""
}

// Validate checks the values that envconfig cannot.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if _, _, err := database.ParseURL(c.DatabaseURL); err != nil {
		return fmt.Errorf("invalid database url %q: %w", c.DatabaseURL, err)
	}
	return nil
}

// LoadDotEnv loads variables from a .env file. A missing file is not an error.
// Variables already present in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads the optional .env file and then the environment.
func Load(envPath string) (Config, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
