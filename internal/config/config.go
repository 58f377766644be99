// Package config loads the application settings.
//
// Settings come from environment variables, optionally layered over a YAML
// file. cleanenv reads both through the struct tags below: `yaml` names the
// file key, `env` the variable, and `env-default` the value used when
// neither sets it. Environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DevSecretKey is the signing secret used when none is configured. It is
// public, so any deployment that keeps it has forgeable sessions.
const DevSecretKey = "dev-secret-key-change-me"

// EnvConfigPath names the variable that may point at a YAML config file
// when no --config flag is given.
const EnvConfigPath = "CONFIG_PATH"

// Config holds every setting the application reads.
type Config struct {
	Port         int           `yaml:"port" env:"PORT" env-default:"8080" env-description:"HTTP listen port"`
	DatabaseFile string        `yaml:"database_file" env:"DATABASE_FILE" env-default:"data/watchlist.db" env-description:"SQLite database path"`
	SecretKey    string        `yaml:"secret_key" env:"SECRET_KEY" env-default:"dev-secret-key-change-me" env-description:"session signing secret"`
	SessionTTL   time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h" env-description:"how long a login stays valid"`
	CookieSecure bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false" env-description:"send cookies over HTTPS only"`
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	LogFormat    string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"text" env-description:"text or json"`
}

// Load reads the configuration. With a non-empty path the YAML file is read
// first and the environment applied on top; otherwise CONFIG_PATH is tried,
// and failing that only the environment (and defaults) are used.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: reading environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if strings.TrimSpace(c.DatabaseFile) == "" {
		errs = append(errs, errors.New("database_file is empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// UsingDevSecret reports whether the built-in development secret is in use.
func (c *Config) UsingDevSecret() bool {
	return c.SecretKey == DevSecretKey
}

// Addr is the listen address for net/http.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NewLogger builds the application logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
	return level, nil
}
