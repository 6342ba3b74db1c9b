// Package config loads application configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
type Config struct {
	// Environment is "development" or "production". Production switches logs to JSON.
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" env-default:"debug" yaml:"logLevel"`

	HTTP struct {
		// Addr is the address the primary REST backend listens on
		Addr         string        `env:"HTTP_ADDR" env-default:":3000" yaml:"addr"`
		ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s" yaml:"readTimeout"`
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"15s" yaml:"writeTimeout"`
		IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s" yaml:"idleTimeout"`
	} `yaml:"http"`

	Database struct {
		// Path of the SQLite file, ":memory:" for a throwaway store
		Path string `env:"DB_PATH" env-default:"data/shoplist.db" yaml:"path"`
	} `yaml:"database"`

	Auth struct {
		// JWTSecret enables bearer tokens when set. Must be at least 16 characters.
		JWTSecret string        `env:"JWT_SECRET" yaml:"jwtSecret"`
		JWTIssuer string        `env:"JWT_ISSUER" env-default:"shopping-list" yaml:"jwtIssuer"`
		TokenTTL  time.Duration `env:"JWT_TTL" env-default:"24h" yaml:"tokenTTL"`
	} `yaml:"auth"`

	Access struct {
		// Roles is the static identity→role table, "user:role" pairs separated by commas
		Roles string `env:"ACCESS_ROLES" env-default:"user1:owner,user2:member" yaml:"roles"`
		// DefaultRole applies to identities missing from Roles. Empty means no role.
		DefaultRole string `env:"ACCESS_DEFAULT_ROLE" yaml:"defaultRole"`
	} `yaml:"access"`

	Mock struct {
		Addr string `env:"MOCK_ADDR" env-default:":3001" yaml:"addr"`
		Seed bool   `env:"MOCK_SEED" env-default:"true" yaml:"seed"`
	} `yaml:"mock"`

	Client struct {
		BaseURL string        `env:"CLIENT_BASE_URL" env-default:"http://localhost:3001" yaml:"baseURL"`
		UseMock bool          `env:"CLIENT_USE_MOCK" env-default:"false" yaml:"useMock"`
		Timeout time.Duration `env:"CLIENT_TIMEOUT" env-default:"10s" yaml:"timeout"`
		User    string        `env:"CLIENT_USER" env-default:"user1" yaml:"user"`
	} `yaml:"client"`

	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"30s" yaml:"gracefulShutdownTimeout"`
}

// Load reads the YAML file at configPath (environment variables override it).
// A missing file is not an error: configuration then comes from the
// environment and defaults alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath != "" {
		_, err := os.Stat(configPath)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
				return nil, fmt.Errorf("could not read config: %w", err)
			}
			return &cfg, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("could not stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config from environment: %w", err)
	}
	return &cfg, nil
}
