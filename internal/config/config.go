// Package config loads environment-based configuration for the sync
// engine.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the media sync
// engine.
type Config struct {
	// Base URL of the remote vault service API.
	APIBaseURL string `env:"VAULT_API_BASE_URL"`

	// Bearer token for the remote vault service. When empty the engine
	// runs in local-only mode: uploads fail fast and reconciliation
	// degrades to the cached state.
	APIToken string `env:"VAULT_API_TOKEN"`

	// Path of the local cache database. Defaults to
	// ~/.media-sync/cache.db when empty.
	CachePath string `env:"VAULT_CACHE_PATH"`

	// Device name this client identifies as. Defaults to system hostname.
	DeviceName string `env:"VAULT_DEVICE_NAME"`

	// Per-file upload size limit in bytes. Zero means the engine default.
	MaxFileSize int64 `env:"VAULT_MAX_FILE_SIZE" envDefault:"0"`

	// Maximum attempts per logical upload before it is marked failed.
	UploadMaxAttempts int `env:"VAULT_UPLOAD_MAX_ATTEMPTS" envDefault:"3"`

	// Environment controls log format ("production" = JSON).
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing the API token to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables. It first
// attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DeviceName == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "media-sync"
		}

		cfg.DeviceName = hostname
	}

	if cfg.CachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}

		cfg.CachePath = filepath.Join(home, ".media-sync", "cache.db")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL != "" {
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("VAULT_API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
		}
	}

	if c.MaxFileSize < 0 {
		return fmt.Errorf("VAULT_MAX_FILE_SIZE must not be negative, got %d", c.MaxFileSize)
	}

	if c.UploadMaxAttempts < 1 {
		return fmt.Errorf("VAULT_UPLOAD_MAX_ATTEMPTS must be at least 1, got %d", c.UploadMaxAttempts)
	}

	return nil
}
