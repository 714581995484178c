// Package config loads kiosk settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name
const EnvPrefix = "KIOSK_"

// Config is the kiosk's runtime configuration
type Config struct {
	// DeviceHost is the reader's host[:port]; the directory and socket are derived from it.
	DeviceHost string `env:"DEVICE_HOST"`
	Port       int    `env:"PORT" envDefault:"8081"`
	DBPath     string `env:"DB" envDefault:"kiosk.db"`

	// AdminPassword guards the history pages. Empty means generate one at startup.
	AdminPassword string `env:"ADMIN_PASSWORD"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	ReconnectDelay          time.Duration `env:"RECONNECT_DELAY" envDefault:"2s"`
	ReconnectMaxDelay       time.Duration `env:"RECONNECT_MAX_DELAY" envDefault:"0s"`
	RetryDelay              time.Duration `env:"RETRY_DELAY" envDefault:"5s"`
	RetryMalformedDirectory bool          `env:"RETRY_MALFORMED_DIRECTORY" envDefault:"false"`

	// ScanRetention bounds the scan journal; zero keeps everything.
	ScanRetention time.Duration `env:"SCAN_RETENTION" envDefault:"720h"`

	OpenBrowser bool `env:"OPEN_BROWSER" envDefault:"false"`
	KioskMode   bool `env:"KIOSK_MODE" envDefault:"false"`
}

// Load reads .env when present, then the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse()
}

// Parse reads the environment only
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize trims free-form fields
func (c *Config) Sanitize() {
	c.DeviceHost = strings.TrimSpace(c.DeviceHost)
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	switch {
	case c.DeviceHost == "":
		return errors.New("device host is required (set KIOSK_DEVICE_HOST or -device)")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("port %d out of range", c.Port)
	case c.DBPath == "":
		return errors.New("database path is required")
	case c.ReconnectDelay <= 0:
		return fmt.Errorf("reconnect delay must be positive, got %v", c.ReconnectDelay)
	case c.ReconnectMaxDelay < 0:
		return fmt.Errorf("reconnect max delay must not be negative, got %v", c.ReconnectMaxDelay)
	case c.RetryDelay <= 0:
		return fmt.Errorf("retry delay must be positive, got %v", c.RetryDelay)
	case c.ScanRetention != 0 && c.ScanRetention < time.Hour:
		return fmt.Errorf("scan retention must be zero or at least 1h, got %v", c.ScanRetention)
	}
	return nil
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
