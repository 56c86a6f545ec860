// Package config loads pottytracker settings from an optional YAML file and
// POTTY_-prefixed environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Invite   InviteConfig   `koanf:"invite"`
	Display  DisplayConfig  `koanf:"display"`
	Advice   AdviceConfig   `koanf:"advice"`
	Email    EmailConfig    `koanf:"email"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig selects the local store backend
type DatabaseConfig struct {
	Type string `koanf:"type"` // sqlite, postgres or mysql
	Path string `koanf:"path"` // sqlite file
	URL  string `koanf:"url"`  // postgres/mysql DSN
}

type ServerConfig struct {
	Port            string   `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	// LoginRate is the sustained number of login/signup attempts allowed per
	// client IP per minute.
	LoginRate  float64 `koanf:"login_rate"`
	LoginBurst int     `koanf:"login_burst"`
}

type AuthConfig struct {
	// HashPasswords stores bcrypt hashes instead of plaintext passwords.
	// Existing plaintext accounts keep working either way.
	HashPasswords bool `koanf:"hash_passwords"`
}

type InviteConfig struct {
	TTL Duration `koanf:"ttl"`
}

type DisplayConfig struct {
	Timezone string `koanf:"timezone"`
}

// AdviceConfig configures the advice gateway. Provider is one of
// "none" (always the fallback advice), "openai" or "http".
type AdviceConfig struct {
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   Secret `koanf:"api_key"`

	Endpoint     string `koanf:"endpoint"`
	TokenURL     string `koanf:"token_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret Secret `koanf:"client_secret"`

	Timeout           Duration `koanf:"timeout"`
	RequestsPerMinute float64  `koanf:"requests_per_minute"`
}

// EmailConfig configures partner invite delivery through Amazon SES
type EmailConfig struct {
	Enabled     bool   `koanf:"enabled"`
	FromAddress string `koanf:"from_address"`
	FromName    string `koanf:"from_name"`
	Region      string `koanf:"region"`
	AppURL      string `koanf:"app_url"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

// Duration wraps time.Duration for text unmarshaling (YAML, env vars).
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", text)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration().String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Secret holds a credential that must not show up in logs or dumps
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// MarshalJSON redacts the value
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Value returns the raw secret
func (s Secret) Value() string {
	return string(s)
}

// Location resolves the display timezone. Empty or "Local" means the host zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Display.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Validate checks the values applyDefaults cannot repair
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Type) {
	case "sqlite", "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	switch c.Advice.Provider {
	case "none":
	case "openai":
		if c.Advice.APIKey == "" && c.Advice.BaseURL == "" {
			return fmt.Errorf("advice.api_key or advice.base_url is required for the openai provider")
		}
	case "http":
		if c.Advice.Endpoint == "" {
			return fmt.Errorf("advice.endpoint is required for the http provider")
		}
	default:
		return fmt.Errorf("unsupported advice provider: %s", c.Advice.Provider)
	}

	if c.Email.Enabled && c.Email.FromAddress == "" {
		return fmt.Errorf("email.from_address is required when email is enabled")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
