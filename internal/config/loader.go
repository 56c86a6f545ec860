package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks the environment variables read by Load
const EnvPrefix = "POTTY_"

const maxConfigFileSize = 1024 * 1024

// Load reads configuration from the YAML file at path (skipped when path is
// empty), then overrides it with environment variables.
//
// Environment variables drop the prefix and split on the first underscore:
//
//	POTTY_DATABASE_PATH      -> database.path
//	POTTY_ADVICE_API_KEY     -> advice.api_key
//	POTTY_SERVER_LOGIN_RATE  -> server.login_rate
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./pottytracker.db"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Server.LoginRate == 0 {
		cfg.Server.LoginRate = 10
	}
	if cfg.Server.LoginBurst == 0 {
		cfg.Server.LoginBurst = 5
	}
	if cfg.Invite.TTL == 0 {
		cfg.Invite.TTL = Duration(7 * 24 * time.Hour)
	}
	if cfg.Advice.Provider == "" {
		cfg.Advice.Provider = "none"
	}
	if cfg.Advice.Model == "" {
		cfg.Advice.Model = "gpt-4o-mini"
	}
	if cfg.Advice.RequestsPerMinute == 0 {
		cfg.Advice.RequestsPerMinute = 6
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "Potty Tracker"
	}
	if cfg.Email.AppURL == "" {
		cfg.Email.AppURL = "http://localhost:" + cfg.Server.Port
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
