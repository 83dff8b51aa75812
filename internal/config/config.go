package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ScenarioChat = "chat"
	ScenarioFull = "full"
)

type AppConfig struct {
	URL    string `yaml:"url" toml:"url" env:"HERO_URL" env-default:"ws://localhost:8080" env-description:"hero server websocket endpoint"`
	Origin string `yaml:"origin" toml:"origin" env:"HERO_ORIGIN" env-default:"http://localhost/" env-description:"origin header sent on connect"`

	Username string `yaml:"username" toml:"username" env:"HERO_USERNAME" env-default:"TestUser" env-description:"sender name of the named chat messages"`

	// Slightly longer than the server's 10 second chat window.
	RateLimitDelay time.Duration `yaml:"rate_limit_delay" toml:"rate_limit_delay" env:"HERO_RATE_LIMIT_DELAY" env-default:"11s" env-description:"pause before sends that must pass the rate limit"`
	DialTimeout    time.Duration `yaml:"dial_timeout" toml:"dial_timeout" env:"HERO_DIAL_TIMEOUT" env-default:"10s" env-description:"connect timeout"`
	// Zero keeps listening until the server closes or the process is interrupted.
	IdleTimeout time.Duration `yaml:"idle_timeout" toml:"idle_timeout" env:"HERO_IDLE_TIMEOUT" env-default:"0s" env-description:"stop listening after this long without a frame, 0 disables"`

	Scenario string `yaml:"scenario" toml:"scenario" env:"HERO_SCENARIO" env-default:"chat" env-description:"chat or full"`
	Strict   bool   `yaml:"strict" toml:"strict" env:"HERO_STRICT" env-default:"false" env-description:"exit non-zero when a reply does not match its expectation"`

	LogDev bool `yaml:"log_dev" toml:"log_dev" env:"HERO_LOG_DEV" env-default:"false" env-description:"human readable console logs"`
}

// Load environment variables to AppConfig instance.
// A .env file in the working directory is applied first when present.
func LoadAppConfig() (*AppConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load config file (yaml, toml or env), environment variables override it.
func LoadAppConfigFile(path string) (*AppConfig, error) {
	// encoding/json cannot decode "11s" into a time.Duration.
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, fmt.Errorf("unsupported config file %q: use yaml, toml or env", path)
	}
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv applies ./.env when it exists.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func (cfg *AppConfig) Validate() error {
	if cfg.URL == "" {
		return fmt.Errorf("url is empty")
	}
	if cfg.Scenario != ScenarioChat && cfg.Scenario != ScenarioFull {
		return fmt.Errorf("unknown scenario %q", cfg.Scenario)
	}
	if cfg.RateLimitDelay < 0 || cfg.IdleTimeout < 0 || cfg.DialTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Usage prints the supported environment variables.
func Usage() string {
	text, err := cleanenv.GetDescription(&AppConfig{}, nil)
	if err != nil {
		return ""
	}
	return text
}
