package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all process configuration, read once at startup and
// passed down explicitly instead of living in globals.
type Config struct {
	Port        string        `env:"PORT" env-default:"8080"`
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisURL    string        `env:"REDIS_URL"`
	APIKey      string        `env:"API_KEY"`
	QuoteAPIURL string        `env:"QUOTE_API_URL" env-default:"https://cloud.iexapis.com/stable"`
	SessionTTL  time.Duration `env:"SESSION_TTL" env-default:"24h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	// The quote provider is unusable without a credential, so refuse to start.
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required")
	}
	return &cfg, nil
}
