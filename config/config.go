// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config contains configuration data
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"trader"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`

	// API_KEY authenticates against the quote service. There is no
	// default: without it every lookup fails, so startup refuses.
	QuoteAPIKey string `env:"API_KEY"`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	StartingCash int64         `env:"STARTING_CASH" envDefault:"10000"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.QuoteAPIKey == "" {
		return nil, errors.New("API_KEY is not set")
	}
	if cfg.StartingCash < 0 {
		return nil, errors.New("STARTING_CASH must not be negative")
	}
	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}
