/*
Package config loads process settings for the server and CLI.

SOURCES (later wins):
  1. Built-in defaults
  2. .env file in the working directory (optional)
  3. Process environment
  4. Command-line flags (applied by cmd/server)

VARIABLES:
  PORT                 HTTP port (default 8080)
  DB_PATH              SQLite path, ":memory:" allowed (default tariff.db)
  LOG_LEVEL            debug | info | warn | error (default info)
  CORS_ORIGINS         Comma-separated allowed origins
  SEED_DEFAULT_SHIFTS  Seed the default shifts into an empty store (default true)
*/
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process settings. Values come from the environment, with a
// .env file in the working directory loaded first if present.
type Config struct {
	Port         int
	DBPath       string
	LogLevel     slog.Level
	CORSOrigins  []string
	SeedDefaults bool
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:         8080,
		DBPath:       "tariff.db",
		LogLevel:     slog.LevelInfo,
		CORSOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
		SeedDefaults: true,
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, ErrInvalidValue{Key: "PORT", Value: v}
		}
		cfg.Port = port
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, ErrInvalidValue{Key: "LOG_LEVEL", Value: v}
		}
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if v := getenv("SEED_DEFAULT_SHIFTS"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, ErrInvalidValue{Key: "SEED_DEFAULT_SHIFTS", Value: v}
		}
		cfg.SeedDefaults = seed
	}
	return cfg, nil
}

// NewLogger returns a JSON slog logger at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}

type ErrInvalidValue struct {
	Key   string
	Value string
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Key)
}
