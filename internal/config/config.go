// Package config loads the application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/park285/rusty-chess-go/internal/chess"
	"github.com/park285/rusty-chess-go/internal/obslog"
)

type AppConfig struct {
	ListenAddr      string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`

	// StartFEN is the position every new game of the session starts from.
	StartFEN string `env:"CHESS_START_FEN"`

	// RedisURL enables the snapshot mirror when set.
	RedisURL       string        `env:"REDIS_URL"`
	SnapshotPrefix string        `env:"CHESS_SNAPSHOT_PREFIX" envDefault:"chess"`
	SnapshotTTL    time.Duration `env:"CHESS_SNAPSHOT_TTL" envDefault:"24h"`

	MessagesDir string `env:"CHESS_MESSAGES_DIR"`

	// ServerURL is the HTTP API the CLI talks to in remote mode.
	ServerURL string `env:"CHESS_SERVER_URL" envDefault:"http://127.0.0.1:8080"`

	Log obslog.Options
}

// Load reads an optional .env file, parses the environment and validates
// the result.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the process environment without reading .env.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	c.StartFEN = strings.TrimSpace(c.StartFEN)
	if c.StartFEN == "" {
		c.StartFEN = chess.StartFEN
	}
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.SnapshotPrefix = strings.TrimSpace(c.SnapshotPrefix)
	c.MessagesDir = strings.TrimSpace(c.MessagesDir)
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
}

func (c *AppConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if _, err := chess.ParseFEN(c.StartFEN); err != nil {
		return fmt.Errorf("CHESS_START_FEN: %w", err)
	}
	if c.SnapshotTTL <= 0 {
		return errors.New("CHESS_SNAPSHOT_TTL must be positive")
	}
	if c.RedisURL != "" && c.SnapshotPrefix == "" {
		return errors.New("CHESS_SNAPSHOT_PREFIX is required with REDIS_URL")
	}
	return nil
}
