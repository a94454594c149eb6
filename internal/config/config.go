// Package config loads server settings from CHECKERS_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr         string   `env:"CHECKERS_ADDR"          envDefault:":3000"`
	AllowOrigins []string `env:"CHECKERS_ALLOW_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	LogLevel     string   `env:"CHECKERS_LOG_LEVEL"     envDefault:"info"`
	Game         Game
	WebSocket    WebSocket
}

// Game controls per-game and matchmaking behaviour.
type Game struct {
	ClockTime           time.Duration `env:"CHECKERS_CLOCK_TIME"           envDefault:"10m"`
	MatchmakingInterval time.Duration `env:"CHECKERS_MATCHMAKING_INTERVAL" envDefault:"1s"`
}

type WebSocket struct {
	ReadBufferSize  int `env:"CHECKERS_WS_READ_BUFFER_SIZE"  envDefault:"1024"`
	WriteBufferSize int `env:"CHECKERS_WS_WRITE_BUFFER_SIZE" envDefault:"1024"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Game.ClockTime <= 0 {
		return fmt.Errorf("clock time must be positive, got %s", c.Game.ClockTime)
	}
	if c.Game.MatchmakingInterval <= 0 {
		return fmt.Errorf("matchmaking interval must be positive, got %s", c.Game.MatchmakingInterval)
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin can't be used with credentialed CORS")
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.WebSocket.ReadBufferSize <= 0 || c.WebSocket.WriteBufferSize <= 0 {
		return fmt.Errorf("websocket buffer sizes must be positive")
	}
	return nil
}

// Level maps LogLevel onto fiber's log levels.
func (c Config) Level() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
}
