package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/trivia.db"`
	QuizDir  string     `env:"QUIZ_DIR" envDefault:"quizzes"`

	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"250ms"`
	DefaultChannel string        `env:"DEFAULT_CHANNEL" envDefault:"general"`

	// StreamBuffer is how many messages an SSE or WebSocket listener may
	// lag behind before it loses them.
	StreamBuffer int `env:"STREAM_BUFFER" envDefault:"64"`

	// RedisURL enables the Redis relay when set.
	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"trivia"`

	// ModeratorTokenHash is a bcrypt hash of the moderator bearer token.
	// Moderator routes are disabled when it is empty.
	ModeratorTokenHash string `env:"MODERATOR_TOKEN_HASH"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	if cfg.StreamBuffer <= 0 {
		return nil, fmt.Errorf("STREAM_BUFFER must be positive, got %d", cfg.StreamBuffer)
	}
	return &cfg, nil
}
