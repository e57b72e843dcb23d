package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Input
	InputPath     string `env:"INPUT_PATH"     envDefault:"transactions.csv"`
	QueueCapacity int    `env:"QUEUE_CAPACITY" envDefault:"100"`

	// Output
	MetricsTextfile  string `env:"METRICS_TEXTFILE"`
	VerifyInvariants bool   `env:"VERIFY_INVARIANTS" envDefault:"false"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Rate limiting for transaction submission, per client IP
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"200"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load loads configuration from environment variables. Values from a .env
// file in the working directory are applied first when the file exists;
// variables already set in the environment win.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is like Load but reads the given dotenv files. Missing files are
// ignored.
func LoadFiles(files ...string) (*Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.QueueCapacity <= 0 {
		return nil, errors.New("QUEUE_CAPACITY must be positive")
	}

	return cfg, nil
}
