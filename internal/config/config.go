// Package config loads the commands' settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/marcodamonte/trainings/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Pipe    PipeConfig
	Counter CounterConfig
	Async   AsyncConfig
	Logging LogConfig
}

// PipeConfig holds producer/consumer settings.
type PipeConfig struct {
	Capacity int           `envconfig:"PIPE_CAPACITY" default:"1"`
	Delay    time.Duration `envconfig:"PIPE_DELAY" default:"500ms"`
	First    int           `envconfig:"PIPE_FIRST" default:"1"`
	Last     int           `envconfig:"PIPE_LAST" default:"4"`
}

// CounterConfig holds shared counter pool settings.
type CounterConfig struct {
	Workers int `envconfig:"COUNTER_WORKERS" default:"5"`
	// PanicWorker makes that worker panic inside the critical section.
	// Negative disables it.
	PanicWorker int `envconfig:"COUNTER_PANIC_WORKER" default:"-1"`
}

// AsyncConfig holds the async sample settings.
type AsyncConfig struct {
	Delay time.Duration `envconfig:"ASYNC_DELAY" default:"2s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipe: PipeConfig{
			Capacity: 1,
			Delay:    500 * time.Millisecond,
			First:    1,
			Last:     4,
		},
		Counter: CounterConfig{
			Workers:     5,
			PanicWorker: -1,
		},
		Async: AsyncConfig{
			Delay: 2 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Pipe.Capacity < 0 {
		errs = append(errs, fmt.Errorf("PIPE_CAPACITY must be >= 0, got %d", c.Pipe.Capacity))
	}
	if c.Pipe.Delay < 0 {
		errs = append(errs, fmt.Errorf("PIPE_DELAY must be >= 0, got %s", c.Pipe.Delay))
	}
	if c.Pipe.First > c.Pipe.Last {
		errs = append(errs, fmt.Errorf("PIPE_FIRST (%d) must not exceed PIPE_LAST (%d)", c.Pipe.First, c.Pipe.Last))
	}
	if c.Counter.Workers < 0 {
		errs = append(errs, fmt.Errorf("COUNTER_WORKERS must be >= 0, got %d", c.Counter.Workers))
	}
	if c.Async.Delay < 0 {
		errs = append(errs, fmt.Errorf("ASYNC_DELAY must be >= 0, got %s", c.Async.Delay))
	}
	return errors.Join(errs...)
}

// LoggerConfig maps the logging settings onto logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	out := logging.DefaultConfig()
	if c.Logging.Development {
		out = logging.DevelopmentConfig()
	}
	out.Level = c.Logging.Level
	return out
}
