package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	// HTTP server
	Port string `env:"PORT" envDefault:"8080"`

	// Ledger database
	DBPath string `env:"ZENSPEND_DB_PATH" envDefault:"./data/zenspend.db"`

	// Offline asset cache
	CacheDir     string        `env:"ZENSPEND_CACHE_DIR" envDefault:"./data/cache"`
	FetchTimeout time.Duration `env:"ZENSPEND_FETCH_TIMEOUT" envDefault:"30s"`

	// Event publishing (optional; empty URL disables it)
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"zenspend"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"ledger_events"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.DBPath)); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create database directory: %v", err))
	}

	if c.CacheDir == "" {
		problems = append(problems, "cache directory cannot be empty")
	} else if err := ensureDir(c.CacheDir); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create cache directory: %v", err))
	}

	if c.FetchTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
