// Package config centralises configuration parsing for the signup service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the signup service and its consumer.
type Config struct {
	HTTPAddress       string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	MetricsAddress    string        `env:"METRICS_ADDRESS" envDefault:":9102"` // consumer only
	StaticDir         string        `env:"STATIC_DIR" envDefault:"static"`
	SeedFile          string        `env:"SEED_FILE"` // empty uses the built-in catalog
	EnforceCapacity   bool          `env:"ENFORCE_CAPACITY" envDefault:"false"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"json"`
	KafkaBrokers      []string      `env:"KAFKA_BROKERS" envSeparator:","` // empty disables roster events
	RosterTopic       string        `env:"ROSTER_TOPIC" envDefault:"activity_roster_events"`
	ConsumerGroupID   string        `env:"CONSUMER_GROUP_ID" envDefault:"activity-roster-audit"`
	OutboxBufferSize  int           `env:"OUTBOX_BUFFER_SIZE" envDefault:"256"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// EventsEnabled reports whether roster events should be published to Kafka.
func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads an optional .env file and then the environment into Config.
func Load() (Config, error) {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile behaves like Load but reads the given dotenv path. A missing
// file is not an error; variables already set in the environment win.
func LoadWithEnvFile(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = trimEmpty(cfg.KafkaBrokers)
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func trimEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) validate() error {
	if c.HTTPAddress == "" {
		return errors.New("HTTP_ADDRESS is required")
	}
	if c.OutboxBufferSize <= 0 {
		return errors.New("OUTBOX_BUFFER_SIZE must be > 0")
	}
	if c.EventsEnabled() && c.RosterTopic == "" {
		return errors.New("ROSTER_TOPIC is required when KAFKA_BROKERS is set")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}
