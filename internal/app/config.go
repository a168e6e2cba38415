package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backend selectors. The backend is chosen once at startup; no
// environment sniffing happens past LoadConfig.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	PGDSN        string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	StaleDraftAge  time.Duration `envconfig:"STALE_DRAFT_AGE" default:"720h"`
}

// LoadConfig reads configuration from environment variables. Missing or
// inconsistent values fail process start with a descriptive error.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.PGDSN == "" {
			return nil, errors.New("PG_DSN must be provided when STORE_BACKEND is postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (expected %s or %s)", cfg.StoreBackend, BackendMemory, BackendPostgres)
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
