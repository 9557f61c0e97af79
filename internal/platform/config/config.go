// Package config loads environment-driven configuration so main stays
// lean. Empty URLs mean the corresponding backing service is not
// configured and the caller falls back to in-process substitutes.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config covers both binaries; each reads the subset it needs.
type Config struct {
	Addr     string `env:"COMPTRACK_ADDR" envDefault:":8080"`
	LogLevel string `env:"COMPTRACK_LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	KafkaBrokers    []string `env:"KAFKA_BROKERS"`
	NotifyTopic     string   `env:"KAFKA_NOTIFY_TOPIC" envDefault:"compliance.notifications.email"`
	AuditTopic      string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"compliance.audit"`

	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`

	ShutdownTimeout time.Duration `env:"COMPTRACK_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
