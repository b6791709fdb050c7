// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application settings. Values come from environment
// variables prefixed with FAKTURO_, optionally loaded from a .env file.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns      int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns      int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	DBConnLifetime  time.Duration `envconfig:"DB_CONN_LIFETIME" default:"30m"`
	DBConnIdleTime  time.Duration `envconfig:"DB_CONN_IDLE_TIME" default:"5m"`
	DBHealthCheck   time.Duration `envconfig:"DB_HEALTH_CHECK" default:"1m"`
	DBConnectPeriod time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// AuditCompressThreshold is the minimum details payload size in bytes
	// before zstd compression kicks in.
	AuditCompressThreshold int `envconfig:"AUDIT_COMPRESS_THRESHOLD" default:"1024"`
}

// Load reads .env (if present) and populates Config from the environment.
func Load() (*Config, error) {
	// Missing .env is fine, real deployments pass env vars directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FAKTURO", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
