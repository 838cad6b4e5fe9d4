package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
	SwaggerHost string `env:"SWAGGER_HOST"`
	BodyLimit   string `env:"BODY_LIMIT" envDefault:"2M"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	MySQLDSN   string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/cms?charset=utf8mb4&parseTime=True&loc=UTC"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/cms.db"`
	ResetDB    bool   `env:"RESET_DB" envDefault:"false"`

	RedisAddr string        `env:"REDIS_ADDR"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	SessionBackend       string        `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionSecret        string        `env:"SESSION_SECRET" envDefault:"change-me"`
	SessionMaxAge        time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	SessionPurgeSchedule string        `env:"SESSION_PURGE_SCHEDULE" envDefault:"@every 10m"`

	AdminUsername     string `env:"ADMIN_USERNAME"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	AdminEmail        string `env:"ADMIN_EMAIL" envDefault:"admin@localhost"`

	LiveSiteURL        string        `env:"LIVE_SITE_URL"`
	LiveFetchTimeout   time.Duration `env:"LIVE_FETCH_TIMEOUT" envDefault:"15s"`
	ProtectDraftWrites bool          `env:"PROTECT_DRAFT_WRITES" envDefault:"false"`
	LoginRatePerMinute int           `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
}

// Session backends.
const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendDatabase = "database"
)

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	switch cfg.SessionBackend {
	case SessionBackendMemory, SessionBackendDatabase:
	case SessionBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("SESSION_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if cfg.IsProduction() && cfg.SessionSecret == "change-me" {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return cfg, nil
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UseRedis returns true if a Redis server is configured.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}
