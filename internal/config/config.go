package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port          string        `mapstructure:"PORT"`
	Env           string        `mapstructure:"APP_ENV"` // development | production
	APIBaseURL    string        `mapstructure:"API_BASE_URL"`
	APITimeout    time.Duration `mapstructure:"API_TIMEOUT"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionStore  string        `mapstructure:"SESSION_STORE"` // sqlite | redis
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	RedisURL      string        `mapstructure:"REDIS_URL"`
	DBPath        string        `mapstructure:"DB_PATH"`
	TemplatesDir  string        `mapstructure:"TEMPLATES_DIR"`
	StaticDir     string        `mapstructure:"STATIC_DIR"`
	OTLPEndpoint  string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
}

func (c Config) IsDev() bool { return c.Env != "production" }

// Load reads environment variables, then ./.env, then defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	if err := readDotEnv(v, ".env"); err != nil {
		return Config{}, err
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("API_TIMEOUT", "30s")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_STORE", StoreSQLite)
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("DB_PATH", "./dev.db")
	v.SetDefault("TEMPLATES_DIR", "web/templates")
	v.SetDefault("STATIC_DIR", "web/static")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))

	switch cfg.SessionStore {
	case StoreSQLite:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("SESSION_STORE=redis requires REDIS_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}

	if cfg.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is not set")
	}

	return cfg, nil
}
