// Package config loads runtime configuration from the environment (and an
// optional .env file) using Viper.
package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvProduction is the APP_ENV value that enables strict checks.
const EnvProduction = "production"

// devJWTSecret is only accepted outside production.
const devJWTSecret = "dev-secret-change-me"

// ErrMissingJWTSecret is returned in production when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

// Config holds all configuration for the server and the purge job.
type Config struct {
	Env       string
	LogLevel  string
	LogFormat string
	HTTPAddr  string

	CORSEnabled    bool
	MetricsEnabled bool

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig

	// MaxSessionsPerUser caps active refresh tokens per user; 0 disables the cap.
	MaxSessionsPerUser int
}

// DatabaseConfig selects and configures the SQL backend.
type DatabaseConfig struct {
	Driver        string // "postgres" or "sqlite"
	DSN           string // overrides the individual postgres fields when set
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	SQLitePath    string
	RunMigrations bool
}

// RedisConfig configures the optional Redis refresh token store.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("CORS_ENABLED", false)
	v.SetDefault("METRICS_ENABLED", true)

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "fitness")
	v.SetDefault("DB_NAME", "fitness")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "./fitness.db")
	v.SetDefault("RUN_MIGRATIONS", true)

	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ISSUER", "fitness-backend")
	v.SetDefault("ACCESS_TOKEN_TTL", 5*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("MAX_SESSIONS_PER_USER", 10)
	return v
}

// FromViper builds a Config from an already populated Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		CORSEnabled:    v.GetBool("CORS_ENABLED"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
		Database: DatabaseConfig{
			Driver:        strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:           v.GetString("DB_DSN"),
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			Name:          v.GetString("DB_NAME"),
			SSLMode:       v.GetString("DB_SSLMODE"),
			SQLitePath:    v.GetString("SQLITE_PATH"),
			RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Issuer:     v.GetString("JWT_ISSUER"),
			AccessTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
			RefreshTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		},
		MaxSessionsPerUser: v.GetInt("MAX_SESSIONS_PER_USER"),
	}

	if cfg.JWT.Secret == "" {
		if cfg.Env == EnvProduction {
			return nil, ErrMissingJWTSecret
		}
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
		cfg.JWT.Secret = devJWTSecret
	}
	return cfg, nil
}
