package config

import (
	"fmt"
	"time"

	redis "github.com/ollxel/geotimer-bot/pkg/redis"
)

// Config holds runtime configuration for the geotimer bot.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Logger   LoggerConfig   `mapstructure:"logger" validate:"required"`
	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    redis.Config   `mapstructure:"redis"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Triggers TriggersConfig `mapstructure:"triggers"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// LoggerConfig controls the slog handler setup.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// File enables rotating file output when non-empty.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
	// WebhookURL is required only in webhook mode.
	WebhookURL string `mapstructure:"webhook_url"`
}

// ServerConfig configures the ops HTTP server (metrics and health).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// GeocoderConfig configures the forward-geocoding collaborator.
type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// TriggersConfig bounds user-authored geofences.
type TriggersConfig struct {
	MaxRadiusMeters int `mapstructure:"max_radius_meters" validate:"gt=0"`
}

// LimitsConfig configures per-user rate limiting.
type LimitsConfig struct {
	PerUserLimit int           `mapstructure:"per_user_limit"`
	Window       time.Duration `mapstructure:"window"`
	Whitelist    []int64       `mapstructure:"whitelist"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
