// Package config loads and validates leadgate settings from the environment
// and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	strutil "leadgate/pkg/platform/strings"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// Env is the application environment; "production" switches logs to JSON.
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// ShutdownTimeout bounds HTTP drain plus in-flight notification drain.
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`

	// StoreDriver selects the record store: memory, postgres, redis or mongo.
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	// DatabaseURL is the Postgres DSN used by the postgres driver and migrate.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DatabaseTable is the table holding submitted leads.
	DatabaseTable string `mapstructure:"DATABASE_TABLE"`
	// RedisURL is the redis:// URL used by the redis driver.
	RedisURL string `mapstructure:"REDIS_URL"`
	// MongoURI and MongoDatabase/MongoCollection locate the mongo collection.
	MongoURI        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`
	MongoCollection string `mapstructure:"MONGO_COLLECTION"`

	// TrustedIPHeader is the proxy-set header carrying the client IP.
	TrustedIPHeader string `mapstructure:"TRUSTED_IP_HEADER"`
	// RateLimitMaxPerIP is the number of stored submissions after which an IP is refused.
	RateLimitMaxPerIP int `mapstructure:"RATE_LIMIT_MAX_PER_IP"`

	// Telegram notification sink; disabled with a warning when either is empty.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `mapstructure:"TELEGRAM_CHAT_ID"`
	TelegramAPIBase  string `mapstructure:"TELEGRAM_API_BASE"`
	// NotifyTimeout bounds each outbound notification.
	NotifyTimeout time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	// NotifyTitle is the heading of the notification message.
	NotifyTitle string `mapstructure:"NOTIFY_TITLE"`

	// KafkaBrokers is a comma-separated list; empty disables the kafka sink.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`
}

var defaults = map[string]any{
	"HTTP_ADDR":             ":8080",
	"APP_ENV":               "development",
	"LOG_LEVEL":             "info",
	"SHUTDOWN_TIMEOUT":      "15s",
	"METRICS_ENABLED":       true,
	"STORE_DRIVER":          DriverMemory,
	"DATABASE_URL":          "",
	"DATABASE_TABLE":        "contacts",
	"REDIS_URL":             "",
	"MONGO_URI":             "",
	"MONGO_DATABASE":        "leadgate",
	"MONGO_COLLECTION":      "contacts",
	"TRUSTED_IP_HEADER":     "CF-Connecting-IP",
	"RATE_LIMIT_MAX_PER_IP": 5,
	"TELEGRAM_BOT_TOKEN":    "",
	"TELEGRAM_CHAT_ID":      "",
	"TELEGRAM_API_BASE":     "https://api.telegram.org",
	"NOTIFY_TIMEOUT":        "10s",
	"NOTIFY_TITLE":          "New lead",
	"KAFKA_BROKERS":         "",
	"KAFKA_TOPIC":           "leads.accepted",
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.RateLimitMaxPerIP < 1 {
		return errors.New("config: RATE_LIMIT_MAX_PER_IP must be at least 1")
	}
	if c.NotifyTimeout <= 0 {
		return errors.New("config: NOTIFY_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set when STORE_DRIVER=postgres")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL must be set when STORE_DRIVER=redis")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGO_URI must be set when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// KafkaBrokersList returns broker addresses from the comma-separated setting.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return strutil.SplitList(c.KafkaBrokers, ",")
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
