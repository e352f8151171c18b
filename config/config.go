// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/database"
	"github.com/yeremiapane/qr-hotel-menu/events"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"hotel.db"`
	DBDebug  bool   `envconfig:"DB_DEBUG" default:"false"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CartTTL       time.Duration `envconfig:"CART_TTL" default:"72h"`

	TelegramBotToken      string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID        string        `envconfig:"TELEGRAM_CHAT_ID"`
	TelegramAPIURL        string        `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	TelegramWebhookSecret string        `envconfig:"TELEGRAM_WEBHOOK_SECRET"`
	NotifyTimeout         time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"5s"`

	SessionSecret string        `envconfig:"SESSION_SECRET" default:"change-me"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SecureCookie  bool          `envconfig:"SECURE_COOKIE" default:"false"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"hotel.orders"`

	GuestRateLimit float64 `envconfig:"GUEST_RATE_LIMIT" default:"5"`
	GuestRateBurst int     `envconfig:"GUEST_RATE_BURST" default:"20"`
}

// Load reads .env when present, then decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if cfg.SessionSecret == "change-me" {
		utils.InfoLogger.Warn("SESSION_SECRET is not set; guest sessions use the default secret")
	}
	return &cfg, nil
}

func (c *Config) KafkaBrokerList() []string {
	return events.ParseBrokers(c.KafkaBrokers)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// InitDB opens the configured database and migrates the schema.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBDebug)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	utils.InfoLogger.Infof("connected to %s database", cfg.DBDriver)
	return db, nil
}
