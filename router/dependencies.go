package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/cart"
	"github.com/yeremiapane/qr-hotel-menu/catalog"
	"github.com/yeremiapane/qr-hotel-menu/config"
	"github.com/yeremiapane/qr-hotel-menu/events"
	"github.com/yeremiapane/qr-hotel-menu/kds"
	"github.com/yeremiapane/qr-hotel-menu/metrics"
	"github.com/yeremiapane/qr-hotel-menu/middlewares"
	"github.com/yeremiapane/qr-hotel-menu/services"
	"github.com/yeremiapane/qr-hotel-menu/telegram"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

// Dependencies is the wired application graph shared by the router and main.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Metrics   *metrics.Metrics
	Hub       *kds.Hub
	Catalog   *catalog.GormCatalog
	Carts     *cart.Service
	Locations *services.LocationService
	Settings  *services.SettingsService
	Bridge    *services.NotificationBridge
	Orders    *services.OrderService
	Feed      *services.LiveFeed
	Sessions  *middlewares.SessionManager

	redis *redis.Client
	kafka *events.KafkaPublisher
}

// NewDependencies builds every service from cfg. Redis and Kafka are used only when configured.
func NewDependencies(db *gorm.DB, cfg *config.Config) (*Dependencies, error) {
	d := &Dependencies{
		Config:    cfg,
		DB:        db,
		Metrics:   metrics.New(),
		Hub:       kds.NewHub(),
		Catalog:   catalog.NewGormCatalog(db),
		Locations: services.NewLocationService(db),
		Feed:      services.NewLiveFeed(db),
		Sessions:  middlewares.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookie),
	}

	var store cart.Store = cart.NewMemoryStore()
	if cfg.RedisAddr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := d.redis.Ping(context.Background()).Err(); err != nil {
			d.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		store = cart.NewRedisStore(d.redis, cfg.CartTTL)
		utils.InfoLogger.Infof("cart store: redis at %s", cfg.RedisAddr)
	}
	d.Carts = cart.NewService(store, d.Catalog)

	d.Settings = services.NewSettingsService(db, telegram.Credentials{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
	})
	messenger := telegram.NewClient(cfg.TelegramAPIURL, d.Settings.TelegramCredentials)
	d.Bridge = services.NewNotificationBridge(db, messenger, cfg.NotifyTimeout, d.Metrics)

	publishers := events.FanOut{d.Hub}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		d.kafka = events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		publishers = append(publishers, d.kafka)
		utils.InfoLogger.Infof("order events: kafka topic %s", cfg.KafkaTopic)
	}

	d.Orders = &services.OrderService{
		DB:       db,
		Carts:    d.Carts,
		Catalog:  d.Catalog,
		Notifier: d.Bridge,
		Events:   publishers,
		Metrics:  d.Metrics,
	}
	return d, nil
}

// Close drains pending notifications and releases external connections.
func (d *Dependencies) Close() error {
	d.Bridge.Wait()
	var errs []error
	if d.kafka != nil {
		errs = append(errs, d.kafka.Close())
	}
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	return errors.Join(errs...)
}
