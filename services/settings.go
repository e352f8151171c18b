package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/telegram"
)

// SettingsService owns the single SiteSettings row. Env credentials are the fallback
// for fields left empty in the database.
type SettingsService struct {
	DB       *gorm.DB
	Fallback telegram.Credentials
}

func NewSettingsService(db *gorm.DB, fallback telegram.Credentials) *SettingsService {
	return &SettingsService{DB: db, Fallback: fallback}
}

func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	settings := models.SiteSettings{ID: models.SiteSettingsID}
	if err := s.DB.WithContext(ctx).FirstOrCreate(&settings, models.SiteSettings{ID: models.SiteSettingsID}).Error; err != nil {
		return nil, fmt.Errorf("load site settings: %w", err)
	}
	return &settings, nil
}

type SettingsUpdate struct {
	SiteName         *string `json:"site_name"`
	TelegramBotToken *string `json:"telegram_bot_token"`
	TelegramChatID   *string `json:"telegram_chat_id"`
}

// Update applies only the fields present in u.
func (s *SettingsService) Update(ctx context.Context, u SettingsUpdate) (*models.SiteSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if u.SiteName != nil {
		changes["site_name"] = *u.SiteName
	}
	if u.TelegramBotToken != nil {
		changes["telegram_bot_token"] = *u.TelegramBotToken
	}
	if u.TelegramChatID != nil {
		changes["telegram_chat_id"] = *u.TelegramChatID
	}
	if len(changes) == 0 {
		return settings, nil
	}
	if err := s.DB.WithContext(ctx).Model(settings).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update site settings: %w", err)
	}
	return s.Get(ctx)
}

// TelegramCredentials implements telegram.CredentialsFunc.
func (s *SettingsService) TelegramCredentials(ctx context.Context) (telegram.Credentials, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return telegram.Credentials{}, err
	}
	creds := s.Fallback
	if settings.TelegramBotToken != "" {
		creds.BotToken = settings.TelegramBotToken
	}
	if settings.TelegramChatID != "" {
		creds.ChatID = settings.TelegramChatID
	}
	return creds, nil
}
