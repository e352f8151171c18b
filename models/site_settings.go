package models

import "time"

// SiteSettings is a single-row table (ID is always 1).
type SiteSettings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SiteName         string    `gorm:"type:varchar(100);not null;default:'QR Hotel Service'" json:"site_name"`
	TelegramBotToken string    `gorm:"type:varchar(200)" json:"-"`
	TelegramChatID   string    `gorm:"type:varchar(100)" json:"telegram_chat_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const SiteSettingsID = 1
