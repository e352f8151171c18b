package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/telegram"
)

func TestSettingsSingleton(t *testing.T) {
	f := setupTestDB(t)
	svc := NewSettingsService(f.db, telegram.Credentials{})
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(models.SiteSettingsID), first.ID)
	assert.Equal(t, "QR Hotel Service", first.SiteName)

	_, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.SiteSettings{}))

	name := "Grand Hotel"
	updated, err := svc.Update(ctx, SettingsUpdate{SiteName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Grand Hotel", updated.SiteName)
}

func TestTelegramCredentialsPreferDatabase(t *testing.T) {
	f := setupTestDB(t)
	svc := NewSettingsService(f.db, telegram.Credentials{BotToken: "env-token", ChatID: "env-chat"})
	ctx := context.Background()

	creds, err := svc.TelegramCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, telegram.Credentials{BotToken: "env-token", ChatID: "env-chat"}, creds)

	token := "db-token"
	_, err = svc.Update(ctx, SettingsUpdate{TelegramBotToken: &token})
	require.NoError(t, err)

	creds, err = svc.TelegramCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "db-token", creds.BotToken)
	assert.Equal(t, "env-chat", creds.ChatID)
}
