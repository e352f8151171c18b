package controllers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/telegram"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type BotActionHandler interface {
	HandleBotAction(ctx context.Context, action string, id uint) (*models.Order, error)
}

type CallbackAnswerer interface {
	AnswerCallback(callbackID string, order *models.Order)
}

// WebhookController receives Telegram updates. Every request is acknowledged with 200,
// including ones it ignores. Updates without the configured secret token are logged and dropped.
type WebhookController struct {
	Orders  BotActionHandler
	Answers CallbackAnswerer
	Secret  string
}

func (wc *WebhookController) TelegramWebhook(c *gin.Context) {
	if wc.Secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(telegramSecretHeader)), []byte(wc.Secret)) != 1 {
		utils.ErrorLogger.WithField("client_ip", c.ClientIP()).Warn("telegram webhook: secret token mismatch, update ignored")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.ErrorLogger.Errorf("telegram webhook: malformed update: %v", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	if update.CallbackQuery == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	action, orderID, err := telegram.ParseOrderAction(update.CallbackQuery.Data)
	if err != nil {
		utils.InfoLogger.WithField("update_id", update.UpdateID).Infof("telegram webhook: %v", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	order, err := wc.Orders.HandleBotAction(c.Request.Context(), action, orderID)
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": orderID,
			"action":   action,
		}).Errorf("telegram webhook: %v", err)
	}
	if order != nil && wc.Answers != nil {
		wc.Answers.AnswerCallback(update.CallbackQuery.ID, order)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
