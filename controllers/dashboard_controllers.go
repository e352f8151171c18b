package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/services"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

type AvailabilityToggler interface {
	ToggleAvailability(ctx context.Context, id uint) (bool, error)
}

// DashboardController backs the staff screens and their polling endpoints.
type DashboardController struct {
	Orders   *services.OrderService
	Feed     *services.LiveFeed
	Products AvailabilityToggler
	Settings *services.SettingsService
}

type statusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

// LiveOrders -> GET /api/orders/live/?status=
func (dc *DashboardController) LiveOrders(c *gin.Context) {
	orders, err := dc.Feed.ListLive(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Live orders", gin.H{
		"orders": services.LiveOrderViews(orders),
	})
}

func (dc *DashboardController) UnviewedNotifications(c *gin.Context) {
	orders, err := dc.Feed.ListUnviewed(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Unviewed orders", gin.H{
		"notifications": services.NotificationViews(orders),
		"count":         len(orders),
	})
}

func (dc *DashboardController) MarkViewed(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := dc.Orders.MarkViewed(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order marked as viewed", gin.H{"order_id": id})
}

func (dc *DashboardController) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("status is required"))
		return
	}
	order, err := dc.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", gin.H{
		"order_id":       order.ID,
		"status":         order.Status,
		"status_display": models.StatusLabel(order.Status),
		"is_archived":    order.IsArchived,
		"is_viewed":      order.IsViewed,
	})
}

// ToggleProduct moves a product on or off the stop-list.
func (dc *DashboardController) ToggleProduct(c *gin.Context) {
	id, err := parseIDParam(c, "product_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	available, err := dc.Products.ToggleAvailability(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product availability updated", gin.H{
		"product_id":   id,
		"is_available": available,
	})
}

func (dc *DashboardController) Stats(c *gin.Context) {
	stats, err := dc.Feed.Stats(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// Statistics reports revenue windows, the last week's daily totals and best-selling products.
func (dc *DashboardController) Statistics(c *gin.Context) {
	stats, err := dc.Feed.Statistics(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", stats)
}

func (dc *DashboardController) GetSettings(c *gin.Context) {
	dc.respondSettings(c, "Site settings")
}

func (dc *DashboardController) UpdateSettings(c *gin.Context) {
	var req services.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid settings payload"))
		return
	}
	if _, err := dc.Settings.Update(c.Request.Context(), req); err != nil {
		respondServiceError(c, err)
		return
	}
	dc.respondSettings(c, "Site settings updated")
}

func (dc *DashboardController) respondSettings(c *gin.Context, message string) {
	ctx := c.Request.Context()
	settings, err := dc.Settings.Get(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	creds, err := dc.Settings.TelegramCredentials(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"settings":            settings,
		"telegram_configured": creds.Valid(),
	})
}
