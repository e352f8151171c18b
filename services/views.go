package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const notificationItemPreview = 3

type ItemView struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type LiveOrderView struct {
	ID            uint            `json:"id"`
	Location      string          `json:"location"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        string          `json:"status"`
	StatusDisplay string          `json:"status_display"`
	CreatedAt     string          `json:"created_at"`
	Items         []ItemView      `json:"items"`
	ItemsCount    int             `json:"items_count"`
}

type NotificationView struct {
	OrderID            uint     `json:"order_id"`
	Title              string   `json:"title"`
	Message            string   `json:"message"`
	Items              []string `json:"items"`
	Time               string   `json:"time"`
	Status             string   `json:"status"`
	CreatedAtTimestamp int64    `json:"created_at_timestamp"`
}

func NewLiveOrderView(o *models.Order) LiveOrderView {
	items := make([]ItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemView{Name: item.ProductName(), Quantity: item.Quantity, Price: item.PriceAtMoment})
	}
	return LiveOrderView{
		ID:            o.ID,
		Location:      LocationLabel(o),
		TotalPrice:    o.TotalPrice,
		Status:        o.Status,
		StatusDisplay: models.StatusLabel(o.Status),
		CreatedAt:     o.CreatedAt.Format("15:04:05"),
		Items:         items,
		ItemsCount:    len(items),
	}
}

func NewNotificationView(o *models.Order) NotificationView {
	summary := make([]string, 0, notificationItemPreview+1)
	for i, item := range o.Items {
		if i == notificationItemPreview {
			summary = append(summary, fmt.Sprintf("+%d more", len(o.Items)-notificationItemPreview))
			break
		}
		summary = append(summary, fmt.Sprintf("%s x%d", item.ProductName(), item.Quantity))
	}
	return NotificationView{
		OrderID:            o.ID,
		Title:              fmt.Sprintf("New order #%d", o.ID),
		Message:            fmt.Sprintf("%s • %s", LocationLabel(o), utils.FormatPrice(o.TotalPrice)),
		Items:              summary,
		Time:               o.CreatedAt.Format("15:04:05"),
		Status:             o.Status,
		CreatedAtTimestamp: o.CreatedAt.Unix(),
	}
}

func LiveOrderViews(orders []models.Order) []LiveOrderView {
	views := make([]LiveOrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewLiveOrderView(&orders[i]))
	}
	return views
}

func NotificationViews(orders []models.Order) []NotificationView {
	views := make([]NotificationView, 0, len(orders))
	for i := range orders {
		views = append(views, NewNotificationView(&orders[i]))
	}
	return views
}
