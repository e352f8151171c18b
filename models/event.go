package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
)

// OrderEvent is pushed to dashboard sockets and the optional event stream.
type OrderEvent struct {
	Type       string          `json:"type"`
	OrderID    uint            `json:"order_id"`
	Status     string          `json:"status"`
	IsArchived bool            `json:"is_archived"`
	IsViewed   bool            `json:"is_viewed"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Location   LocationRef     `json:"location"`
	At         time.Time       `json:"at"`
}

func NewOrderEvent(eventType string, o *Order) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		Status:     o.Status,
		IsArchived: o.IsArchived,
		IsViewed:   o.IsViewed,
		TotalPrice: o.TotalPrice,
		Location:   o.Location(),
		At:         time.Now(),
	}
}
