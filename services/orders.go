package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/qr-hotel-menu/cart"
	"github.com/yeremiapane/qr-hotel-menu/catalog"
	"github.com/yeremiapane/qr-hotel-menu/events"
	"github.com/yeremiapane/qr-hotel-menu/metrics"
	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/session"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const (
	SourceDashboard = "dashboard"
	SourceBot       = "bot"
)

// Bot button actions carried in callback data.
const (
	ActionAccept  = "accept"
	ActionCooking = "cooking"
	ActionDone    = "done"
)

var botActions = map[string]string{
	ActionAccept:  models.StatusCooking,
	ActionCooking: models.StatusCooking,
	ActionDone:    models.StatusDone,
}

// Notifier is the chat side of order changes. Calls must not block on delivery.
type Notifier interface {
	NotifyNewOrder(orderID uint)
	NotifyStatusChange(orderID uint)
}

type OrderService struct {
	DB       *gorm.DB
	Carts    *cart.Service
	Catalog  catalog.Catalog
	Notifier Notifier
	Events   events.Publisher
	Metrics  *metrics.Metrics
}

// CreateOrder turns the session's cart into an order. The order, its items and the cart
// clear succeed or fail together.
func (s *OrderService) CreateOrder(ctx context.Context, sess session.Session, loc models.LocationRef) (*models.Order, error) {
	snapshot, err := s.Carts.Snapshot(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if snapshot.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(snapshot.Entries))
	for _, e := range snapshot.Entries {
		if !cart.ValidQuantity(e.Quantity) {
			return nil, fmt.Errorf("product %d quantity %d: %w", e.ProductID, e.Quantity, models.ErrInvalidQuantity)
		}
		if _, err := s.Catalog.GetProduct(ctx, e.ProductID); err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID:     e.ProductID,
			Quantity:      e.Quantity,
			PriceAtMoment: e.UnitPrice,
		})
	}

	order := &models.Order{
		TotalPrice: snapshot.Total(),
		Status:     models.StatusNew,
		SessionKey: sess.Key,
	}
	order.SetLocation(loc)

	cleared := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		if err := s.Carts.Clear(ctx, sess); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		cleared = true
		return nil
	})
	if err != nil {
		if cleared {
			if rerr := s.Carts.Restore(ctx, sess, snapshot); rerr != nil {
				utils.ErrorLogger.WithField("session", sess.Key).Errorf("restore cart after failed checkout: %v", rerr)
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Items = items

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"total":    order.TotalPrice.StringFixed(2),
		"items":    len(items),
		"location": loc.Kind,
	}).Info("order created")
	s.Metrics.OrderCreated()
	if s.Notifier != nil {
		s.Notifier.NotifyNewOrder(order.ID)
	}
	s.publish(ctx, models.EventOrderCreated, order)
	return order, nil
}

// UpdateStatus is the staff-driven transition.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	return s.transition(ctx, id, status, SourceDashboard)
}

// HandleBotAction applies a chat button press. Unknown actions return (nil, nil).
func (s *OrderService) HandleBotAction(ctx context.Context, action string, id uint) (*models.Order, error) {
	status, ok := botActions[action]
	if !ok {
		utils.InfoLogger.WithFields(logrus.Fields{"action": action, "order_id": id}).Info("ignoring unknown bot action")
		return nil, nil
	}
	return s.transition(ctx, id, status, SourceBot)
}

func (s *OrderService) transition(ctx context.Context, id uint, status, source string) (*models.Order, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, models.ErrInvalidStatus)
	}
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	order.ApplyStatus(status)
	err = s.DB.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"status":      order.Status,
		"is_archived": order.IsArchived,
		"is_viewed":   order.IsViewed,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update order %d status: %w", id, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"status":   status,
		"source":   source,
	}).Info("order status changed")
	s.Metrics.StatusChanged(status, source)
	if s.Notifier != nil {
		s.Notifier.NotifyStatusChange(order.ID)
	}
	s.publish(ctx, models.EventOrderUpdated, order)
	return order, nil
}

// MarkViewed sets only the viewed flag. Repeated calls change nothing.
func (s *OrderService) MarkViewed(ctx context.Context, id uint) error {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.IsViewed {
		return nil
	}
	if err := s.DB.WithContext(ctx).Model(order).UpdateColumn("is_viewed", true).Error; err != nil {
		return fmt.Errorf("mark order %d viewed: %w", id, err)
	}
	order.IsViewed = true
	s.publish(ctx, models.EventOrderUpdated, order)
	return nil
}

// ActiveOrder returns the session's newest unfinished order at loc, or nil.
func (s *OrderService) ActiveOrder(ctx context.Context, sess session.Session, loc models.LocationRef) (*models.Order, error) {
	if sess.IsZero() || loc.IsNone() {
		return nil, nil
	}
	var order models.Order
	err := preloadOrder(s.DB.WithContext(ctx)).
		Where("session_key = ? AND is_archived = ?", sess.Key, false).
		Where(loc.Column()+" = ?", loc.ID).
		Where("status IN ?", []string{models.StatusNew, models.StatusCooking}).
		Order("created_at desc, id desc").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active order: %w", err)
	}
	return &order, nil
}

// GetOrderAt loads an order for a guest status page. Orders placed elsewhere are not found.
func (s *OrderService) GetOrderAt(ctx context.Context, id uint, loc models.LocationRef) (*models.Order, error) {
	var order models.Order
	err := preloadOrder(s.DB.WithContext(ctx)).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && order.Location() != loc) {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}
	return &order, nil
}

func (s *OrderService) findOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}
	return &order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, models.NewOrderEvent(eventType, order)); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Errorf("publish order event: %v", err)
	}
}

// preloadOrder loads items (deleted products included) and the location hierarchy.
func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Room.Floor.Building").
		Preload("Floor.Building").
		Preload("Building")
}
