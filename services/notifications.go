package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/metrics"
	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/telegram"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const (
	DefaultNotifyTimeout = 5 * time.Second

	notifyNewOrder     = "new_order"
	notifyStatusChange = "status_change"
	notifyCallback     = "callback_answer"
)

var (
	errNoMessageRef = errors.New("order has no chat message yet")
	errEditDeferred = errors.New("chat message still being sent")
)

// DeliveryError is a failed chat dispatch. It is logged and counted, never returned to callers.
type DeliveryError struct {
	Kind    string
	OrderID uint
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s notification for order %d: %v", e.Kind, e.OrderID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// orderSlot serializes chat traffic for one order. sending and resync are guarded by the
// bridge mutex, mu by itself.
type orderSlot struct {
	mu      sync.Mutex
	users   int
	sending bool
	resync  bool
}

// NotificationBridge mirrors orders into a chat. Each dispatch runs on its own goroutine
// with a bounded timeout and a single attempt. Dispatches for the same order run one at a
// time and always render the order as currently stored.
type NotificationBridge struct {
	db        *gorm.DB
	messenger telegram.Messenger
	timeout   time.Duration
	metrics   *metrics.Metrics
	wg        sync.WaitGroup

	mu    sync.Mutex
	slots map[uint]*orderSlot
}

func NewNotificationBridge(db *gorm.DB, messenger telegram.Messenger, timeout time.Duration, m *metrics.Metrics) *NotificationBridge {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &NotificationBridge{
		db:        db,
		messenger: messenger,
		timeout:   timeout,
		metrics:   m,
		slots:     make(map[uint]*orderSlot),
	}
}

func (b *NotificationBridge) NotifyNewOrder(orderID uint) {
	b.dispatch(notifyNewOrder, orderID, b.sendNewOrder)
}

func (b *NotificationBridge) NotifyStatusChange(orderID uint) {
	b.dispatch(notifyStatusChange, orderID, b.editOrder)
}

// AnswerCallback acknowledges a bot button press with the order's new status.
func (b *NotificationBridge) AnswerCallback(callbackID string, order *models.Order) {
	if callbackID == "" || order == nil {
		return
	}
	text := "Status changed to: " + models.StatusLabel(order.Status)
	b.dispatch(notifyCallback, order.ID, func(ctx context.Context, _ uint) error {
		return b.messenger.AnswerCallback(ctx, callbackID, text)
	})
}

// Wait blocks until every in-flight dispatch has finished.
func (b *NotificationBridge) Wait() {
	b.wg.Wait()
}

func (b *NotificationBridge) dispatch(kind string, orderID uint, fn func(ctx context.Context, orderID uint) error) {
	slot := b.acquire(orderID, kind == notifyNewOrder)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.release(orderID)

		slot.mu.Lock()
		defer slot.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		b.report(kind, orderID, fn(ctx, orderID))
	}()
}

// acquire pins the order's slot until release. It runs on the caller's goroutine so a send
// is marked in flight before any later status change is dispatched.
func (b *NotificationBridge) acquire(orderID uint, sending bool) *orderSlot {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.slots[orderID]
	if !ok {
		slot = &orderSlot{}
		b.slots[orderID] = slot
	}
	slot.users++
	if sending {
		slot.sending = true
	}
	return slot
}

func (b *NotificationBridge) release(orderID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot := b.slots[orderID]
	slot.users--
	if slot.users == 0 {
		delete(b.slots, orderID)
	}
}

// deferEdit records that an edit arrived while the first message is still in flight.
func (b *NotificationBridge) deferEdit(orderID uint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot := b.slots[orderID]
	if slot == nil || !slot.sending {
		return false
	}
	slot.resync = true
	return true
}

// finishSend clears the in-flight mark and reports whether an edit was deferred meanwhile.
func (b *NotificationBridge) finishSend(orderID uint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot := b.slots[orderID]
	if slot == nil {
		return false
	}
	resync := slot.resync
	slot.sending, slot.resync = false, false
	return resync
}

func (b *NotificationBridge) report(kind string, orderID uint, err error) {
	fields := logrus.Fields{"order_id": orderID, "kind": kind}
	switch {
	case err == nil:
		b.metrics.NotificationResult(kind, "sent")
	case errors.Is(err, errEditDeferred):
		b.metrics.NotificationResult(kind, "deferred")
		utils.InfoLogger.WithFields(fields).Debug("edit deferred until the order message is sent")
	case errors.Is(err, telegram.ErrNotConfigured), errors.Is(err, errNoMessageRef):
		b.metrics.NotificationResult(kind, "skipped")
		utils.InfoLogger.WithFields(fields).Debugf("notification skipped: %v", err)
	default:
		b.metrics.NotificationResult(kind, "failed")
		derr := &DeliveryError{Kind: kind, OrderID: orderID, Err: err}
		utils.ErrorLogger.WithFields(fields).Error(derr.Error())
	}
}

// sendNewOrder posts the order message, then applies at most one edit for status changes
// that arrived while the send was in flight.
func (b *NotificationBridge) sendNewOrder(ctx context.Context, orderID uint) error {
	err := b.send(ctx, orderID)
	if !b.finishSend(orderID) || err != nil {
		return err
	}
	if err := b.editOrder(ctx, orderID); err != nil {
		return fmt.Errorf("apply deferred status change: %w", err)
	}
	return nil
}

func (b *NotificationBridge) send(ctx context.Context, orderID uint) error {
	order, err := b.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	ref, err := b.messenger.Send(ctx, RenderOrderMessage(order, true), OrderKeyboard(order))
	if err != nil {
		return err
	}
	err = b.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("external_message_ref", ref).Error
	if err != nil {
		return fmt.Errorf("store message ref: %w", err)
	}
	return nil
}

func (b *NotificationBridge) editOrder(ctx context.Context, orderID uint) error {
	order, err := b.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ExternalMessageRef == nil || *order.ExternalMessageRef == "" {
		if b.deferEdit(orderID) {
			return errEditDeferred
		}
		return errNoMessageRef
	}
	return b.messenger.Edit(ctx, *order.ExternalMessageRef, RenderOrderMessage(order, false), OrderKeyboard(order))
}

func (b *NotificationBridge) loadOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := preloadOrder(b.db.WithContext(ctx)).First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}
