package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/cart"
	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/session"
)

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := setupTestDB(t)
	svc, notifier, _ := newOrderService(f)

	_, err := svc.CreateOrder(context.Background(), session.New(), models.RoomRef(f.room.ID))
	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Zero(t, countRows(t, f.db, &models.Order{}))
	assert.Zero(t, countRows(t, f.db, &models.OrderItem{}))
	assert.Empty(t, notifier.created)
}

func TestCreateOrderRejectsOutOfRangeQuantities(t *testing.T) {
	f := setupTestDB(t)
	svc, notifier, _ := newOrderService(f)
	ctx := context.Background()

	for _, qty := range []int{0, -3, cart.MaxLineQuantity + 1, math.MinInt} {
		sess := session.New()
		stored := cart.Cart{Entries: []cart.Entry{
			{ProductID: f.coffee.ID, Quantity: 1, UnitPrice: dec("30")},
			{ProductID: f.pancakes.ID, Quantity: qty, UnitPrice: dec("50")},
		}}
		require.NoError(t, svc.Carts.Restore(ctx, sess, stored))

		_, err := svc.CreateOrder(ctx, sess, models.RoomRef(f.room.ID))
		assert.ErrorIs(t, err, models.ErrInvalidQuantity, "quantity %d", qty)

		snapshot, err := svc.Carts.Snapshot(ctx, sess)
		require.NoError(t, err)
		assert.Len(t, snapshot.Entries, 2)
	}
	assert.Zero(t, countRows(t, f.db, &models.Order{}))
	assert.Zero(t, countRows(t, f.db, &models.OrderItem{}))
	assert.Empty(t, notifier.created)
}

func TestCreateOrderPersistsSnapshotAndClearsCart(t *testing.T) {
	f := setupTestDB(t)
	svc, notifier, publisher := newOrderService(f)
	ctx := context.Background()
	sess := session.New()

	_, err := svc.Carts.Add(ctx, sess, f.pancakes.ID, 2)
	require.NoError(t, err)
	view, err := svc.Carts.Add(ctx, sess, f.coffee.ID, 1)
	require.NoError(t, err)
	require.True(t, dec("130").Equal(view.Total))

	order, err := svc.CreateOrder(ctx, sess, models.RoomRef(f.room.ID))
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, f.db.Preload("Items").First(&stored, order.ID).Error)
	assert.True(t, dec("130").Equal(stored.TotalPrice))
	assert.Equal(t, models.StatusNew, stored.Status)
	assert.False(t, stored.IsArchived)
	assert.False(t, stored.IsViewed)
	assert.Equal(t, sess.Key, stored.SessionKey)
	assert.Equal(t, models.RoomRef(f.room.ID), stored.Location())
	assert.Nil(t, stored.ExternalMessageRef)
	require.Len(t, stored.Items, 2)

	view, err = svc.Carts.Get(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Count)

	assert.Equal(t, []uint{order.ID}, notifier.created)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventOrderCreated, publisher.events[0].Type)
}

func TestCreateOrderKeepsPriceFromAddTime(t *testing.T) {
	f := setupTestDB(t)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()
	sess := session.New()

	require.NoError(t, f.db.Model(&f.pancakes).Update("price", dec("100")).Error)
	_, err := svc.Carts.Add(ctx, sess, f.pancakes.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&f.pancakes).Update("price", dec("150")).Error)

	order, err := svc.CreateOrder(ctx, sess, models.NoLocation())
	require.NoError(t, err)

	var item models.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.True(t, dec("100").Equal(item.PriceAtMoment))
	assert.True(t, dec("100").Equal(order.TotalPrice))
	assert.True(t, order.Location().IsNone())
}

func TestCreateOrderRollsBackAndKeepsCart(t *testing.T) {
	f := setupTestDB(t)
	svc, notifier, _ := newOrderService(f)
	ctx := context.Background()
	sess := session.New()

	_, err := svc.Carts.Add(ctx, sess, f.pancakes.ID, 2)
	require.NoError(t, err)

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_items", func(db *gorm.DB) {
		if db.Statement.Table == "order_items" {
			db.AddError(errors.New("disk full"))
		}
	}))

	_, err = svc.CreateOrder(ctx, sess, models.FloorRef(f.floor.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Zero(t, countRows(t, f.db, &models.Order{}))
	assert.Zero(t, countRows(t, f.db, &models.OrderItem{}))
	view, err := svc.Carts.Get(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)
	assert.Empty(t, notifier.created)
}

func TestCreateOrderWithDeletedProduct(t *testing.T) {
	f := setupTestDB(t)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()
	sess := session.New()

	_, err := svc.Carts.Add(ctx, sess, f.coffee.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&f.coffee).Error)

	_, err = svc.CreateOrder(ctx, sess, models.RoomRef(f.room.ID))
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, countRows(t, f.db, &models.Order{}))

	snapshot, err := svc.Carts.Snapshot(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, snapshot.Entries, 1)
}

func TestCreateOrderChargesUnavailableLine(t *testing.T) {
	f := setupTestDB(t)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()
	sess := session.New()

	_, err := svc.Carts.Add(ctx, sess, f.coffee.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&f.coffee).Update("is_available", false).Error)

	order, err := svc.CreateOrder(ctx, sess, models.BuildingRef(f.building.ID))
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(order.TotalPrice))
}

func placeOrder(t *testing.T, svc *OrderService, f *fixture) *models.Order {
	t.Helper()
	ctx := context.Background()
	sess := session.New()
	_, err := svc.Carts.Add(ctx, sess, f.pancakes.ID, 1)
	require.NoError(t, err)
	order, err := svc.CreateOrder(ctx, sess, models.RoomRef(f.room.ID))
	require.NoError(t, err)
	return order
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := setupTestDB(t)
	svc, notifier, publisher := newOrderService(f)
	ctx := context.Background()
	order := placeOrder(t, svc, f)

	updated, err := svc.UpdateStatus(ctx, order.ID, models.StatusCooking)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCooking, updated.Status)
	assert.True(t, updated.IsViewed)
	assert.False(t, updated.IsArchived)

	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusDone)
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusDone, stored.Status)
	assert.True(t, stored.IsArchived)
	assert.True(t, stored.IsViewed)

	assert.Equal(t, []uint{order.ID, order.ID}, notifier.statuses)
	assert.Equal(t, models.EventOrderUpdated, publisher.events[len(publisher.events)-1].Type)
}

func TestUpdateStatusArchivedArchives(t *testing.T) {
	f := setupTestDB(t)
	svc, _, _ := newOrderService(f)
	order := placeOrder(t, svc, f)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.StatusArchived)
	require.NoError(t, err)
	assert.True(t, updated.IsArchived)
}

func TestUpdateStatusInvalidLeavesOrderUnchanged(t *testing.T) {
	f := setupTestDB(t)
	svc, notifier, _ := newOrderService(f)
	order := placeOrder(t, svc, f)

	var before models.Order
	require.NoError(t, f.db.First(&before, order.ID).Error)

	_, err := svc.UpdateStatus(context.Background(), order.ID, "paid")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	var after models.Order
	require.NoError(t, f.db.First(&after, order.ID).Error)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.IsViewed, after.IsViewed)
	assert.Equal(t, before.IsArchived, after.IsArchived)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	assert.Empty(t, notifier.statuses)

	_, err = svc.UpdateStatus(context.Background(), 9999, models.StatusDone)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarkViewedIsIdempotent(t *testing.T) {
	f := setupTestDB(t)
	svc, _, publisher := newOrderService(f)
	ctx := context.Background()
	order := placeOrder(t, svc, f)

	require.NoError(t, svc.MarkViewed(ctx, order.ID))
	var once models.Order
	require.NoError(t, f.db.First(&once, order.ID).Error)

	require.NoError(t, svc.MarkViewed(ctx, order.ID))
	var twice models.Order
	require.NoError(t, f.db.First(&twice, order.ID).Error)

	assert.True(t, once.IsViewed)
	assert.Equal(t, models.StatusNew, twice.Status)
	assert.Equal(t, once.IsViewed, twice.IsViewed)
	assert.True(t, once.UpdatedAt.Equal(twice.UpdatedAt))
	assert.Len(t, publisher.events, 2)

	assert.ErrorIs(t, svc.MarkViewed(ctx, 4242), models.ErrNotFound)
}

func TestHandleBotAction(t *testing.T) {
	f := setupTestDB(t)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()

	tests := []struct {
		action   string
		status   string
		archived bool
	}{
		{"accept", models.StatusCooking, false},
		{"cooking", models.StatusCooking, false},
		{"done", models.StatusDone, true},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			order := placeOrder(t, svc, f)
			updated, err := svc.HandleBotAction(ctx, tt.action, order.ID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, tt.status, updated.Status)
			assert.Equal(t, tt.archived, updated.IsArchived)
		})
	}

	order := placeOrder(t, svc, f)
	updated, err := svc.HandleBotAction(ctx, "refund", order.ID)
	require.NoError(t, err)
	assert.Nil(t, updated)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusNew, stored.Status)
}

func TestActiveOrderAndGetOrderAt(t *testing.T) {
	f := setupTestDB(t)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()
	sess := session.New()
	roomRef := models.RoomRef(f.room.ID)

	active, err := svc.ActiveOrder(ctx, sess, roomRef)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = svc.Carts.Add(ctx, sess, f.pancakes.ID, 1)
	require.NoError(t, err)
	order, err := svc.CreateOrder(ctx, sess, roomRef)
	require.NoError(t, err)

	active, err = svc.ActiveOrder(ctx, sess, roomRef)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, order.ID, active.ID)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "Pancakes", active.Items[0].ProductName())

	other, err := svc.ActiveOrder(ctx, session.New(), roomRef)
	require.NoError(t, err)
	assert.Nil(t, other)

	got, err := svc.GetOrderAt(ctx, order.ID, roomRef)
	require.NoError(t, err)
	require.NotNil(t, got.Room)
	assert.Equal(t, "Building: A, Floor: 2, Room: 201", LocationLabel(got))

	_, err = svc.GetOrderAt(ctx, order.ID, models.FloorRef(f.floor.ID))
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusDone)
	require.NoError(t, err)
	active, err = svc.ActiveOrder(ctx, sess, roomRef)
	require.NoError(t, err)
	assert.Nil(t, active)
}
