package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/qr-hotel-menu/models"
)

func seedOrders(t *testing.T, f *fixture, n int) []models.Order {
	t.Helper()
	base := time.Now().Add(-time.Duration(n+1) * time.Second)
	orders := make([]models.Order, 0, n)
	for i := 0; i < n; i++ {
		o := models.Order{
			TotalPrice: dec("10"),
			Status:     models.StatusNew,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
			Items:      []models.OrderItem{{ProductID: f.coffee.ID, Quantity: 1, PriceAtMoment: dec("10")}},
		}
		o.SetLocation(models.RoomRef(f.room.ID))
		require.NoError(t, f.db.Create(&o).Error)
		orders = append(orders, o)
	}
	return orders
}

func TestListLiveCapsAndOrdersNewestFirst(t *testing.T) {
	f := setupTestDB(t)
	feed := NewLiveFeed(f.db)
	orders := seedOrders(t, f, LiveFeedLimit+5)

	live, err := feed.ListLive(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, live, LiveFeedLimit)
	assert.Equal(t, orders[len(orders)-1].ID, live[0].ID)
	assert.True(t, live[0].CreatedAt.After(live[1].CreatedAt))
	require.Len(t, live[0].Items, 1)
	assert.Equal(t, "Coffee", live[0].Items[0].ProductName())
	assert.NotNil(t, live[0].Room)
}

func TestListLiveFiltersArchivedAndStatus(t *testing.T) {
	f := setupTestDB(t)
	feed := NewLiveFeed(f.db)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()
	orders := seedOrders(t, f, 3)

	_, err := svc.UpdateStatus(ctx, orders[0].ID, models.StatusDone)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, orders[1].ID, models.StatusCooking)
	require.NoError(t, err)

	live, err := feed.ListLive(ctx, "")
	require.NoError(t, err)
	assert.Len(t, live, 2)

	cooking, err := feed.ListLive(ctx, models.StatusCooking)
	require.NoError(t, err)
	require.Len(t, cooking, 1)
	assert.Equal(t, orders[1].ID, cooking[0].ID)

	done, err := feed.ListLive(ctx, models.StatusDone)
	require.NoError(t, err)
	assert.Empty(t, done)

	_, err = feed.ListLive(ctx, "burnt")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestListUnviewed(t *testing.T) {
	f := setupTestDB(t)
	feed := NewLiveFeed(f.db)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()
	orders := seedOrders(t, f, UnviewedLimit+3)

	unviewed, err := feed.ListUnviewed(ctx)
	require.NoError(t, err)
	assert.Len(t, unviewed, UnviewedLimit)

	newest := orders[len(orders)-1].ID
	require.NoError(t, svc.MarkViewed(ctx, newest))
	unviewed, err = feed.ListUnviewed(ctx)
	require.NoError(t, err)
	for _, o := range unviewed {
		assert.NotEqual(t, newest, o.ID)
		assert.False(t, o.IsViewed)
	}
}

func TestStats(t *testing.T) {
	f := setupTestDB(t)
	feed := NewLiveFeed(f.db)
	svc, _, _ := newOrderService(f)
	ctx := context.Background()
	orders := seedOrders(t, f, 3)

	_, err := svc.UpdateStatus(ctx, orders[0].ID, models.StatusCooking)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, orders[1].ID, models.StatusDone)
	require.NoError(t, err)

	yesterday := models.Order{TotalPrice: dec("999"), Status: models.StatusNew, CreatedAt: time.Now().AddDate(0, 0, -2)}
	require.NoError(t, f.db.Create(&yesterday).Error)

	st, err := feed.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.NewOrders)
	assert.Equal(t, int64(1), st.CookingOrders)
	assert.Equal(t, int64(3), st.TodayOrders)
	assert.True(t, dec("30").Equal(st.TodayRevenue))
}

func TestViews(t *testing.T) {
	order := models.Order{
		ID:         5,
		Status:     models.StatusCooking,
		TotalPrice: dec("80"),
		CreatedAt:  time.Date(2026, 1, 2, 9, 30, 15, 0, time.UTC),
	}
	for _, name := range []string{"Tea", "Toast", "Eggs", "Juice", "Jam"} {
		order.Items = append(order.Items, models.OrderItem{Quantity: 1, PriceAtMoment: dec("16"), Product: &models.Product{Name: name}})
	}

	live := NewLiveOrderView(&order)
	assert.Equal(t, "Cooking", live.StatusDisplay)
	assert.Equal(t, "09:30:15", live.CreatedAt)
	assert.Equal(t, 5, live.ItemsCount)
	assert.Equal(t, UnspecifiedLocation, live.Location)

	note := NewNotificationView(&order)
	assert.Equal(t, []string{"Tea x1", "Toast x1", "Eggs x1", "+2 more"}, note.Items)
	assert.Equal(t, "New order #5", note.Title)
	assert.Equal(t, "unspecified • 80.00 ₽", note.Message)
	assert.Equal(t, order.CreatedAt.Unix(), note.CreatedAtTimestamp)
}

func TestStatistics(t *testing.T) {
	f := setupTestDB(t)
	feed := NewLiveFeed(f.db)
	now := time.Now()

	place := func(created time.Time, total string, items ...models.OrderItem) {
		o := models.Order{TotalPrice: dec(total), Status: models.StatusDone, IsArchived: true, CreatedAt: created, Items: items}
		require.NoError(t, f.db.Create(&o).Error)
	}
	coffee := func() models.OrderItem {
		return models.OrderItem{ProductID: f.coffee.ID, Quantity: 1, PriceAtMoment: dec("10")}
	}
	pancakes := func(qty int) models.OrderItem {
		return models.OrderItem{ProductID: f.pancakes.ID, Quantity: qty, PriceAtMoment: dec("5")}
	}

	place(now, "10", coffee())
	place(now, "10", coffee(), pancakes(1))
	place(now.AddDate(0, 0, -3), "20", pancakes(4))
	place(now.AddDate(0, 0, -10), "40", pancakes(1))
	place(now.AddDate(0, 0, -45), "80")

	oysters := models.Product{CategoryID: f.coffee.CategoryID, Name: "Oysters", Price: dec("900")}
	require.NoError(t, f.db.Create(&oysters).Error)
	require.NoError(t, f.db.Delete(&oysters).Error)

	st, err := feed.Statistics(context.Background(), now)
	require.NoError(t, err)

	assert.True(t, dec("20").Equal(st.TodayRevenue), st.TodayRevenue.String())
	assert.True(t, dec("40").Equal(st.WeekRevenue), st.WeekRevenue.String())
	assert.True(t, dec("80").Equal(st.MonthRevenue), st.MonthRevenue.String())

	require.Len(t, st.Daily, 2)
	assert.Equal(t, now.AddDate(0, 0, -3).Format("2006-01-02"), st.Daily[0].Day)
	assert.Equal(t, int64(1), st.Daily[0].Orders)
	assert.True(t, dec("20").Equal(st.Daily[0].Revenue))
	assert.Equal(t, now.Format("2006-01-02"), st.Daily[1].Day)
	assert.Equal(t, int64(2), st.Daily[1].Orders)
	assert.True(t, dec("20").Equal(st.Daily[1].Revenue))

	require.Len(t, st.Popular, 2)
	assert.Equal(t, PopularProduct{ProductID: f.pancakes.ID, Name: "Pancakes", TimesOrdered: 3, UnitsOrdered: 6}, st.Popular[0])
	assert.Equal(t, PopularProduct{ProductID: f.coffee.ID, Name: "Coffee", TimesOrdered: 2, UnitsOrdered: 2}, st.Popular[1])
}

func TestStatisticsEmpty(t *testing.T) {
	f := setupTestDB(t)
	st, err := NewLiveFeed(f.db).Statistics(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, st.MonthRevenue.IsZero())
	assert.Empty(t, st.Daily)
	require.Len(t, st.Popular, 2)
	assert.Zero(t, st.Popular[0].TimesOrdered)
}
