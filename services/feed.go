package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/models"
)

const (
	LiveFeedLimit = 50
	UnviewedLimit = 20
)

// LiveFeed answers the dashboard polls. Every call reads the database; nothing is cached.
type LiveFeed struct {
	DB *gorm.DB
}

func NewLiveFeed(db *gorm.DB) *LiveFeed {
	return &LiveFeed{DB: db}
}

// ListLive returns unarchived orders, newest first, optionally filtered by status.
func (f *LiveFeed) ListLive(ctx context.Context, status string) ([]models.Order, error) {
	if status != "" && !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, models.ErrInvalidStatus)
	}
	query := preloadOrder(f.DB.WithContext(ctx)).Where("is_archived = ?", false)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	if err := query.Order("created_at desc, id desc").Limit(LiveFeedLimit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list live orders: %w", err)
	}
	return orders, nil
}

// ListUnviewed returns unarchived orders staff have not opened yet.
func (f *LiveFeed) ListUnviewed(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := preloadOrder(f.DB.WithContext(ctx)).
		Where("is_archived = ? AND is_viewed = ?", false, false).
		Order("created_at desc, id desc").
		Limit(UnviewedLimit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list unviewed orders: %w", err)
	}
	return orders, nil
}

type Stats struct {
	NewOrders     int64           `json:"new_orders"`
	CookingOrders int64           `json:"cooking_orders"`
	TodayOrders   int64           `json:"today_orders"`
	TodayRevenue  decimal.Decimal `json:"today_revenue"`
}

// Stats counts unarchived new and cooking orders plus orders placed since local midnight of now.
func (f *LiveFeed) Stats(ctx context.Context, now time.Time) (Stats, error) {
	db := f.DB.WithContext(ctx)
	var st Stats
	if err := db.Model(&models.Order{}).Where("is_archived = ? AND status = ?", false, models.StatusNew).Count(&st.NewOrders).Error; err != nil {
		return Stats{}, fmt.Errorf("count new orders: %w", err)
	}
	if err := db.Model(&models.Order{}).Where("is_archived = ? AND status = ?", false, models.StatusCooking).Count(&st.CookingOrders).Error; err != nil {
		return Stats{}, fmt.Errorf("count cooking orders: %w", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var totals []decimal.Decimal
	if err := db.Model(&models.Order{}).Where("created_at >= ?", midnight).Pluck("total_price", &totals).Error; err != nil {
		return Stats{}, fmt.Errorf("load today's orders: %w", err)
	}
	st.TodayOrders = int64(len(totals))
	st.TodayRevenue = decimal.Zero
	for _, t := range totals {
		st.TodayRevenue = st.TodayRevenue.Add(t)
	}
	return st, nil
}

const PopularLimit = 10

type DailyStat struct {
	Day     string          `json:"day"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type PopularProduct struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	TimesOrdered int64  `json:"times_ordered"`
	UnitsOrdered int64  `json:"units_ordered"`
}

// Statistics is the reporting view: revenue windows, per-day totals and best sellers.
type Statistics struct {
	TodayRevenue decimal.Decimal  `json:"today_revenue"`
	WeekRevenue  decimal.Decimal  `json:"week_revenue"`
	MonthRevenue decimal.Decimal  `json:"month_revenue"`
	Daily        []DailyStat      `json:"daily"`
	Popular      []PopularProduct `json:"popular_products"`
}

// Statistics aggregates orders placed since local midnight of now (today), of seven days
// earlier (week, also broken down per day) and of thirty days earlier (month). Archived
// orders count. Popular ranks non-deleted products by the number of order lines naming them.
func (f *LiveFeed) Statistics(ctx context.Context, now time.Time) (Statistics, error) {
	db := f.DB.WithContext(ctx)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -7)
	monthStart := today.AddDate(0, 0, -30)

	var rows []struct {
		CreatedAt  time.Time
		TotalPrice decimal.Decimal
	}
	err := db.Model(&models.Order{}).
		Select("created_at, total_price").
		Where("created_at >= ?", monthStart).
		Order("created_at asc").
		Scan(&rows).Error
	if err != nil {
		return Statistics{}, fmt.Errorf("load orders for statistics: %w", err)
	}

	st := Statistics{
		TodayRevenue: decimal.Zero,
		WeekRevenue:  decimal.Zero,
		MonthRevenue: decimal.Zero,
		Daily:        []DailyStat{},
		Popular:      []PopularProduct{},
	}
	for _, r := range rows {
		created := r.CreatedAt.In(now.Location())
		st.MonthRevenue = st.MonthRevenue.Add(r.TotalPrice)
		if created.Before(weekStart) {
			continue
		}
		st.WeekRevenue = st.WeekRevenue.Add(r.TotalPrice)
		if !created.Before(today) {
			st.TodayRevenue = st.TodayRevenue.Add(r.TotalPrice)
		}

		day := created.Format("2006-01-02")
		if n := len(st.Daily); n == 0 || st.Daily[n-1].Day != day {
			st.Daily = append(st.Daily, DailyStat{Day: day, Revenue: decimal.Zero})
		}
		last := &st.Daily[len(st.Daily)-1]
		last.Orders++
		last.Revenue = last.Revenue.Add(r.TotalPrice)
	}

	err = db.Model(&models.Product{}).
		Select("products.id AS product_id, products.name AS name, " +
			"COUNT(order_items.id) AS times_ordered, COALESCE(SUM(order_items.quantity), 0) AS units_ordered").
		Joins("LEFT JOIN order_items ON order_items.product_id = products.id").
		Group("products.id, products.name").
		Order("times_ordered desc, products.id asc").
		Limit(PopularLimit).
		Scan(&st.Popular).Error
	if err != nil {
		return Statistics{}, fmt.Errorf("rank popular products: %w", err)
	}
	return st, nil
}
