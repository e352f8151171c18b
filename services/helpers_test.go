package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/cart"
	"github.com/yeremiapane/qr-hotel-menu/catalog"
	"github.com/yeremiapane/qr-hotel-menu/database"
	"github.com/yeremiapane/qr-hotel-menu/models"
)

type fixture struct {
	db       *gorm.DB
	building models.Building
	floor    models.Floor
	room     models.Room
	pancakes models.Product
	coffee   models.Product
}

func setupTestDB(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{db: db}
	f.building = models.Building{Name: "A", Slug: "building-a"}
	require.NoError(t, db.Create(&f.building).Error)
	f.floor = models.Floor{BuildingID: &f.building.ID, Name: "2", Slug: "a-floor-2"}
	require.NoError(t, db.Create(&f.floor).Error)
	f.room = models.Room{FloorID: f.floor.ID, Number: "201", Slug: "room-201"}
	require.NoError(t, db.Create(&f.room).Error)

	breakfast := models.Category{Name: "Breakfast"}
	require.NoError(t, db.Create(&breakfast).Error)
	f.pancakes = models.Product{CategoryID: breakfast.ID, Name: "Pancakes", Price: decimal.NewFromInt(50)}
	require.NoError(t, db.Create(&f.pancakes).Error)
	f.coffee = models.Product{CategoryID: breakfast.ID, Name: "Coffee", Price: decimal.NewFromInt(30)}
	require.NoError(t, db.Create(&f.coffee).Error)
	return f
}

type recordingNotifier struct {
	mu       sync.Mutex
	created  []uint
	statuses []uint
}

func (r *recordingNotifier) NotifyNewOrder(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, id)
}

func (r *recordingNotifier) NotifyStatusChange(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, id)
}

type recordingPublisher struct {
	events []models.OrderEvent
}

func (r *recordingPublisher) Publish(_ context.Context, e models.OrderEvent) error {
	r.events = append(r.events, e)
	return nil
}

func newOrderService(f *fixture) (*OrderService, *recordingNotifier, *recordingPublisher) {
	cat := catalog.NewGormCatalog(f.db)
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	return &OrderService{
		DB:       f.db,
		Carts:    cart.NewService(cart.NewMemoryStore(), cat),
		Catalog:  cat,
		Notifier: notifier,
		Events:   publisher,
	}, notifier, publisher
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
