package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"gorm.io/gorm"
)

// Catalog is the read side of the menu used by carts and order assembly.
// GetProduct returns the product whatever its availability; callers decide.
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

type GormCatalog struct {
	DB *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{DB: db}
}

func (gc *GormCatalog) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := gc.DB.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return &product, nil
}

// ListMenu returns active categories with their available products, both sorted by priority.
func (gc *GormCatalog) ListMenu(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := gc.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_available = ?", true).Order("order_priority asc, name asc")
		}).
		Order("order_priority asc, name asc").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return categories, nil
}

// ToggleAvailability flips the stop-list flag and returns the new value.
func (gc *GormCatalog) ToggleAvailability(ctx context.Context, id uint) (bool, error) {
	var available bool
	err := gc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
			}
			return err
		}
		available = !product.IsAvailable
		return tx.Model(&product).Update("is_available", available).Error
	})
	return available, err
}
