package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	OrderPriority int       `gorm:"not null;default:0" json:"order_priority"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	Products      []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// Product is a menu position. IsAvailable=false puts it on the stop-list.
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Name          string          `gorm:"type:varchar(200);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable   bool            `gorm:"not null;default:true" json:"is_available"`
	OrderPriority int             `gorm:"not null;default:0" json:"order_priority"`
	Weight        string          `gorm:"type:varchar(50)" json:"weight,omitempty"`
	Composition   string          `gorm:"type:text" json:"composition,omitempty"`
	Calories      *int            `json:"calories,omitempty"`
	CookingTime   string          `gorm:"type:varchar(50)" json:"cooking_time,omitempty"`
	Allergens     string          `gorm:"type:varchar(200)" json:"allergens,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}
