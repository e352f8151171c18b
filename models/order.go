package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusNew      = "new"
	StatusCooking  = "cooking"
	StatusDone     = "done"
	StatusArchived = "archived"
)

var statusLabels = map[string]string{
	StatusNew:      "New",
	StatusCooking:  "Cooking",
	StatusDone:     "Done",
	StatusArchived: "Archived",
}

// IsValidStatus reports whether s is one of the four order statuses.
func IsValidStatus(s string) bool {
	_, ok := statusLabels[s]
	return ok
}

// StatusLabel is the human readable status shown to staff and in the bot message.
func StatusLabel(s string) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s
}

// IsArchivalStatus reports whether moving to s takes the order off the live feed.
func IsArchivalStatus(s string) bool {
	return s == StatusDone || s == StatusArchived
}

type Order struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	RoomID             *uint           `gorm:"index" json:"room_id,omitempty"`
	Room               *Room           `gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"room,omitempty"`
	FloorID            *uint           `gorm:"index" json:"floor_id,omitempty"`
	Floor              *Floor          `gorm:"foreignKey:FloorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"floor,omitempty"`
	BuildingID         *uint           `gorm:"index" json:"building_id,omitempty"`
	Building           *Building       `gorm:"foreignKey:BuildingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"building,omitempty"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status             string          `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	SessionKey         string          `gorm:"type:varchar(64);index" json:"-"`
	IsArchived         bool            `gorm:"not null;default:false;index" json:"is_archived"`
	IsViewed           bool            `gorm:"not null;default:false" json:"is_viewed"`
	ExternalMessageRef *string         `gorm:"type:varchar(50)" json:"external_message_ref,omitempty"`
	Items              []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt          time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null" json:"updated_at"`
}

// Location returns the tagged reference stored in the three nullable columns.
func (o *Order) Location() LocationRef {
	switch {
	case o.RoomID != nil:
		return RoomRef(*o.RoomID)
	case o.FloorID != nil:
		return FloorRef(*o.FloorID)
	case o.BuildingID != nil:
		return BuildingRef(*o.BuildingID)
	}
	return NoLocation()
}

// SetLocation is the only writer of the location columns; it keeps at most one set.
func (o *Order) SetLocation(ref LocationRef) {
	o.RoomID, o.FloorID, o.BuildingID = nil, nil, nil
	id := ref.ID
	switch ref.Kind {
	case LocationRoom:
		o.RoomID = &id
	case LocationFloor:
		o.FloorID = &id
	case LocationBuilding:
		o.BuildingID = &id
	}
}

// ApplyStatus moves the order to status. Any staff-driven change marks it viewed.
func (o *Order) ApplyStatus(status string) {
	o.Status = status
	if IsArchivalStatus(status) {
		o.IsArchived = true
	}
	o.IsViewed = true
}

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order         *Order          `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	Product       *Product        `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	PriceAtMoment decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_moment"`
}

func (i OrderItem) Total() decimal.Decimal {
	return i.PriceAtMoment.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProductName tolerates items whose product was not preloaded.
func (i OrderItem) ProductName() string {
	if i.Product == nil {
		return ""
	}
	return i.Product.Name
}
