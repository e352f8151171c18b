package models

import "time"

// Building is a hotel block. Guests can order to the lobby of a whole building.
type Building struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	Floors    []Floor   `gorm:"foreignKey:BuildingID" json:"floors,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Floor may exist without a building (single block hotels).
type Floor struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BuildingID *uint     `gorm:"index" json:"building_id,omitempty"`
	Building   *Building `gorm:"foreignKey:BuildingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"building,omitempty"`
	Name       string    `gorm:"type:varchar(100);not null;default:''" json:"name"`
	Number     *int      `json:"number,omitempty"`
	Slug       string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	Rooms      []Room    `gorm:"foreignKey:FloorID" json:"rooms,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FloorID   uint      `gorm:"not null;index" json:"floor_id"`
	Floor     *Floor    `gorm:"foreignKey:FloorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"floor,omitempty"`
	Number    string    `gorm:"type:varchar(20);not null" json:"number"`
	Slug      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// LocationKind tags which level of the hotel hierarchy an order targets.
type LocationKind string

const (
	LocationNone     LocationKind = ""
	LocationRoom     LocationKind = "room"
	LocationFloor    LocationKind = "floor"
	LocationBuilding LocationKind = "building"
)

// RoutePrefix is the guest URL prefix for QR codes of this kind.
func (k LocationKind) RoutePrefix() string {
	switch k {
	case LocationRoom:
		return "/order"
	case LocationFloor:
		return "/floor"
	case LocationBuilding:
		return "/building"
	}
	return ""
}

// LocationRef points at exactly one room, floor or building, or at nothing.
type LocationRef struct {
	Kind LocationKind `json:"kind"`
	ID   uint         `json:"id,omitempty"`
}

func RoomRef(id uint) LocationRef     { return LocationRef{Kind: LocationRoom, ID: id} }
func FloorRef(id uint) LocationRef    { return LocationRef{Kind: LocationFloor, ID: id} }
func BuildingRef(id uint) LocationRef { return LocationRef{Kind: LocationBuilding, ID: id} }
func NoLocation() LocationRef         { return LocationRef{} }

func (l LocationRef) IsNone() bool {
	return l.Kind == LocationNone
}

// Column is the orders column that stores this reference. Empty for NoLocation.
func (l LocationRef) Column() string {
	switch l.Kind {
	case LocationRoom:
		return "room_id"
	case LocationFloor:
		return "floor_id"
	case LocationBuilding:
		return "building_id"
	}
	return ""
}
