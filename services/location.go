package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/qr-hotel-menu/models"
)

// Location is a guest QR target resolved from its slug.
type Location struct {
	Ref   models.LocationRef `json:"ref"`
	Slug  string             `json:"slug"`
	Label string             `json:"label"`
}

type LocationService struct {
	DB *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{DB: db}
}

// ResolveSlug finds an active room, floor or building by slug.
func (s *LocationService) ResolveSlug(ctx context.Context, kind models.LocationKind, slug string) (*Location, error) {
	db := s.DB.WithContext(ctx)
	var (
		loc Location
		err error
	)
	switch kind {
	case models.LocationRoom:
		var room models.Room
		err = db.Preload("Floor.Building").Where("slug = ? AND is_active = ?", slug, true).First(&room).Error
		loc = Location{Ref: models.RoomRef(room.ID), Slug: room.Slug, Label: roomLabel(&room)}
	case models.LocationFloor:
		var floor models.Floor
		err = db.Preload("Building").Where("slug = ? AND is_active = ?", slug, true).First(&floor).Error
		loc = Location{Ref: models.FloorRef(floor.ID), Slug: floor.Slug, Label: floorLabel(&floor)}
	case models.LocationBuilding:
		var building models.Building
		err = db.Where("slug = ? AND is_active = ?", slug, true).First(&building).Error
		loc = Location{Ref: models.BuildingRef(building.ID), Slug: building.Slug, Label: buildingLabel(&building)}
	default:
		return nil, fmt.Errorf("location kind %q: %w", kind, models.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %q: %w", kind, slug, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s %q: %w", kind, slug, err)
	}
	return &loc, nil
}
