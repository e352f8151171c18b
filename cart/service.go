package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/qr-hotel-menu/catalog"
	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/session"
)

// Line is a cart entry resolved against the catalog for display.
type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"total"`
}

// View is what guests see: only lines whose product is still orderable.
type View struct {
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type Service struct {
	store   Store
	catalog catalog.Catalog
}

func NewService(store Store, cat catalog.Catalog) *Service {
	return &Service{store: store, catalog: cat}
}

// Add puts quantity units of a product in the cart. The first add snapshots the price.
func (s *Service) Add(ctx context.Context, sess session.Session, productID uint, quantity int) (View, error) {
	if !ValidQuantity(quantity) {
		return View{}, models.ErrInvalidQuantity
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return View{}, err
	}
	if !product.IsAvailable {
		return View{}, fmt.Errorf("product %d: %w", productID, models.ErrProductUnavailable)
	}

	c, err := s.store.Load(ctx, sess.Key)
	if err != nil {
		return View{}, err
	}
	if err := c.Add(productID, quantity, product.Price); err != nil {
		return View{}, fmt.Errorf("product %d: %w", productID, err)
	}
	if err := s.store.Save(ctx, sess.Key, c); err != nil {
		return View{}, err
	}
	return s.view(ctx, c)
}

// Update sets the quantity of a line; zero or less removes it. Unknown products are ignored.
func (s *Service) Update(ctx context.Context, sess session.Session, productID uint, quantity int) (View, error) {
	c, err := s.store.Load(ctx, sess.Key)
	if err != nil {
		return View{}, err
	}
	if err := c.Set(productID, quantity); err != nil {
		return View{}, fmt.Errorf("product %d: %w", productID, err)
	}
	if err := s.store.Save(ctx, sess.Key, c); err != nil {
		return View{}, err
	}
	return s.view(ctx, c)
}

func (s *Service) Remove(ctx context.Context, sess session.Session, productID uint) (View, error) {
	return s.Update(ctx, sess, productID, 0)
}

func (s *Service) Get(ctx context.Context, sess session.Session) (View, error) {
	c, err := s.store.Load(ctx, sess.Key)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, c)
}

func (s *Service) Clear(ctx context.Context, sess session.Session) error {
	return s.store.Delete(ctx, sess.Key)
}

// Snapshot returns the raw stored cart, including lines the view would hide.
func (s *Service) Snapshot(ctx context.Context, sess session.Session) (Cart, error) {
	return s.store.Load(ctx, sess.Key)
}

// Restore writes a previously taken snapshot back, used when checkout fails after clearing.
func (s *Service) Restore(ctx context.Context, sess session.Session, c Cart) error {
	return s.store.Save(ctx, sess.Key, c)
}

func (s *Service) view(ctx context.Context, c Cart) (View, error) {
	v := View{Items: []Line{}, Total: decimal.Zero}
	for _, e := range c.Entries {
		product, err := s.catalog.GetProduct(ctx, e.ProductID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return View{}, err
		}
		if !product.IsAvailable {
			continue
		}
		lineTotal := e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
		v.Items = append(v.Items, Line{
			ProductID: e.ProductID,
			Name:      product.Name,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			LineTotal: lineTotal,
		})
		v.Total = v.Total.Add(lineTotal)
		v.Count += e.Quantity
	}
	return v, nil
}
