// Package events fans order lifecycle events out to push channels and the event stream.
package events

import (
	"context"
	"errors"

	"github.com/yeremiapane/qr-hotel-menu/models"
)

type Publisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

// FanOut publishes to every non-nil publisher and joins their errors.
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, event models.OrderEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
