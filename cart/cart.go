// Package cart keeps each guest's pending selection between page loads.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/qr-hotel-menu/models"
)

// MaxLineQuantity caps how many units of one product a single line may hold.
const MaxLineQuantity = 99

// ValidQuantity reports whether q is an acceptable line quantity.
func ValidQuantity(q int) bool {
	return q > 0 && q <= MaxLineQuantity
}

// Entry is one product line. UnitPrice is snapshotted when the product is first added.
type Entry struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Cart keeps entries in insertion order, one per product.
type Cart struct {
	Entries []Entry `json:"entries"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

func (c *Cart) index(productID uint) int {
	for i, e := range c.Entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments an existing line or appends a new one priced at unitPrice.
// The cart is left unchanged when the resulting line would leave 1..MaxLineQuantity.
func (c *Cart) Add(productID uint, quantity int, unitPrice decimal.Decimal) error {
	if !ValidQuantity(quantity) {
		return models.ErrInvalidQuantity
	}
	if i := c.index(productID); i >= 0 {
		if quantity > MaxLineQuantity-c.Entries[i].Quantity {
			return models.ErrInvalidQuantity
		}
		c.Entries[i].Quantity += quantity
		return nil
	}
	c.Entries = append(c.Entries, Entry{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice})
	return nil
}

// Set overwrites the quantity of an existing line. Non-positive quantities remove it.
func (c *Cart) Set(productID uint, quantity int) error {
	if quantity > MaxLineQuantity {
		return models.ErrInvalidQuantity
	}
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}
	c.Entries[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(productID uint) {
	if i := c.index(productID); i >= 0 {
		c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
	}
}

// Total sums price x quantity over every entry, available or not.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Entries {
		total = total.Add(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total
}

func (c *Cart) clone() Cart {
	entries := make([]Entry, len(c.Entries))
	copy(entries, c.Entries)
	return Cart{Entries: entries}
}
