package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product-quantity pair. Quantity is always >= 1.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price * quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// WishlistEntry is a saved product snapshot.
type WishlistEntry struct {
	Product Product   `json:"product"`
	AddedAt time.Time `json:"addedAt"`
}

// Totals are derived from the cart lines and never stored.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type User struct {
	ID     int64  `json:"Id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
