package types

import "github.com/shopspring/decimal"

// Rating is the aggregate review score the catalog reports for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog entry. Immutable once fetched; the client never
// mutates product data locally.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Rating      *Rating         `json:"rating,omitempty"`
}

// CartItem pairs a product with the quantity in the cart. At most one
// CartItem exists per product id.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price multiplied by quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
