package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gopersonal/storefront/pkg/types"
)

// CartItemWire is the line shape the cart endpoints exchange.
type CartItemWire struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// CartResponse is the server's authoritative cart snapshot.
type CartResponse struct {
	ID        string         `json:"_id"`
	User      string         `json:"user"`
	Items     []CartItemWire `json:"items"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

// ToCartItems maps the wire snapshot into domain cart items. The cart API
// does not store descriptions or categories, so those stay empty.
func (r *CartResponse) ToCartItems() []types.CartItem {
	items := make([]types.CartItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, types.CartItem{
			Product: types.Product{
				ID:    item.ProductID,
				Name:  item.Name,
				Price: decimal.NewFromFloat(item.Price),
				Image: item.Image,
			},
			Quantity: item.Quantity,
		})
	}
	return items
}

// NewCartItemWire flattens a domain cart item for the wire.
func NewCartItemWire(item types.CartItem) CartItemWire {
	return CartItemWire{
		ProductID: item.Product.ID,
		Name:      item.Product.Name,
		Price:     item.Product.Price.InexactFloat64(),
		Image:     item.Product.Image,
		Quantity:  item.Quantity,
	}
}

// GetCart fetches the current user's cart, bounded by the cart refresh
// timeout.
func (c *Client) GetCart(ctx context.Context) (*CartResponse, error) {
	ctx, cancel := c.withTimeout(ctx, c.cartTimeout)
	defer cancel()

	var cart CartResponse
	if err := c.call(ctx, http.MethodGet, c.endpoint("/carts/mycart"), nil, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem sends a line to the add endpoint; the quantity is the full
// merged quantity, not a delta.
func (c *Client) AddCartItem(ctx context.Context, item CartItemWire) (*CartResponse, error) {
	var cart CartResponse
	if err := c.call(ctx, http.MethodPost, c.endpoint("/carts/item"), item, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItemQuantity sets the quantity of an existing line.
func (c *Client) UpdateCartItemQuantity(ctx context.Context, productID, quantity int) (*CartResponse, error) {
	payload := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}

	var cart CartResponse
	url := c.endpoint(fmt.Sprintf("/carts/item/%d", productID))
	if err := c.call(ctx, http.MethodPut, url, payload, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem deletes a line.
func (c *Client) RemoveCartItem(ctx context.Context, productID int) (*CartResponse, error) {
	var cart CartResponse
	url := c.endpoint(fmt.Sprintf("/carts/item/%d", productID))
	if err := c.call(ctx, http.MethodDelete, url, nil, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context) (*CartResponse, error) {
	var cart CartResponse
	if err := c.call(ctx, http.MethodDelete, c.endpoint("/carts/clear"), nil, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
