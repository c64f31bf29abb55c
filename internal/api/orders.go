package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gopersonal/storefront/pkg/enums"
	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/types"
)

// OrderLine is the immutable snapshot of a cart line at checkout time.
type OrderLine struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// OrderInput is the order-create request body.
type OrderInput struct {
	Items           []OrderLine         `json:"items"`
	TotalAmount     float64             `json:"totalAmount"`
	ShippingAddress *types.Address      `json:"shippingAddress,omitempty"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
}

// Order is an order as the server reports it. Status is server-owned; the
// client never writes it.
type Order struct {
	ID              string            `json:"_id"`
	User            string            `json:"user"`
	Items           []OrderLine       `json:"items"`
	TotalAmount     float64           `json:"totalAmount"`
	ShippingAddress *types.Address    `json:"shippingAddress,omitempty"`
	PaymentMethod   string            `json:"paymentMethod"`
	Status          enums.OrderStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// CreateOrder submits the order with a client-generated idempotency key so a
// retried submit after a network blip cannot create a duplicate.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	req, err := c.newOrderRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	var order Order
	if err := c.execute(req, &order); err != nil {
		c.logg.Error(ctx, "create order failed", err)
		return nil, err
	}
	c.logg.Info(c.logg.WithField(ctx, "order_id", order.ID), "order created")
	return &order, nil
}

func (c *Client) newOrderRequest(ctx context.Context, input OrderInput) (*http.Request, error) {
	body, err := encodeJSON(input)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/orders"), body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "order-"+uuid.NewString())
	if err := c.attachBearer(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListMyOrders fetches the current user's order history.
func (c *Client) ListMyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.call(ctx, http.MethodGet, c.endpoint("/orders/myorders"), nil, true, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var order Order
	if err := c.call(ctx, http.MethodGet, c.endpoint("/orders/"+url.PathEscape(trimmed)), nil, true, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
