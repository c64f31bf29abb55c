package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gopersonal/storefront/internal/api"
	"github.com/gopersonal/storefront/pkg/config"
	"github.com/gopersonal/storefront/pkg/enums"
	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/logger"
	"github.com/gopersonal/storefront/pkg/types"
)

// OrderAPI is the order submission surface.
type OrderAPI interface {
	CreateOrder(ctx context.Context, input api.OrderInput) (*api.Order, error)
}

// Cart is what checkout needs from the cart: the lines to snapshot, the total,
// and the clear after a successful order.
type Cart interface {
	Items() []types.CartItem
	TotalPrice() decimal.Decimal
	ClearCart(ctx context.Context) error
}

// Service turns the current cart into an order. The client computes the total
// for display; the server recomputes and is authoritative.
type Service struct {
	api  OrderAPI
	cart Cart
	logg *logger.Logger

	paymentMethod   enums.PaymentMethod
	shippingAddress types.Address
}

// NewService builds a checkout service from the configured defaults. An
// unknown payment method falls back to card rather than failing startup.
func NewService(orderAPI OrderAPI, cart Cart, cfg config.CheckoutConfig, logg *logger.Logger) *Service {
	method, err := enums.ParsePaymentMethod(cfg.PaymentMethod)
	if err != nil {
		logg.Warn(logg.WithField(context.Background(), "payment_method", cfg.PaymentMethod),
			"unknown payment method configured, using card")
		method = enums.PaymentMethodCard
	}

	return &Service{
		api:           orderAPI,
		cart:          cart,
		logg:          logg,
		paymentMethod: method,
		shippingAddress: types.Address{
			Street:     cfg.ShippingStreet,
			City:       cfg.ShippingCity,
			PostalCode: cfg.ShippingPostalCode,
			Country:    cfg.ShippingCountry,
		},
	}
}

// PlaceOrder snapshots the cart into order lines, submits the order, and
// clears the cart on success. An empty cart is rejected before any network
// call. A failed cart clear does not fail the checkout: the order exists, the
// next cart refresh settles the state.
func (s *Service) PlaceOrder(ctx context.Context) (*api.Order, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	input := api.OrderInput{
		Items:         make([]api.OrderLine, 0, len(items)),
		TotalAmount:   s.cart.TotalPrice().InexactFloat64(),
		PaymentMethod: s.paymentMethod,
	}
	if !s.shippingAddress.IsZero() {
		addr := s.shippingAddress
		input.ShippingAddress = &addr
	}
	for _, item := range items {
		input.Items = append(input.Items, api.OrderLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Price:     item.Product.Price.InexactFloat64(),
			Image:     item.Product.Image,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.api.CreateOrder(ctx, input)
	if err != nil {
		s.logg.Error(ctx, "checkout failed", err)
		return nil, err
	}

	if err := s.cart.ClearCart(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID), "cart clear after checkout failed")
	}

	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID), "checkout completed")
	return order, nil
}
