package orders

import (
	"context"

	"github.com/gopersonal/storefront/internal/api"
	"github.com/gopersonal/storefront/pkg/logger"
)

// OrderAPI is the order history surface.
type OrderAPI interface {
	ListMyOrders(ctx context.Context) ([]api.Order, error)
	GetOrder(ctx context.Context, orderID string) (*api.Order, error)
}

// Service exposes the signed-in user's order history. Orders are read-only on
// the client; status transitions happen server-side.
type Service struct {
	api  OrderAPI
	logg *logger.Logger
}

// NewService builds an order history service.
func NewService(orderAPI OrderAPI, logg *logger.Logger) *Service {
	return &Service{api: orderAPI, logg: logg}
}

// List fetches the current user's orders.
func (s *Service) List(ctx context.Context) ([]api.Order, error) {
	orders, err := s.api.ListMyOrders(ctx)
	if err != nil {
		s.logg.Error(ctx, "listing orders failed", err)
		return nil, err
	}
	return orders, nil
}

// Get fetches one order by id.
func (s *Service) Get(ctx context.Context, orderID string) (*api.Order, error) {
	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", orderID), "fetching order failed", err)
		return nil, err
	}
	return order, nil
}
