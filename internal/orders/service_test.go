package orders

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopersonal/storefront/internal/api"
	"github.com/gopersonal/storefront/pkg/enums"
	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/logger"
)

type stubOrderAPI struct {
	orders  []api.Order
	listErr error
	getErr  error
	lastID  string
}

func (s *stubOrderAPI) ListMyOrders(context.Context) ([]api.Order, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.orders, nil
}

func (s *stubOrderAPI) GetOrder(_ context.Context, orderID string) (*api.Order, error) {
	s.lastID = orderID
	if s.getErr != nil {
		return nil, s.getErr
	}
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return &s.orders[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func newTestService(t *testing.T, stub *stubOrderAPI) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(stub, logg)
}

func TestListOrders(t *testing.T) {
	stub := &stubOrderAPI{orders: []api.Order{
		{ID: "o1", Status: enums.OrderStatusPending, TotalAmount: 10},
		{ID: "o2", Status: enums.OrderStatusDelivered, TotalAmount: 42.5},
	}}
	svc := newTestService(t, stub)

	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, enums.OrderStatusDelivered, orders[1].Status)
}

func TestGetOrder(t *testing.T) {
	stub := &stubOrderAPI{orders: []api.Order{{ID: "o42", Status: enums.OrderStatusShipped}}}
	svc := newTestService(t, stub)

	order, err := svc.Get(context.Background(), "o42")
	require.NoError(t, err)
	assert.Equal(t, "o42", stub.lastID)
	assert.Equal(t, enums.OrderStatusShipped, order.Status)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := newTestService(t, &stubOrderAPI{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDisplayForKnownStatuses(t *testing.T) {
	cases := []struct {
		status enums.OrderStatus
		color  string
	}{
		{enums.OrderStatusPending, "#f39c12"},
		{enums.OrderStatusProcessing, "#3498db"},
		{enums.OrderStatusShipped, "#2ecc71"},
		{enums.OrderStatusDelivered, "#27ae60"},
		{enums.OrderStatusCancelled, "#e74c3c"},
	}
	for _, tc := range cases {
		t.Run(tc.status.String(), func(t *testing.T) {
			display := DisplayFor(tc.status)
			assert.Equal(t, tc.color, display.Color)
			assert.NotEmpty(t, display.Icon)
			assert.NotEmpty(t, display.Description)
		})
	}
}

func TestDisplayForUnknownStatusFallsBack(t *testing.T) {
	display := DisplayFor(enums.OrderStatus("refunded"))
	assert.Equal(t, "#7f8c8d", display.Color)
	assert.NotEmpty(t, display.Description)
}
