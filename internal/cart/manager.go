package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gopersonal/storefront/internal/api"
	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/logger"
	"github.com/gopersonal/storefront/pkg/types"
)

// CartAPI is the remote surface the manager drives.
type CartAPI interface {
	GetCart(ctx context.Context) (*api.CartResponse, error)
	AddCartItem(ctx context.Context, item api.CartItemWire) (*api.CartResponse, error)
	UpdateCartItemQuantity(ctx context.Context, productID, quantity int) (*api.CartResponse, error)
	RemoveCartItem(ctx context.Context, productID int) (*api.CartResponse, error)
	ClearCart(ctx context.Context) (*api.CartResponse, error)
}

// AuthState reports whether a user is signed in. Cart operations are no-ops
// without one.
type AuthState interface {
	IsAuthenticated() bool
}

// Manager holds the in-memory cart for the current session and keeps it
// eventually consistent with the server: every mutation is applied
// optimistically, sent remotely, then reconciled with a full refetch. The
// mutex guards the local list only; remote calls are deliberately not
// serialized, the trailing refetch wins.
type Manager struct {
	api  CartAPI
	auth AuthState
	logg *logger.Logger

	mu      sync.Mutex
	items   []types.CartItem
	loading bool
	lastErr string
}

// NewManager builds a cart manager.
func NewManager(cartAPI CartAPI, auth AuthState, logg *logger.Logger) *Manager {
	return &Manager{api: cartAPI, auth: auth, logg: logg}
}

// Items returns a copy of the current lines.
func (m *Manager) Items() []types.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

// Loading reports whether a remote operation is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Err returns the last user-visible error message, empty when the last
// operation succeeded.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// TotalItems is the sum of all line quantities.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, item := range m.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price multiplied by quantity across lines. Callers
// render it with two decimals.
func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, item := range m.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// AddToCart merges the quantity into an existing line when the product is
// already present and sends the full merged quantity to the server.
func (m *Manager) AddToCart(ctx context.Context, product types.Product, quantity int) error {
	if m.skipUnauthenticated(ctx, "add_to_cart") {
		return nil
	}
	if quantity < 1 {
		quantity = 1
	}

	merged := quantity
	m.mu.Lock()
	for _, item := range m.items {
		if item.Product.ID == product.ID {
			merged += item.Quantity
			break
		}
	}
	m.mu.Unlock()

	line := types.CartItem{Product: product, Quantity: merged}

	_, err := m.api.AddCartItem(ctx, api.NewCartItemWire(line))
	if err != nil {
		m.fail(ctx, "add_to_cart", err)
		m.reconcile(ctx)
		return err
	}

	// Provisional: overwritten by the authoritative refetch below.
	m.mu.Lock()
	m.upsertLocked(line)
	m.lastErr = ""
	m.mu.Unlock()

	m.reconcile(ctx)
	return nil
}

// RemoveFromCart filters the line out locally, deletes remotely, and
// refetches. On failure the refetch restores the server's state; this is a
// compensating re-read, not a rollback.
func (m *Manager) RemoveFromCart(ctx context.Context, productID int) error {
	if m.skipUnauthenticated(ctx, "remove_from_cart") {
		return nil
	}

	m.mu.Lock()
	filtered := m.items[:0:0]
	for _, item := range m.items {
		if item.Product.ID != productID {
			filtered = append(filtered, item)
		}
	}
	m.items = filtered
	m.mu.Unlock()

	_, err := m.api.RemoveCartItem(ctx, productID)
	if err != nil {
		m.fail(ctx, "remove_from_cart", err)
		m.reconcile(ctx)
		return err
	}

	m.clearErr()
	m.reconcile(ctx)
	return nil
}

// UpdateQuantity clamps the quantity to a minimum of 1, applies it locally,
// sends the remote update, and refetches.
func (m *Manager) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if m.skipUnauthenticated(ctx, "update_quantity") {
		return nil
	}
	if quantity < 1 {
		quantity = 1
	}

	m.mu.Lock()
	for i := range m.items {
		if m.items[i].Product.ID == productID {
			m.items[i].Quantity = quantity
			break
		}
	}
	m.mu.Unlock()

	_, err := m.api.UpdateCartItemQuantity(ctx, productID, quantity)
	if err != nil {
		m.fail(ctx, "update_quantity", err)
		m.reconcile(ctx)
		return err
	}

	m.clearErr()
	m.reconcile(ctx)
	return nil
}

// ClearCart empties the local list, clears remotely, and on failure refetches
// to restore accurate state.
func (m *Manager) ClearCart(ctx context.Context) error {
	if m.skipUnauthenticated(ctx, "clear_cart") {
		return nil
	}

	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()

	_, err := m.api.ClearCart(ctx)
	if err != nil {
		m.fail(ctx, "clear_cart", err)
		m.reconcile(ctx)
		return err
	}

	m.clearErr()
	return nil
}

// RefreshCart replaces the local list with the server's authoritative state.
// A timeout keeps the currently-displayed items instead of discarding them.
func (m *Manager) RefreshCart(ctx context.Context) error {
	if m.skipUnauthenticated(ctx, "refresh_cart") {
		return nil
	}

	m.setLoading(true)
	defer m.setLoading(false)

	cart, err := m.api.GetCart(ctx)
	if err != nil {
		m.fail(ctx, "refresh_cart", err)
		return err
	}

	m.mu.Lock()
	m.items = cart.ToCartItems()
	m.lastErr = ""
	m.mu.Unlock()
	return nil
}

// reconcile re-reads server truth after a mutation. Failures are logged but
// not surfaced: the next refresh settles the state.
func (m *Manager) reconcile(ctx context.Context) {
	cart, err := m.api.GetCart(ctx)
	if err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "cart reconcile fetch failed")
		return
	}
	m.mu.Lock()
	m.items = cart.ToCartItems()
	m.mu.Unlock()
}

func (m *Manager) upsertLocked(line types.CartItem) {
	for i := range m.items {
		if m.items[i].Product.ID == line.Product.ID {
			m.items[i] = line
			return
		}
	}
	m.items = append(m.items, line)
}

func (m *Manager) skipUnauthenticated(ctx context.Context, op string) bool {
	if m.auth.IsAuthenticated() {
		return false
	}
	m.logg.Info(m.logg.WithField(ctx, "operation", op), "cart operation skipped, not signed in")
	return true
}

func (m *Manager) fail(ctx context.Context, op string, err error) {
	m.mu.Lock()
	m.lastErr = pkgerrors.UserMessage(err)
	m.mu.Unlock()
	m.logg.Error(m.logg.WithField(ctx, "operation", op), "cart operation failed", err)
}

func (m *Manager) clearErr() {
	m.mu.Lock()
	m.lastErr = ""
	m.mu.Unlock()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}
