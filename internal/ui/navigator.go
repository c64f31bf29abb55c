package ui

import "sync"

// Route names a screen.
type Route string

const (
	RouteLogin         Route = "Login"
	RouteRegister      Route = "Register"
	RouteProducts      Route = "Products"
	RouteProductDetail Route = "ProductDetail"
	RouteCart          Route = "Cart"
	RouteProfile       Route = "Profile"
	RouteOrders        Route = "Orders"
	RouteOrderDetail   Route = "OrderDetail"
)

// Params carries the typed parameters a route can take. Only the fields a
// route declares are read; the rest stay zero.
type Params struct {
	ProductID int    // ProductDetail
	OrderID   string // OrderDetail
}

// Entry is one frame on the navigation stack.
type Entry struct {
	Route  Route
	Params Params
}

// Navigator is a stack of screens. The bottom frame is the app's home screen
// and can never be popped.
type Navigator struct {
	mu    sync.Mutex
	stack []Entry
}

// NewNavigator starts the stack at the given root.
func NewNavigator(root Route) *Navigator {
	return &Navigator{stack: []Entry{{Route: root}}}
}

// Current returns the top frame.
func (n *Navigator) Current() Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

// Push navigates to a route, keeping history.
func (n *Navigator) Push(route Route, params Params) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, Entry{Route: route, Params: params})
}

// Pop returns to the previous screen. Popping the root is a no-op.
func (n *Navigator) Pop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) > 1 {
		n.stack = n.stack[:len(n.stack)-1]
	}
}

// Replace swaps the top frame without growing history.
func (n *Navigator) Replace(route Route, params Params) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack[len(n.stack)-1] = Entry{Route: route, Params: params}
}

// Reset discards history and starts over at the given root. Used on login and
// logout so back navigation cannot cross an auth boundary.
func (n *Navigator) Reset(root Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = []Entry{{Route: root}}
}

// Depth reports the stack size.
func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}
