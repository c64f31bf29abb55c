package orders

import "github.com/gopersonal/storefront/pkg/enums"

// StatusDisplay is the render hint for an order status: a hex color, a short
// icon tag, and a one-line description.
type StatusDisplay struct {
	Color       string
	Icon        string
	Description string
}

var statusDisplays = map[enums.OrderStatus]StatusDisplay{
	enums.OrderStatusPending: {
		Color:       "#f39c12",
		Icon:        "time",
		Description: "Your order was received and is awaiting confirmation.",
	},
	enums.OrderStatusProcessing: {
		Color:       "#3498db",
		Icon:        "sync",
		Description: "Your order is being prepared.",
	},
	enums.OrderStatusShipped: {
		Color:       "#2ecc71",
		Icon:        "airplane",
		Description: "Your order is on its way.",
	},
	enums.OrderStatusDelivered: {
		Color:       "#27ae60",
		Icon:        "checkmark-circle",
		Description: "Your order was delivered.",
	},
	enums.OrderStatusCancelled: {
		Color:       "#e74c3c",
		Icon:        "close-circle",
		Description: "Your order was cancelled.",
	},
}

var unknownStatusDisplay = StatusDisplay{
	Color:       "#7f8c8d",
	Icon:        "help-circle",
	Description: "Order status unavailable.",
}

// DisplayFor returns the render hint for a status. Unknown statuses get a
// neutral fallback so a newer server value never breaks the history screen.
func DisplayFor(status enums.OrderStatus) StatusDisplay {
	if display, ok := statusDisplays[status]; ok {
		return display
	}
	return unknownStatusDisplay
}
