package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type OrderEvent string

const (
	EventProcess OrderEvent = "process"
	EventShip    OrderEvent = "ship"
	EventDeliver OrderEvent = "deliver"
	EventCancel  OrderEvent = "cancel"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// transitions is the exhaustive legality table: anything absent is rejected.
var transitions = map[OrderStatus]map[OrderEvent]OrderStatus{
	OrderStatusPending: {
		EventProcess: OrderStatusProcessing,
		EventCancel:  OrderStatusCancelled,
	},
	OrderStatusProcessing: {
		EventShip:   OrderStatusShipped,
		EventCancel: OrderStatusCancelled,
	},
	OrderStatusShipped: {
		EventDeliver: OrderStatusDelivered,
	},
}

// Transition returns the status that applying event to current yields, or
// ErrInvalidTransition if the legality table does not allow it.
func Transition(current OrderStatus, event OrderEvent) (OrderStatus, error) {
	next, ok := transitions[current][event]
	if !ok {
		return current, ErrInvalidTransition
	}
	return next, nil
}

// CancellableStatuses lists the statuses from which EventCancel is legal.
func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusProcessing}
}

type Order struct {
	ID              string
	UserID          int64
	CreatedAt       time.Time
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	ShippingAddress string
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	Lines           []OrderLine
}

// OrderLine snapshots the unit price and product name at order time; it is
// never re-read from the catalog afterward.
type OrderLine struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Subtotal is unit price times quantity, rounded to 2 decimal places.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Total sums the line subtotals with the same 2-decimal rounding.
func Total(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}
