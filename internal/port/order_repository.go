package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists the order and its lines as one transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder returns the order with its lines, or nil if no order with
	// that id belongs to the user.
	GetOrder(ctx context.Context, orderID string, userID int64) (*domain.Order, error)

	// FindOrder returns the order regardless of owner, or nil if it does
	// not exist. Used by fulfillment-side operations.
	FindOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrders returns the user's orders, newest first, lines included.
	ListOrders(ctx context.Context, userID int64) ([]domain.Order, error)

	// UpdateStatus moves the order to the given status only if its current
	// status is one of from; reports whether the update was applied. The
	// guard and the write are a single atomic statement.
	UpdateStatus(ctx context.Context, orderID string, to domain.OrderStatus, from ...domain.OrderStatus) (bool, error)
}
