package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/logs"
	"github.com/rl1809/storefront/internal/port"
)

// OrderService owns the cart-to-order pipeline: checkout, the order state
// machine, and stock compensation on cancellation. Stock synchronization
// is delegated entirely to the catalog gateway's atomic decrement; the
// service holds no lock across products.
type OrderService struct {
	carts   port.CartRepository
	catalog port.CatalogGateway
	orders  port.OrderRepository
	logger  logs.Logger
}

func NewOrderService(carts port.CartRepository, catalog port.CatalogGateway, orders port.OrderRepository, logger logs.Logger) *OrderService {
	return &OrderService{
		carts:   carts,
		catalog: catalog,
		orders:  orders,
		logger:  logger,
	}
}

// PlaceOrder turns the user's cart into a persisted order. Stock is
// decremented per line, then the order is persisted, then the cart is
// cleared; any failure before the cart clear rolls back every decrement
// already applied, so a failed checkout leaves stock and cart as if the
// attempt never happened.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, shippingAddress string) (*domain.Order, error) {
	cart, err := s.carts.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	ids := sortedProductIDs(cart)

	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, &ProductNotFoundError{ProductID: id}
		}
	}

	// Decrement in stable id order; the gateway only guarantees atomicity
	// per product, so a failed line restores everything applied before it.
	applied := make([]int64, 0, len(ids))
	for _, id := range ids {
		ok, err := s.catalog.TryDecrementStock(ctx, id, cart[id])
		if err != nil {
			s.rollbackDecrements(ctx, cart, applied)
			return nil, fmt.Errorf("decrement stock for product %d: %w", id, err)
		}
		if !ok {
			s.rollbackDecrements(ctx, cart, applied)
			return nil, &InsufficientStockError{ProductID: id}
		}
		applied = append(applied, id)
	}

	lines := make([]domain.OrderLine, 0, len(ids))
	for _, id := range ids {
		product := products[id]
		lines = append(lines, domain.OrderLine{
			ProductID:   id,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    cart[id],
		})
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		CreatedAt:       time.Now().UTC(),
		TotalAmount:     domain.Total(lines),
		Status:          domain.OrderStatusPending,
		ShippingAddress: shippingAddress,
		Lines:           lines,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.rollbackDecrements(ctx, cart, applied)
		return nil, fmt.Errorf("%w: %v", ErrOrderPersistence, err)
	}

	// The order stands even if the clear fails; leftover cart entries are
	// a tolerated anomaly, not a checkout failure.
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Warn("cart not cleared after checkout", "error", err, "user_id", userID, "order_id", order.ID)
	}

	return order, nil
}

// rollbackDecrements restores the quantities decremented so far. It runs
// detached from the request's cancellation so a timed-out checkout still
// releases its stock.
func (s *OrderService) rollbackDecrements(ctx context.Context, cart domain.Cart, applied []int64) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range applied {
		if err := s.catalog.RestoreStock(ctx, id, cart[id]); err != nil {
			s.logger.Error("stock not restored during checkout rollback", "error", err, "product_id", id, "quantity", cart[id])
		}
	}
}

// Cancel moves the order to cancelled and restores each line's captured
// quantity to the catalog. The conditional status update is the once-only
// gate: a concurrent or repeated cancel loses the update and never
// restores stock a second time.
func (s *OrderService) Cancel(ctx context.Context, orderID string, userID int64) error {
	order, err := s.orders.GetOrder(ctx, orderID, userID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		// Missing and not-owned are indistinguishable to the caller.
		return ErrOrderNotFound
	}

	if _, err := domain.Transition(order.Status, domain.EventCancel); err != nil {
		return err
	}

	applied, err := s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled, domain.CancellableStatuses()...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if !applied {
		return domain.ErrInvalidTransition
	}

	// Per-line independent restoration: a deleted product cannot block
	// sibling lines or the cancellation itself.
	restoreCtx := context.WithoutCancel(ctx)
	for _, line := range order.Lines {
		if err := s.catalog.RestoreStock(restoreCtx, line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, port.ErrProductGone) {
				s.logger.Warn("product gone, stock not restored on cancellation", "product_id", line.ProductID, "order_id", orderID)
			} else {
				s.logger.Error("stock not restored on cancellation", "error", err, "product_id", line.ProductID, "order_id", orderID)
			}
		}
	}

	return nil
}

// Advance drives the forward fulfillment path (process, ship, deliver).
// Cancellation carries compensation and must go through Cancel.
func (s *OrderService) Advance(ctx context.Context, orderID string, event domain.OrderEvent) error {
	if event == domain.EventCancel {
		return domain.ErrInvalidTransition
	}

	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}

	next, err := domain.Transition(order.Status, event)
	if err != nil {
		return err
	}

	applied, err := s.orders.UpdateStatus(ctx, orderID, next, order.Status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if !applied {
		return domain.ErrInvalidTransition
	}

	return nil
}

// Get returns one of the user's orders with its lines.
func (s *OrderService) Get(ctx context.Context, orderID string, userID int64) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
