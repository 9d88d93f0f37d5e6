package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Mock CartRepository
type mockCartRepo struct {
	mu       sync.Mutex
	carts    map[int64]domain.Cart
	clearErr error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[int64]domain.Cart)}
}

func (m *mockCartRepo) SetQuantity(ctx context.Context, userID, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if qty <= 0 {
		delete(m.carts[userID], productID)
		return nil
	}
	if m.carts[userID] == nil {
		m.carts[userID] = make(domain.Cart)
	}
	m.carts[userID][productID] = qty
	return nil
}

func (m *mockCartRepo) Remove(ctx context.Context, userID, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts[userID], productID)
	return nil
}

func (m *mockCartRepo) GetAll(ctx context.Context, userID int64) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(domain.Cart, len(m.carts[userID]))
	for id, qty := range m.carts[userID] {
		snapshot[id] = qty
	}
	return snapshot, nil
}

func (m *mockCartRepo) Clear(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.clearErr != nil {
		return m.clearErr
	}
	delete(m.carts, userID)
	return nil
}

func (m *mockCartRepo) size(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.carts[userID])
}

// Mock CatalogGateway
type mockCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.ProductInfo
}

func newMockCatalog(products ...domain.ProductInfo) *mockCatalog {
	m := &mockCatalog{products: make(map[int64]domain.ProductInfo)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) GetMany(ctx context.Context, productIDs []int64) (map[int64]domain.ProductInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[int64]domain.ProductInfo, len(productIDs))
	for _, id := range productIDs {
		if p, ok := m.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (m *mockCatalog) TryDecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	m.products[productID] = p
	return true, nil
}

func (m *mockCatalog) RestoreStock(ctx context.Context, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return port.ErrProductGone
	}
	p.Stock += qty
	m.products[productID] = p
	return nil
}

func (m *mockCatalog) stock(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].Stock
}

func (m *mockCatalog) remove(productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, productID)
}

// Mock OrderRepository
type mockOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	createErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	stored := *order
	stored.Lines = slices.Clone(order.Lines)
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, orderID string, userID int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, nil
	}
	copied := *order
	copied.Lines = slices.Clone(order.Lines)
	return &copied, nil
}

func (m *mockOrderRepo) FindOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	copied := *order
	copied.Lines = slices.Clone(order.Lines)
	return &copied, nil
}

func (m *mockOrderRepo) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			result = append(result, *order)
		}
	}
	slices.SortFunc(result, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, orderID string, to domain.OrderStatus, from ...domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok || !slices.Contains(from, order.Status) {
		return false, nil
	}
	order.Status = to
	now := time.Now().UTC()
	switch to {
	case domain.OrderStatusShipped:
		order.ShippedAt = &now
	case domain.OrderStatusDelivered:
		order.DeliveredAt = &now
	}
	return true, nil
}

func (m *mockOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *mockOrderRepo) status(orderID string) domain.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[orderID].Status
}
