package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
)

// MySQLOrderAdapter persists orders and their lines. An order and its
// lines are written in one transaction; lines are never updated afterward.
type MySQLOrderAdapter struct {
	db *sql.DB
}

func NewMySQLOrderAdapter(db *sql.DB) *MySQLOrderAdapter {
	return &MySQLOrderAdapter{db: db}
}

func (m *MySQLOrderAdapter) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, created_at, total_amount, status, shipping_address)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.CreatedAt, order.TotalAmount,
		order.Status, order.ShippingAddress,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, product_name, unit_price, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			order.ID, line.ProductID, line.ProductName, line.UnitPrice, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLOrderAdapter) GetOrder(ctx context.Context, orderID string, userID int64) (*domain.Order, error) {
	return m.queryOrder(ctx, `
		SELECT id, user_id, created_at, total_amount, status, shipping_address, shipped_at, delivered_at
		FROM orders WHERE id = ? AND user_id = ?`, orderID, userID)
}

func (m *MySQLOrderAdapter) FindOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.queryOrder(ctx, `
		SELECT id, user_id, created_at, total_amount, status, shipping_address, shipped_at, delivered_at
		FROM orders WHERE id = ?`, orderID)
}

func (m *MySQLOrderAdapter) queryOrder(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	order, err := scanOrder(m.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	order.Lines, err = m.queryLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (m *MySQLOrderAdapter) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, user_id, created_at, total_amount, status, shipping_address, shipped_at, delivered_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		orders[i].Lines, err = m.queryLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (m *MySQLOrderAdapter) UpdateStatus(ctx context.Context, orderID string, to domain.OrderStatus, from ...domain.OrderStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}

	set := "status = ?"
	switch to {
	case domain.OrderStatusShipped:
		set = "status = ?, shipped_at = NOW()"
	case domain.OrderStatusDelivered:
		set = "status = ?, delivered_at = NOW()"
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := make([]any, 0, len(from)+2)
	args = append(args, to, orderID)
	for _, s := range from {
		args = append(args, s)
	}

	result, err := m.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE orders SET %s WHERE id = ? AND status IN (%s)`, set, placeholders), args...)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var shippedAt, deliveredAt sql.NullTime
	err := row.Scan(
		&order.ID, &order.UserID, &order.CreatedAt, &order.TotalAmount,
		&order.Status, &order.ShippingAddress, &shippedAt, &deliveredAt,
	)
	if err != nil {
		return nil, err
	}
	if shippedAt.Valid {
		order.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}
	return &order, nil
}

func (m *MySQLOrderAdapter) queryLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT product_id, product_name, unit_price, quantity
		FROM order_lines WHERE order_id = ? ORDER BY product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.UnitPrice, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}
