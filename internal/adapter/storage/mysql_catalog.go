package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// MySQLCatalogAdapter reads product data and applies stock mutations. The
// decrement is a single conditional UPDATE, so concurrent checkouts
// serialize on the row and stock can never go negative.
type MySQLCatalogAdapter struct {
	db *sql.DB
}

func NewMySQLCatalogAdapter(db *sql.DB) *MySQLCatalogAdapter {
	return &MySQLCatalogAdapter{db: db}
}

func (m *MySQLCatalogAdapter) GetMany(ctx context.Context, productIDs []int64) (map[int64]domain.ProductInfo, error) {
	result := make(map[int64]domain.ProductInfo, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(productIDs)), ",")
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}

	rows, err := m.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, price, stock FROM products WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ProductInfo
		var price decimal.Decimal
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price = price
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return result, nil
}

func (m *MySQLCatalogAdapter) TryDecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, updated_at = NOW()
		WHERE id = ? AND stock >= ?`,
		qty, productID, qty,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (m *MySQLCatalogAdapter) RestoreStock(ctx context.Context, productID int64, qty int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + ?, updated_at = NOW()
		WHERE id = ?`,
		qty, productID,
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrProductGone
	}
	return nil
}
