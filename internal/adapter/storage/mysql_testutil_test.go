package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

func getTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			stock INT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id CHAR(36) PRIMARY KEY,
			user_id BIGINT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			shipping_address VARCHAR(500) NOT NULL,
			shipped_at DATETIME NULL,
			delivered_at DATETIME NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id CHAR(36) NOT NULL,
			product_id BIGINT NOT NULL,
			product_name VARCHAR(100) NOT NULL,
			unit_price DECIMAL(10,2) NOT NULL,
			quantity INT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("create test schema: %v", err)
		}
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func seedProduct(t *testing.T, db *sql.DB, name string, price decimal.Decimal, stock int) int64 {
	t.Helper()

	result, err := db.Exec(`INSERT INTO products (name, price, stock) VALUES (?, ?, ?)`,
		name, price, stock)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("seed product id: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM products WHERE id = ?`, id)
	})
	return id
}

func productStock(t *testing.T, db *sql.DB, productID int64) int {
	t.Helper()

	var stock int
	if err := db.QueryRow(`SELECT stock FROM products WHERE id = ?`, productID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}
