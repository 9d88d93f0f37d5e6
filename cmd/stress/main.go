package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logs"
)

const (
	initialStock = 20
	totalBuyers  = 50
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(100)
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 100})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Seed a scarce product
	result, err := db.ExecContext(ctx,
		`INSERT INTO products (name, price, stock) VALUES (?, ?, ?)`,
		"stress-item", decimal.RequireFromString("9.99"), initialStock)
	if err != nil {
		log.Fatalf("failed to seed product: %v", err)
	}
	productID, err := result.LastInsertId()
	if err != nil {
		log.Fatalf("failed to read product id: %v", err)
	}
	defer db.ExecContext(context.Background(), `DELETE FROM products WHERE id = ?`, productID)

	cartRepo := storage.NewRedisCartAdapter(rdb)
	catalog := storage.NewMySQLCatalogAdapter(db)
	orderRepo := storage.NewMySQLOrderAdapter(db)
	orderService := service.NewOrderService(cartRepo, catalog, orderRepo, logs.NewSlogLogger())

	// Fill one cart per buyer: everyone wants a single unit.
	for i := 0; i < totalBuyers; i++ {
		userID := int64(1000 + i)
		if err := cartRepo.SetQuantity(ctx, userID, productID, 1); err != nil {
			log.Fatalf("failed to fill cart for user %d: %v", userID, err)
		}
	}

	var successCount atomic.Int32
	var conflictCount atomic.Int32
	var errorCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalBuyers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()

			_, err := orderService.PlaceOrder(ctx, userID, "1 Stress Lane")
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrInsufficientStock):
				conflictCount.Add(1)
			default:
				errorCount.Add(1)
				log.Printf("user %d: unexpected error: %v", userID, err)
			}
		}(int64(1000 + i))
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	conflict := conflictCount.Load()
	failed := errorCount.Load()

	fmt.Println("========== CHECKOUT STRESS RESULTS ==========")
	fmt.Printf("Initial Stock:     %d\n", initialStock)
	fmt.Printf("Concurrent Buyers: %d\n", totalBuyers)
	fmt.Printf("Orders Placed:     %d\n", success)
	fmt.Printf("Out of Stock:      %d\n", conflict)
	fmt.Printf("Errors:            %d\n", failed)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("=============================================")

	if success == int32(initialStock) && conflict == int32(totalBuyers-initialStock) && failed == 0 {
		fmt.Printf("PASS: exactly %d orders succeeded, %d rejected\n", initialStock, totalBuyers-initialStock)
	} else {
		fmt.Printf("FAIL: expected %d success/%d conflict, got %d/%d (%d errors)\n",
			initialStock, totalBuyers-initialStock, success, conflict, failed)
	}

	var finalStock int
	if err := db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, productID).Scan(&finalStock); err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", finalStock)
	if finalStock == 0 {
		fmt.Println("PASS: stock depleted to 0")
	} else {
		fmt.Printf("FAIL: expected stock 0, got %d\n", finalStock)
	}
}
