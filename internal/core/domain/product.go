package domain

import "github.com/shopspring/decimal"

// ProductInfo is the read-only view of a catalog product the checkout
// pipeline works from: the price captured here is the price that ends up
// on the order line.
type ProductInfo struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}
