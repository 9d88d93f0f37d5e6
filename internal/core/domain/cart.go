package domain

import "github.com/shopspring/decimal"

// Cart maps product ID to desired quantity for one user. Entries with
// quantity <= 0 do not exist; insertion order carries no meaning.
type Cart map[int64]int

// CartItem is a cart entry joined with live product data for display.
type CartItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
