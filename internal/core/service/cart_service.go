package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/logs"
	"github.com/rl1809/storefront/internal/port"
)

// CartService wraps the cart store with mutation-time pre-validation
// against the catalog. The store itself never checks stock; the checks
// here only keep obviously stale entries out of the cart, checkout
// revalidates everything.
type CartService struct {
	carts   port.CartRepository
	catalog port.CatalogGateway
	logger  logs.Logger
}

func NewCartService(carts port.CartRepository, catalog port.CatalogGateway, logger logs.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

// SetQuantity upserts a cart entry after checking the product exists and
// current stock covers the requested quantity. qty <= 0 removes the entry.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return s.carts.Remove(ctx, userID, productID)
	}

	products, err := s.catalog.GetMany(ctx, []int64{productID})
	if err != nil {
		return fmt.Errorf("fetch product %d: %w", productID, err)
	}

	product, ok := products[productID]
	if !ok {
		return &ProductNotFoundError{ProductID: productID}
	}
	if product.Stock < qty {
		return &InsufficientStockError{ProductID: productID}
	}

	return s.carts.SetQuantity(ctx, userID, productID, qty)
}

func (s *CartService) Remove(ctx context.Context, userID, productID int64) error {
	return s.carts.Remove(ctx, userID, productID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.carts.Clear(ctx, userID)
}

// Get returns the cart joined with live product data plus the running
// total. Entries whose product has been deleted are skipped in the view;
// they still fail checkout.
func (s *CartService) Get(ctx context.Context, userID int64) ([]domain.CartItem, decimal.Decimal, error) {
	cart, err := s.carts.GetAll(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("read cart: %w", err)
	}

	items := make([]domain.CartItem, 0, len(cart))
	if len(cart) == 0 {
		return items, decimal.Zero, nil
	}

	ids := sortedProductIDs(cart)
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("fetch products: %w", err)
	}

	total := decimal.Zero
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			s.logger.Warn("cart references missing product", "product_id", id, "user_id", userID)
			continue
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(cart[id]))).Round(2)
		items = append(items, domain.CartItem{
			ProductID:   id,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    cart[id],
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}

	return items, total.Round(2), nil
}

func sortedProductIDs(cart domain.Cart) []int64 {
	ids := make([]int64, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
