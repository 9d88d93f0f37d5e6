package port

import (
	"context"
	"errors"

	"github.com/rl1809/storefront/internal/core/domain"
)

// ErrProductGone reports a stock restoration against a product that no
// longer exists in the catalog.
var ErrProductGone = errors.New("product no longer exists")

type CatalogGateway interface {
	// GetMany returns product data for the given ids; missing ids are
	// simply absent from the result, not an error.
	GetMany(ctx context.Context, productIDs []int64) (map[int64]domain.ProductInfo, error)

	// TryDecrementStock atomically subtracts qty if stock covers it,
	// returning false when it does not. The check and the write are one
	// operation; callers never read-modify-write stock themselves.
	TryDecrementStock(ctx context.Context, productID int64, qty int) (bool, error)

	// RestoreStock adds qty back unconditionally (checkout rollback,
	// cancellation compensation). Returns ErrProductGone if the product
	// has been deleted from the catalog.
	RestoreStock(ctx context.Context, productID int64, qty int) error
}
