package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CartRepository interface {
	// SetQuantity upserts a cart entry; qty <= 0 is equivalent to Remove.
	SetQuantity(ctx context.Context, userID, productID int64, qty int) error

	// Remove deletes one entry; removing a missing entry is a no-op.
	Remove(ctx context.Context, userID, productID int64) error

	// GetAll returns the user's current cart, empty (never nil) when the
	// user has no entries.
	GetAll(ctx context.Context, userID int64) (domain.Cart, error)

	// Clear removes every entry for the user; idempotent.
	Clear(ctx context.Context, userID int64) error
}
