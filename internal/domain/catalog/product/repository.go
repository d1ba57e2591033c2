package product

import (
	"context"

	"freshmart/internal/core/id"
	"freshmart/internal/domain"
)

// ListFilter extends the common filter with product-specific options.
type ListFilter struct {
	domain.ListFilter

	// CategoryID limits results to one category when set
	CategoryID id.ID

	// LowStockOnly returns only products below their minimum stock level
	LowStockOnly bool
}

// Repository defines persistence operations for products.
//
// AdjustStock is the only write path for StockQuantity. Implementations
// must apply the change conditionally so the balance never goes negative.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)

	// GetByIDs returns products for the given IDs in one round trip.
	// Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, productIDs []id.ID) ([]*Product, error)

	Update(ctx context.Context, p *Product) error
	SetDeletionMark(ctx context.Context, productID id.ID, mark bool) error
	List(ctx context.Context, filter ListFilter) (*domain.ListResult[*Product], error)

	// AdjustStock changes StockQuantity by delta (negative for outgoing).
	// For negative deltas the update applies only when the resulting
	// balance stays non-negative; otherwise an insufficient-stock error
	// is returned and no row is changed.
	AdjustStock(ctx context.Context, productID id.ID, delta int64) error

	// FindLowStock returns products whose balance is below MinStockLevel.
	FindLowStock(ctx context.Context, limit int) ([]*Product, error)
}
