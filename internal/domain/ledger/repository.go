package ledger

import (
	"context"
	"time"

	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
	"freshmart/internal/domain"
)

// ListFilter narrows transaction history queries.
type ListFilter struct {
	domain.ListFilter

	// Direction filters by movement direction when set
	Direction Direction

	// ProductID limits results to transactions touching one product
	ProductID id.ID

	// Date range on CreatedAt (inclusive)
	DateFrom *time.Time
	DateTo   *time.Time
}

// Turnover aggregates movements for a product over a period.
type Turnover struct {
	ProductID   id.ID       `db:"product_id" json:"productId"`
	IncomingQty int64       `db:"incoming_qty" json:"incomingQty"`
	OutgoingQty int64       `db:"outgoing_qty" json:"outgoingQty"`
	IncomingVal types.Money `db:"incoming_val" json:"incomingVal"`
	OutgoingVal types.Money `db:"outgoing_val" json:"outgoingVal"`
}

// Repository defines persistence operations for the stock ledger.
//
// Create must run inside an active database transaction so the caller can
// combine it with balance updates atomically.
type Repository interface {
	// Create inserts the header and all lines.
	Create(ctx context.Context, t *StockTransaction) error

	// GetByID returns the header with lines populated.
	GetByID(ctx context.Context, txID id.ID) (*StockTransaction, error)

	// List returns headers only (no lines), newest first.
	List(ctx context.Context, filter ListFilter) (*domain.ListResult[*StockTransaction], error)

	// GetTurnover aggregates ledger movements per product for a period.
	// Used for balance reconciliation and reporting.
	GetTurnover(ctx context.Context, productID id.ID, from, to time.Time) (*Turnover, error)
}
