// Package ledger implements the append-only stock ledger.
//
// Every stock change is recorded as a StockTransaction header with one or
// more StockTransactionLine rows. The denormalized Product.StockQuantity
// balance is updated in the same database transaction, so history and
// balance never diverge.
package ledger

import (
	"context"
	"time"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
)

// Direction of stock movement.
type Direction string

const (
	// DirectionIn increases stock (receipts, returns, opening balances)
	DirectionIn Direction = "in"

	// DirectionOut decreases stock (sales, write-offs)
	DirectionOut Direction = "out"
)

// Valid reports whether the direction is a known value.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Sign returns +1 for incoming and -1 for outgoing movements.
func (d Direction) Sign() int64 {
	if d == DirectionOut {
		return -1
	}
	return 1
}

// StockTransaction is an immutable ledger header.
// Once written it is never updated or deleted.
type StockTransaction struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Number is the human-readable sequential number (ST-2026-00001)
	Number string `db:"number" json:"number"`

	// Direction of the movement
	Direction Direction `db:"direction" json:"direction"`

	// UserID is the actor who recorded the transaction
	UserID id.ID `db:"user_id" json:"userId"`

	// TotalValue is the sum of all line totals
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	// Note is optional free-form text
	Note string `db:"note" json:"note"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Lines are loaded on demand (not populated by list queries)
	Lines []*StockTransactionLine `db:"-" json:"lines,omitempty"`
}

// StockTransactionLine is a single product movement within a transaction.
type StockTransactionLine struct {
	ID id.ID `db:"id" json:"id"`

	TransactionID id.ID `db:"transaction_id" json:"transactionId"`

	// LineNo is the 1-based position within the transaction
	LineNo int `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity in whole units, always positive; Direction gives the sign
	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitPrice captured at recording time
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// LineTotal = Quantity * UnitPrice
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Validate checks header invariants.
func (t *StockTransaction) Validate(ctx context.Context) error {
	if !t.Direction.Valid() {
		return apperror.NewValidation("direction must be 'in' or 'out'").
			WithDetail("field", "direction").
			WithDetail("value", string(t.Direction))
	}

	if len(t.Lines) == 0 {
		return apperror.NewValidation("transaction must have at least one line").
			WithDetail("field", "lines")
	}

	for _, line := range t.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("line product id is required").
				WithDetail("lineNo", line.LineNo)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("lineNo", line.LineNo).
				WithDetail("productId", line.ProductID).
				WithDetail("quantity", line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("line unit price must not be negative").
				WithDetail("lineNo", line.LineNo).
				WithDetail("productId", line.ProductID)
		}
	}

	return nil
}

// RecalculateTotals recomputes line totals and the header total.
func (t *StockTransaction) RecalculateTotals() {
	total := types.Zero()
	for _, line := range t.Lines {
		line.LineTotal = types.MoneyFromUnits(line.Quantity, line.UnitPrice)
		total = total.Add(line.LineTotal)
	}
	t.TotalValue = total
}
