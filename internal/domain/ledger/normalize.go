package ledger

import (
	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
)

// LineInput is one requested product movement before normalization.
type LineInput struct {
	ProductID id.ID

	// Quantity in whole units, must be positive
	Quantity int64

	// UnitPrice is optional; when nil the product's current price is used
	UnitPrice *types.Money
}

// CreateInput is a request to record a stock transaction.
type CreateInput struct {
	Direction Direction
	Note      string
	Lines     []LineInput
}

// NormalizeLines validates and merges the requested lines.
//
// Duplicate product entries are merged into a single line: quantities are
// summed, the unit price of the first occurrence wins, and the first
// occurrence keeps its position. Order of first occurrences is preserved.
func NormalizeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("transaction must have at least one line").
			WithDetail("field", "lines")
	}

	merged := make([]LineInput, 0, len(lines))
	index := make(map[id.ID]int, len(lines))

	for i, line := range lines {
		if id.IsNil(line.ProductID) {
			return nil, apperror.NewValidation("line product id is required").
				WithDetail("lineIndex", i)
		}
		if line.Quantity <= 0 {
			return nil, apperror.NewValidation("line quantity must be positive").
				WithDetail("lineIndex", i).
				WithDetail("productId", line.ProductID).
				WithDetail("quantity", line.Quantity)
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return nil, apperror.NewValidation("line unit price must not be negative").
				WithDetail("lineIndex", i).
				WithDetail("productId", line.ProductID)
		}

		if pos, seen := index[line.ProductID]; seen {
			// First occurrence keeps its price and position.
			merged[pos].Quantity += line.Quantity
			continue
		}

		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged, nil
}
