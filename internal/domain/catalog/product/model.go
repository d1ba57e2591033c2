// Package product implements the product catalog.
//
// StockQuantity is a denormalized balance maintained by the stock ledger.
// It is never written directly by catalog operations.
package product

import (
	"context"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/entity"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
)

// Product is a sellable item tracked by the stock ledger.
type Product struct {
	entity.Catalog

	// CategoryID links to the category catalog, nil when uncategorized
	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	// Description is optional free-form text
	Description string `db:"description" json:"description"`

	// Unit of measure (pcs, kg, l)
	Unit string `db:"unit" json:"unit"`

	// Price is the current selling price per unit
	Price types.Money `db:"price" json:"price"`

	// StockQuantity is the current on-hand balance in units
	StockQuantity int64 `db:"stock_quantity" json:"stockQuantity"`

	// MinStockLevel triggers low-stock reporting when balance drops below it
	MinStockLevel int64 `db:"min_stock_level" json:"minStockLevel"`
}

// New creates a new Product with generated ID.
func New(code, name string, price types.Money) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Unit:    "pcs",
		Price:   price,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("field", "price").
			WithDetail("value", p.Price.String())
	}

	if p.MinStockLevel < 0 {
		return apperror.NewValidation("min stock level must not be negative").
			WithDetail("field", "minStockLevel")
	}

	return nil
}

// IsLowStock reports whether the balance dropped below the minimum level.
func (p *Product) IsLowStock() bool {
	return p.MinStockLevel > 0 && p.StockQuantity < p.MinStockLevel
}
