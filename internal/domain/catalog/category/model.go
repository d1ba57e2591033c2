// Package category implements the product category catalog.
package category

import (
	"context"

	"freshmart/internal/core/entity"
)

// Category groups products for navigation and reporting.
type Category struct {
	entity.Catalog

	// Description is optional free-form text
	Description string `db:"description" json:"description"`
}

// New creates a new Category with generated ID.
func New(code, name string) *Category {
	return &Category{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable.
func (c *Category) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}
