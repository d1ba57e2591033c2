package category

import (
	"context"

	"freshmart/internal/core/id"
	"freshmart/internal/domain"
)

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, categoryID id.ID) (*Category, error)
	GetByCode(ctx context.Context, code string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	SetDeletionMark(ctx context.Context, categoryID id.ID, mark bool) error
	List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[*Category], error)
}
