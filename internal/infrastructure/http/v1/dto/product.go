package dto

import (
	"time"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
	"freshmart/internal/domain/catalog/product"
)

// ProductResponse is the public product representation.
type ProductResponse struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	CategoryID    *string   `json:"categoryId,omitempty"`
	Description   string    `json:"description,omitempty"`
	Unit          string    `json:"unit"`
	Price         string    `json:"price"`
	StockQuantity int64     `json:"stockQuantity"`
	MinStockLevel int64     `json:"minStockLevel"`
	LowStock      bool      `json:"lowStock"`
	DeletionMark  bool      `json:"deletionMark"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FromProduct maps a product entity to its response.
// Prices are serialized as strings to preserve decimal precision.
func FromProduct(p *product.Product) ProductResponse {
	var categoryID *string
	if p.CategoryID != nil {
		s := p.CategoryID.String()
		categoryID = &s
	}
	return ProductResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		Name:          p.Name,
		CategoryID:    categoryID,
		Description:   p.Description,
		Unit:          p.Unit,
		Price:         p.Price.String(),
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.IsLowStock(),
		DeletionMark:  p.DeletionMark,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	CategoryID    *string `json:"categoryId"`
	Description   string  `json:"description"`
	Unit          string  `json:"unit"`
	Price         string  `json:"price" binding:"required"`
	MinStockLevel int64   `json:"minStockLevel"`
}

// ToEntity converts the request to a product entity.
func (r CreateProductRequest) ToEntity() (*product.Product, error) {
	price, err := types.NewMoneyFromString(r.Price)
	if err != nil {
		return nil, apperror.NewValidation("invalid price").
			WithDetail("field", "price").
			WithDetail("value", r.Price)
	}

	p := product.New(r.Code, r.Name, price)
	p.Description = r.Description
	p.MinStockLevel = r.MinStockLevel
	if r.Unit != "" {
		p.Unit = r.Unit
	}

	if r.CategoryID != nil && *r.CategoryID != "" {
		categoryID, err := id.Parse(*r.CategoryID)
		if err != nil {
			return nil, apperror.NewValidation("invalid category id").
				WithDetail("field", "categoryId").
				WithDetail("value", *r.CategoryID)
		}
		p.CategoryID = &categoryID
	}

	return p, nil
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Code          *string `json:"code"`
	Name          *string `json:"name"`
	CategoryID    *string `json:"categoryId"`
	Description   *string `json:"description"`
	Unit          *string `json:"unit"`
	Price         *string `json:"price"`
	MinStockLevel *int64  `json:"minStockLevel"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ProductListRequest contains product list query parameters.
type ProductListRequest struct {
	PaginationRequest
	Search     string `form:"search"`
	CategoryID string `form:"categoryId"`
	LowStock   bool   `form:"lowStock"`
}
