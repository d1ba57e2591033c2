package handlers

import (
	"github.com/gin-gonic/gin"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
	"freshmart/internal/domain/catalog/product"
	"freshmart/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service *product.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromProduct(p))
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ProductListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := product.ListFilter{
		ListFilter:   req.PaginationRequest.ToFilter(),
		LowStockOnly: req.LowStock,
	}
	filter.Search = req.Search

	if req.CategoryID != "" {
		categoryID, err := id.Parse(req.CategoryID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid category id").
				WithDetail("field", "categoryId").
				WithDetail("value", req.CategoryID))
			return
		}
		filter.CategoryID = categoryID
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromProduct))
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := applyProductUpdate(p, req); err != nil {
		h.Error(c, err)
		return
	}
	p.Version = req.Version

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

func applyProductUpdate(p *product.Product, req dto.UpdateProductRequest) error {
	if req.Code != nil {
		p.Code = *req.Code
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}

	if req.Price != nil {
		price, err := types.NewMoneyFromString(*req.Price)
		if err != nil {
			return apperror.NewValidation("invalid price").
				WithDetail("field", "price").
				WithDetail("value", *req.Price)
		}
		p.Price = price
	}

	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			p.CategoryID = nil
		} else {
			categoryID, err := id.Parse(*req.CategoryID)
			if err != nil {
				return apperror.NewValidation("invalid category id").
					WithDetail("field", "categoryId").
					WithDetail("value", *req.CategoryID)
			}
			p.CategoryID = &categoryID
		}
	}

	return nil
}

// Delete handles DELETE /products/:id (soft delete).
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// LowStock handles GET /products/low-stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 0)

	items, err := h.service.LowStock(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.FromProduct(p))
	}
	h.OK(c, gin.H{"items": out})
}
