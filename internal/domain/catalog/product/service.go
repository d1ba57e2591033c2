package product

import (
	"context"
	"fmt"
	"time"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/entity"
	"freshmart/internal/core/id"
	"freshmart/internal/domain"
	"freshmart/pkg/logger"
	"freshmart/pkg/numerator"
)

// codePrefix is used for auto-generated product codes.
const codePrefix = "PRD"

// Service implements business logic for products.
type Service struct {
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a product service.
func NewService(repo Repository, num *numerator.Service) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
	}
}

// Create validates and persists a new product.
// Code is auto-generated when empty. StockQuantity always starts at zero;
// opening balances are recorded through the stock ledger.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if p == nil {
		return apperror.NewValidation("product is required")
	}

	if err := p.Validate(ctx); err != nil {
		return err
	}

	if p.Code == "" {
		cfg := numerator.Config{Prefix: codePrefix, PadWidth: 5, ResetPeriod: "never"}
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("generate product code: %w", err))
		}
		p.Code = code
	}

	if id.IsNil(p.ID) {
		p.BaseEntity = entity.NewBaseEntity()
	}
	p.StockQuantity = 0

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "code", p.Code)
	return nil
}

// GetByID returns a product by ID.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product id is required")
	}
	return s.repo.GetByID(ctx, productID)
}

// Update validates and persists product changes.
// StockQuantity is not updatable here; the ledger owns it.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if p == nil || id.IsNil(p.ID) {
		return apperror.NewValidation("product id is required")
	}

	if err := p.Validate(ctx); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.StockQuantity = current.StockQuantity

	p.Touch()
	return s.repo.Update(ctx, p)
}

// Delete marks a product as deleted (soft delete).
// Ledger history referencing the product stays intact.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if id.IsNil(productID) {
		return apperror.NewValidation("product id is required")
	}
	return s.repo.SetDeletionMark(ctx, productID, true)
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (*domain.ListResult[*Product], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// LowStock returns products below their minimum stock level.
func (s *Service) LowStock(ctx context.Context, limit int) ([]*Product, error) {
	if limit <= 0 || limit > domain.MaxLimit {
		limit = domain.MaxLimit
	}
	return s.repo.FindLowStock(ctx, limit)
}
