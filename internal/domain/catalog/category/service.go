package category

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

// codePrefix is used for auto-generated category codes.
const codePrefix = "CAT"

// Service implements business logic for categories.
type Service struct {
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a category service.
func NewService(repo Repository, num *numerator.Service) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
	}
}

// Create validates and persists a new category.
// Code is auto-generated when empty.
func (s *Service) Create(ctx context.Context, c *Category) error {
	if c == nil {
		return apperror.NewValidation("category is required")
	}

	if err := c.Validate(ctx); err != nil {
		return err
	}

	if c.Code == "" {
		cfg := numerator.Config{Prefix: codePrefix, PadWidth: 4, ResetPeriod: "never"}
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("generate category code: %w", err))
		}
		c.Code = code
	}

	if id.IsNil(c.ID) {
		c.BaseEntity = entity.NewBaseEntity()
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	logger.Info(ctx, "category created", "id", c.ID, "code", c.Code)
	return nil
}

// GetByID returns a category by ID.
func (s *Service) GetByID(ctx context.Context, categoryID id.ID) (*Category, error) {
	if id.IsNil(categoryID) {
		return nil, apperror.NewValidation("category id is required")
	}
	return s.repo.GetByID(ctx, categoryID)
}

// Update validates and persists category changes.
func (s *Service) Update(ctx context.Context, c *Category) error {
	if c == nil || id.IsNil(c.ID) {
		return apperror.NewValidation("category id is required")
	}

	if err := c.Validate(ctx); err != nil {
		return err
	}

	c.Touch()
	return s.repo.Update(ctx, c)
}

// Delete marks a category as deleted (soft delete).
func (s *Service) Delete(ctx context.Context, categoryID id.ID) error {
	if id.IsNil(categoryID) {
		return apperror.NewValidation("category id is required")
	}
	return s.repo.SetDeletionMark(ctx, categoryID, true)
}

// List returns categories matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[*Category], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
