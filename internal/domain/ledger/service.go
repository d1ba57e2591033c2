package ledger

import (
	"context"
	"fmt"
	"time"

	"freshmart/internal/core/apperror"
	appctx "freshmart/internal/core/context"
	"freshmart/internal/core/id"
	"freshmart/internal/core/tx"
	"freshmart/internal/core/types"
	"freshmart/internal/domain"
	"freshmart/internal/domain/catalog/product"
	"freshmart/pkg/logger"
	"freshmart/pkg/numerator"
)

// numberPrefix is used for transaction numbers (ST-2026-00001).
const numberPrefix = "ST"

// Actor identifies the user who recorded a transaction.
type Actor struct {
	ID    id.ID  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ActorDirectory resolves user IDs to display information.
// Implemented by the auth service.
type ActorDirectory interface {
	GetActor(ctx context.Context, userID id.ID) (*Actor, error)
}

// ProductSnapshot is the product state attached to history views.
// Price and StockQuantity reflect the product at read time, not at
// recording time; the line's own UnitPrice holds the recorded price.
type ProductSnapshot struct {
	ID            id.ID       `json:"id"`
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	Unit          string      `json:"unit"`
	Price         types.Money `json:"price"`
	StockQuantity int64       `json:"stockQuantity"`
}

// LineView is a transaction line enriched with its product snapshot.
type LineView struct {
	StockTransactionLine
	Product ProductSnapshot `json:"product"`
}

// TransactionView is a full transaction for history reading.
type TransactionView struct {
	StockTransaction
	Actor *Actor     `json:"actor,omitempty"`
	Lines []LineView `json:"lines"`
}

// Service implements the stock ledger business logic.
type Service struct {
	repo      Repository
	products  product.Repository
	actors    ActorDirectory
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a ledger service.
func NewService(
	repo Repository,
	products product.Repository,
	actors ActorDirectory,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		actors:    actors,
		numerator: num,
		txManager: txManager,
	}
}

// Create records a stock transaction and updates product balances.
//
// The header insert, all line inserts and every balance update run in one
// database transaction. Any failure (unknown product, insufficient stock)
// rolls back the whole operation, so no partial writes are observable.
func (s *Service) Create(ctx context.Context, input CreateInput) (*StockTransaction, error) {
	if !input.Direction.Valid() {
		return nil, apperror.NewValidation("direction must be 'in' or 'out'").
			WithDetail("field", "direction").
			WithDetail("value", string(input.Direction))
	}

	lines, err := NormalizeLines(input.Lines)
	if err != nil {
		return nil, err
	}

	userID, err := s.actorID(ctx)
	if err != nil {
		return nil, err
	}

	// Numbers are allocated outside the transaction. A rollback may leave
	// a gap in the sequence, which is acceptable for ledger numbers.
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(numberPrefix), nil, time.Now())
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generate transaction number: %w", err))
	}

	t := &StockTransaction{
		ID:        id.New(),
		Number:    number,
		Direction: input.Direction,
		UserID:    userID,
		Note:      input.Note,
		CreatedAt: time.Now().UTC(),
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		byID, err := s.loadProducts(ctx, lines)
		if err != nil {
			return err
		}

		t.Lines = make([]*StockTransactionLine, 0, len(lines))
		for i, line := range lines {
			p := byID[line.ProductID]

			unitPrice := p.Price
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}

			t.Lines = append(t.Lines, &StockTransactionLine{
				ID:            id.New(),
				TransactionID: t.ID,
				LineNo:        i + 1,
				ProductID:     line.ProductID,
				Quantity:      line.Quantity,
				UnitPrice:     unitPrice,
			})
		}
		t.RecalculateTotals()

		if err := t.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, t); err != nil {
			return err
		}

		sign := t.Direction.Sign()
		for _, line := range t.Lines {
			if err := s.products.AdjustStock(ctx, line.ProductID, sign*line.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock transaction recorded",
		"id", t.ID,
		"number", t.Number,
		"direction", t.Direction,
		"lines", len(t.Lines),
		"total", t.TotalValue,
	)

	return t, nil
}

// GetByID returns a transaction with lines, product snapshots and actor.
func (s *Service) GetByID(ctx context.Context, txID id.ID) (*TransactionView, error) {
	if id.IsNil(txID) {
		return nil, apperror.NewValidation("transaction id is required")
	}

	t, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]id.ID, 0, len(t.Lines))
	for _, line := range t.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[id.ID]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := &TransactionView{
		StockTransaction: *t,
		Lines:            make([]LineView, 0, len(t.Lines)),
	}
	view.StockTransaction.Lines = nil

	for _, line := range t.Lines {
		lv := LineView{StockTransactionLine: *line}
		if p, ok := byID[line.ProductID]; ok {
			lv.Product = ProductSnapshot{
				ID:            p.ID,
				Code:          p.Code,
				Name:          p.Name,
				Unit:          p.Unit,
				Price:         p.Price,
				StockQuantity: p.StockQuantity,
			}
		}
		view.Lines = append(view.Lines, lv)
	}

	if actor, err := s.actors.GetActor(ctx, t.UserID); err == nil {
		view.Actor = actor
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	return view, nil
}

// List returns transaction headers matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (*domain.ListResult[*StockTransaction], error) {
	if filter.Direction != "" && !filter.Direction.Valid() {
		return nil, apperror.NewValidation("direction must be 'in' or 'out'").
			WithDetail("field", "direction").
			WithDetail("value", string(filter.Direction))
	}

	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, apperror.NewValidation("date range is inverted").
			WithDetail("dateFrom", filter.DateFrom).
			WithDetail("dateTo", filter.DateTo)
	}

	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// GetTurnover aggregates ledger movements for a product over a period.
func (s *Service) GetTurnover(ctx context.Context, productID id.ID, from, to time.Time) (*Turnover, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product id is required")
	}
	if to.Before(from) {
		return nil, apperror.NewValidation("date range is inverted")
	}
	return s.repo.GetTurnover(ctx, productID, from, to)
}

// actorID extracts the authenticated user from context.
func (s *Service) actorID(ctx context.Context) (id.ID, error) {
	raw := appctx.GetUserID(ctx)
	if raw == "" {
		return id.Nil(), apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewUnauthorized("invalid user identity")
	}
	return userID, nil
}

// loadProducts fetches all referenced products and verifies they exist
// and are not marked as deleted.
func (s *Service) loadProducts(ctx context.Context, lines []LineInput) (map[id.ID]*product.Product, error) {
	ids := make([]id.ID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[id.ID]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", line.ProductID)
		}
		if p.DeletionMark {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot move stock for a deleted product").
				WithDetail("productId", p.ID).
				WithDetail("code", p.Code)
		}
	}

	return byID, nil
}
