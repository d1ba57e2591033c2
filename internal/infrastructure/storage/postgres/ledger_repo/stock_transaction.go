// Package ledger_repo implements the stock ledger repository over PostgreSQL.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/domain"
	"freshmart/internal/domain/ledger"
	"freshmart/internal/infrastructure/storage/postgres"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const (
	headerTable = "stock_transactions"
	lineTable   = "stock_transaction_lines"
)

var headerColumns = []string{
	"id", "number", "direction", "user_id", "total_value", "note", "created_at",
}

var lineColumns = []string{
	"id", "transaction_id", "line_no", "product_id",
	"quantity", "unit_price", "line_total",
}

// StockTransactionRepo implements ledger.Repository.
//
// Headers go through a plain INSERT; lines use the COPY protocol, which
// pays off for bulk receipts. Every write also lands in the audit trail
// on the same transaction.
type StockTransactionRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
	audit     *postgres.AuditService
}

// NewStockTransactionRepo creates a new stock transaction repository.
func NewStockTransactionRepo(txManager *postgres.TxManager, audit *postgres.AuditService) *StockTransactionRepo {
	return &StockTransactionRepo{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
		audit:     audit,
	}
}

var _ ledger.Repository = (*StockTransactionRepo)(nil)

// Create inserts the header and all lines.
// Must be called inside an active transaction.
func (r *StockTransactionRepo) Create(ctx context.Context, t *ledger.StockTransaction) error {
	sql, args, err := psql.Insert(headerTable).
		Columns(headerColumns...).
		Values(t.ID, t.Number, t.Direction, t.UserID, t.TotalValue, t.Note, t.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("stock transaction", "number", t.Number)
		}
		return fmt.Errorf("insert header: %w", err)
	}

	rows := make([][]any, 0, len(t.Lines))
	for _, line := range t.Lines {
		rows = append(rows, []any{
			line.ID, line.TransactionID, line.LineNo, line.ProductID,
			line.Quantity, line.UnitPrice, line.LineTotal,
		})
	}

	copied, err := r.batch.CopyFromSlice(ctx, lineTable, lineColumns, rows)
	if err != nil {
		return fmt.Errorf("copy lines: %w", err)
	}
	if copied != int64(len(rows)) {
		return fmt.Errorf("copy lines: expected %d rows, copied %d", len(rows), copied)
	}

	if r.audit != nil {
		action := postgres.AuditActionStockIn
		if t.Direction == ledger.DirectionOut {
			action = postgres.AuditActionStockOut
		}
		if err := r.audit.LogChange(ctx, "stock_transaction", t.ID, action, map[string]any{
			"number":      t.Number,
			"direction":   t.Direction,
			"lines":       len(t.Lines),
			"total_value": t.TotalValue,
		}); err != nil {
			return fmt.Errorf("audit stock transaction: %w", err)
		}
	}

	return nil
}

// GetByID returns the header with lines populated.
func (r *StockTransactionRepo) GetByID(ctx context.Context, txID id.ID) (*ledger.StockTransaction, error) {
	sql, args, err := psql.Select(headerColumns...).
		From(headerTable).
		Where(squirrel.Eq{"id": txID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var t ledger.StockTransaction
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("stock transaction", txID)
		}
		return nil, fmt.Errorf("get header: %w", err)
	}

	sql, args, err = psql.Select(lineColumns...).
		From(lineTable).
		Where(squirrel.Eq{"transaction_id": txID}).
		OrderBy("line_no ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &t.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return &t, nil
}

// buildListQuery translates the filter into the header select.
// Ordering and pagination are applied by the caller after counting.
func buildListQuery(filter ledger.ListFilter) squirrel.SelectBuilder {
	q := psql.Select(headerColumns...).From(headerTable)

	if filter.Direction != "" {
		q = q.Where(squirrel.Eq{"direction": filter.Direction})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
	}
	if !id.IsNil(filter.ProductID) {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT transaction_id FROM "+lineTable+" WHERE product_id = ?)",
			filter.ProductID,
		))
	}

	return q
}

// List returns headers matching the filter, newest first.
func (r *StockTransactionRepo) List(ctx context.Context, filter ledger.ListFilter) (*domain.ListResult[*ledger.StockTransaction], error) {
	q := buildListQuery(filter)

	total, err := r.count(ctx, q)
	if err != nil {
		return nil, err
	}

	q = q.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*ledger.StockTransaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &domain.ListResult[*ledger.StockTransaction]{
		Items:      items,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (r *StockTransactionRepo) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	countQ := psql.Select("COUNT(*)").FromSelect(q, "sub")
	sql, args, err := countQ.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return total, nil
}

// GetTurnover aggregates ledger movements per product for a period.
func (r *StockTransactionRepo) GetTurnover(ctx context.Context, productID id.ID, from, to time.Time) (*ledger.Turnover, error) {
	sql := `
		SELECT
			l.product_id,
			COALESCE(SUM(l.quantity)   FILTER (WHERE t.direction = 'in'), 0)  AS incoming_qty,
			COALESCE(SUM(l.quantity)   FILTER (WHERE t.direction = 'out'), 0) AS outgoing_qty,
			COALESCE(SUM(l.line_total) FILTER (WHERE t.direction = 'in'), 0)  AS incoming_val,
			COALESCE(SUM(l.line_total) FILTER (WHERE t.direction = 'out'), 0) AS outgoing_val
		FROM ` + lineTable + ` l
		JOIN ` + headerTable + ` t ON t.id = l.transaction_id
		WHERE l.product_id = $1
		  AND t.created_at >= $2
		  AND t.created_at <= $3
		GROUP BY l.product_id
	`

	var tv ledger.Turnover
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &tv, sql, productID, from, to); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No movements in the period is a valid, empty turnover.
			return &ledger.Turnover{ProductID: productID}, nil
		}
		return nil, fmt.Errorf("get turnover: %w", err)
	}

	return &tv, nil
}
