package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/domain"
	"freshmart/internal/domain/catalog/product"
	"freshmart/internal/infrastructure/storage/postgres"
)

const productTable = "products"

var productColumns = []string{
	"id", "code", "name", "category_id", "description", "unit",
	"price", "stock_quantity", "min_stock_level",
	"deletion_mark", "version", "created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{txManager: txManager}
}

var _ product.Repository = (*ProductRepo)(nil)

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return psql.Select(productColumns...).From(productTable)
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	sql, args, err := psql.Insert(productTable).
		Columns(productColumns...).
		Values(p.ID, p.Code, p.Name, p.CategoryID, p.Description, p.Unit,
			p.Price, p.StockQuantity, p.MinStockLevel,
			p.DeletionMark, p.Version, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("product", "code", p.Code)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("category", p.CategoryID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID returns a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": productID}).Limit(1)
	return r.findOne(ctx, q, productID)
}

// GetByCode returns a non-deleted product by code.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)
	return r.findOne(ctx, q, code)
}

func (r *ProductRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*product.Product, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetByIDs returns products for the given IDs in one query.
// Missing IDs are simply absent from the result.
func (r *ProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) ([]*product.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": productIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	return items, nil
}

// Update persists product changes with optimistic locking.
// StockQuantity is deliberately excluded; AdjustStock owns it.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	sql, args, err := psql.Update(productTable).
		Set("code", p.Code).
		Set("name", p.Name).
		Set("category_id", p.CategoryID).
		Set("description", p.Description).
		Set("unit", p.Unit).
		Set("price", p.Price).
		Set("min_stock_level", p.MinStockLevel).
		Set("version", p.Version).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("product", p.ID)
	}
	return nil
}

// SetDeletionMark toggles the soft-delete flag.
func (r *ProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, mark bool) error {
	sql, args, err := psql.Update(productTable).
		Set("deletion_mark", mark).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// List returns products matching the filter.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (*domain.ListResult[*product.Product], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": "%" + filter.Search + "%"},
			squirrel.ILike{"code": "%" + filter.Search + "%"},
		})
	}
	if !id.IsNil(filter.CategoryID) {
		q = q.Where(squirrel.Eq{"category_id": filter.CategoryID})
	}
	if filter.LowStockOnly {
		q = q.Where("min_stock_level > 0 AND stock_quantity < min_stock_level")
	}

	total, err := countRows(ctx, r.txManager, q)
	if err != nil {
		return nil, err
	}

	orderBy := "name ASC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &domain.ListResult[*product.Product]{
		Items:      items,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// AdjustStock changes the denormalized balance by delta.
//
// Negative deltas apply only when enough stock remains; the WHERE clause
// makes the check and the update one atomic statement, so concurrent
// withdrawals cannot oversell.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int64) error {
	builder := psql.Update(productTable).
		Set("stock_quantity", squirrel.Expr("stock_quantity + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID})

	if delta < 0 {
		builder = builder.Where(squirrel.Expr("stock_quantity >= ?", -delta))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if delta >= 0 {
			return apperror.NewNotFound("product", productID)
		}
		// Distinguish missing product from insufficient stock.
		current, err := r.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		return apperror.NewInsufficientStock(productID.String(), -delta, current.StockQuantity)
	}

	return nil
}

// FindLowStock returns products whose balance dropped below the minimum.
func (r *ProductRepo) FindLowStock(ctx context.Context, limit int) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where("min_stock_level > 0 AND stock_quantity < min_stock_level").
		OrderBy("stock_quantity ASC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}
	return items, nil
}
