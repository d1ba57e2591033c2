// Package catalog_repo implements catalog repositories over PostgreSQL.
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
	"freshmart/internal/domain/catalog/category"
	"freshmart/internal/infrastructure/storage/postgres"
)

// psql builds queries with PostgreSQL-style placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const categoryTable = "categories"

var categoryColumns = []string{
	"id", "code", "name", "description",
	"deletion_mark", "version", "created_at", "updated_at",
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	txManager *postgres.TxManager
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{txManager: txManager}
}

var _ category.Repository = (*CategoryRepo)(nil)

func (r *CategoryRepo) baseSelect() squirrel.SelectBuilder {
	return psql.Select(categoryColumns...).From(categoryTable)
}

// Create inserts a new category.
func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	sql, args, err := psql.Insert(categoryTable).
		Columns(categoryColumns...).
		Values(c.ID, c.Code, c.Name, c.Description,
			c.DeletionMark, c.Version, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("category", "code", c.Code)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID returns a category by ID.
func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": categoryID}).Limit(1)
	return r.findOne(ctx, q, categoryID)
}

// GetByCode returns a category by code.
func (r *CategoryRepo) GetByCode(ctx context.Context, code string) (*category.Category, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)
	return r.findOne(ctx, q, code)
}

func (r *CategoryRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*category.Category, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c category.Category
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("category", key)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// Update persists category changes with optimistic locking.
func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	sql, args, err := psql.Update(categoryTable).
		Set("code", c.Code).
		Set("name", c.Name).
		Set("description", c.Description).
		Set("version", c.Version).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID}).
		Where(squirrel.Eq{"version": c.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("category", c.ID)
	}
	return nil
}

// SetDeletionMark toggles the soft-delete flag.
func (r *CategoryRepo) SetDeletionMark(ctx context.Context, categoryID id.ID, mark bool) error {
	sql, args, err := psql.Update(categoryTable).
		Set("deletion_mark", mark).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": categoryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", categoryID)
	}
	return nil
}

// List returns categories matching the filter.
func (r *CategoryRepo) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[*category.Category], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
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

	var items []*category.Category
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return &domain.ListResult[*category.Category]{
		Items:      items,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// countRows wraps a select query in a COUNT(*) over its conditions.
func countRows(ctx context.Context, txm *postgres.TxManager, q squirrel.SelectBuilder) (int64, error) {
	countQ := psql.Select("COUNT(*)").FromSelect(q, "sub")
	sql, args, err := countQ.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return total, nil
}
