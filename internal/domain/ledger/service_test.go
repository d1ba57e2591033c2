package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"freshmart/internal/core/apperror"
	appctx "freshmart/internal/core/context"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
	"freshmart/internal/domain"
	"freshmart/internal/domain/catalog/product"
	"freshmart/pkg/numerator"
)

// --- fakes ---

type seqRow struct{ val int64 }

func (r *seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct {
	mu  sync.Mutex
	val int64
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.val++
	return &seqRow{val: q.val}
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[id.ID]*product.Product
}

func newMemProductRepo(products ...*product.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *memProductRepo) snapshot() map[id.ID]product.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := make(map[id.ID]product.Product, len(r.products))
	for k, v := range r.products {
		s[k] = *v
	}
	return s
}

func (r *memProductRepo) restore(s map[id.ID]product.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[id.ID]*product.Product, len(s))
	for k, v := range s {
		cp := v
		r.products[k] = &cp
	}
}

func (r *memProductRepo) stock(productID id.ID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[productID].StockQuantity
}

func (r *memProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (r *memProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) ([]*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*product.Product, 0, len(productIDs))
	for _, pid := range productIDs {
		if p, ok := r.products[pid]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) Update(ctx context.Context, p *product.Product) error {
	return r.Create(ctx, p)
}

func (r *memProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, mark bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.DeletionMark = mark
	return nil
}

func (r *memProductRepo) List(ctx context.Context, filter product.ListFilter) (*domain.ListResult[*product.Product], error) {
	return &domain.ListResult[*product.Product]{}, nil
}

func (r *memProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	next := p.StockQuantity + delta
	if next < 0 {
		return apperror.NewInsufficientStock(productID.String(), -delta, p.StockQuantity)
	}
	p.StockQuantity = next
	return nil
}

func (r *memProductRepo) FindLowStock(ctx context.Context, limit int) ([]*product.Product, error) {
	return nil, nil
}

type memLedgerRepo struct {
	mu           sync.Mutex
	transactions map[id.ID]*StockTransaction
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{transactions: make(map[id.ID]*StockTransaction)}
}

func (r *memLedgerRepo) snapshot() map[id.ID]*StockTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := make(map[id.ID]*StockTransaction, len(r.transactions))
	for k, v := range r.transactions {
		s[k] = v
	}
	return s
}

func (r *memLedgerRepo) restore(s map[id.ID]*StockTransaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = make(map[id.ID]*StockTransaction, len(s))
	for k, v := range s {
		r.transactions[k] = v
	}
}

func (r *memLedgerRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transactions)
}

func (r *memLedgerRepo) Create(ctx context.Context, t *StockTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[t.ID] = t
	return nil
}

func (r *memLedgerRepo) GetByID(ctx context.Context, txID id.ID) (*StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[txID]
	if !ok {
		return nil, apperror.NewNotFound("stock transaction", txID)
	}
	return t, nil
}

func (r *memLedgerRepo) List(ctx context.Context, filter ListFilter) (*domain.ListResult[*StockTransaction], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*StockTransaction, 0, len(r.transactions))
	for _, t := range r.transactions {
		if filter.Direction != "" && t.Direction != filter.Direction {
			continue
		}
		if filter.DateFrom != nil && t.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && t.CreatedAt.After(*filter.DateTo) {
			continue
		}
		if !id.IsNil(filter.ProductID) && !touchesProduct(t, filter.ProductID) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if filter.Limit < 1 || end > len(matched) {
		end = len(matched)
	}

	return &domain.ListResult[*StockTransaction]{
		Items:      matched[start:end],
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func touchesProduct(t *StockTransaction, productID id.ID) bool {
	for _, line := range t.Lines {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

func (r *memLedgerRepo) GetTurnover(ctx context.Context, productID id.ID, from, to time.Time) (*Turnover, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tv := &Turnover{ProductID: productID, IncomingVal: types.Zero(), OutgoingVal: types.Zero()}
	for _, t := range r.transactions {
		for _, line := range t.Lines {
			if line.ProductID != productID {
				continue
			}
			if t.Direction == DirectionIn {
				tv.IncomingQty += line.Quantity
				tv.IncomingVal = tv.IncomingVal.Add(line.LineTotal)
			} else {
				tv.OutgoingQty += line.Quantity
				tv.OutgoingVal = tv.OutgoingVal.Add(line.LineTotal)
			}
		}
	}
	return tv, nil
}

// fakeTxManager simulates rollback by restoring fake repo snapshots
// when the transactional function fails. Transactions are serialized
// so snapshot and restore stay consistent under concurrent callers.
type fakeTxManager struct {
	mu       sync.Mutex
	products *memProductRepo
	ledger   *memLedgerRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	productSnap := m.products.snapshot()
	ledgerSnap := m.ledger.snapshot()
	if err := fn(ctx); err != nil {
		m.products.restore(productSnap)
		m.ledger.restore(ledgerSnap)
		return err
	}
	return nil
}

type fakeActors struct {
	actors map[id.ID]*Actor
}

func (f *fakeActors) GetActor(ctx context.Context, userID id.ID) (*Actor, error) {
	if a, ok := f.actors[userID]; ok {
		return a, nil
	}
	return nil, apperror.NewNotFound("user", userID)
}

// --- test harness ---

type fixture struct {
	svc      *Service
	products *memProductRepo
	ledger   *memLedgerRepo
	userID   id.ID
}

func newFixture(t *testing.T, products ...*product.Product) *fixture {
	t.Helper()

	productRepo := newMemProductRepo(products...)
	ledgerRepo := newMemLedgerRepo()
	userID := id.New()

	svc := NewService(
		ledgerRepo,
		productRepo,
		&fakeActors{actors: map[id.ID]*Actor{
			userID: {ID: userID, Name: "Test Manager", Email: "manager@freshmart.test"},
		}},
		numerator.New(&seqQuerier{}),
		&fakeTxManager{products: productRepo, ledger: ledgerRepo},
	)

	return &fixture{svc: svc, products: productRepo, ledger: ledgerRepo, userID: userID}
}

func (f *fixture) ctx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: f.userID.String(),
		Email:  "manager@freshmart.test",
		Name:   "Test Manager",
		Roles:  []string{"manager"},
	})
}

func testProduct(code, name, price string, stock int64) *product.Product {
	p := product.New(code, name, types.MustMoney(price))
	p.StockQuantity = stock
	return p
}

// --- tests ---

func TestCreate_Incoming(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 0)
	f := newFixture(t, apples)

	tx, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionIn,
		Note:      "morning delivery",
		Lines: []LineInput{
			{ProductID: apples.ID, Quantity: 10},
		},
	})
	require.NoError(t, err)

	require.Equal(t, fmt.Sprintf("ST-%d-00001", time.Now().Year()), tx.Number)
	require.Equal(t, DirectionIn, tx.Direction)
	require.Equal(t, f.userID, tx.UserID)
	require.Len(t, tx.Lines, 1)

	// Unit price defaults to the product's current price.
	require.True(t, tx.Lines[0].UnitPrice.Equal(types.MustMoney("1.50")))
	require.True(t, tx.Lines[0].LineTotal.Equal(types.MustMoney("15.00")))
	require.True(t, tx.TotalValue.Equal(types.MustMoney("15.00")))

	require.EqualValues(t, 10, f.products.stock(apples.ID))
	require.Equal(t, 1, f.ledger.count())
}

func TestCreate_Outgoing(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 10)
	bananas := testProduct("PRD-00002", "Bananas", "0.80", 20)
	f := newFixture(t, apples, bananas)

	tx, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionOut,
		Lines: []LineInput{
			{ProductID: apples.ID, Quantity: 4},
			{ProductID: bananas.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	require.EqualValues(t, 6, f.products.stock(apples.ID))
	require.EqualValues(t, 15, f.products.stock(bananas.ID))

	// 4*1.50 + 5*0.80 = 10.00
	require.True(t, tx.TotalValue.Equal(types.MustMoney("10.00")))
}

func TestCreate_MergesDuplicateLines(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 0)
	f := newFixture(t, apples)

	override := types.MustMoney("1.20")
	tx, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionIn,
		Lines: []LineInput{
			{ProductID: apples.ID, Quantity: 3, UnitPrice: &override},
			{ProductID: apples.ID, Quantity: 7},
		},
	})
	require.NoError(t, err)

	require.Len(t, tx.Lines, 1)
	require.EqualValues(t, 10, tx.Lines[0].Quantity)

	// First occurrence price wins over the product default.
	require.True(t, tx.Lines[0].UnitPrice.Equal(override))
	require.True(t, tx.TotalValue.Equal(types.MustMoney("12.00")))
	require.EqualValues(t, 10, f.products.stock(apples.ID))
}

func TestCreate_InsufficientStock_RollsBackEverything(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 10)
	bananas := testProduct("PRD-00002", "Bananas", "0.80", 2)
	f := newFixture(t, apples, bananas)

	// Apples line would succeed, bananas line fails. Nothing must persist.
	_, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionOut,
		Lines: []LineInput{
			{ProductID: apples.ID, Quantity: 5},
			{ProductID: bananas.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	require.True(t, apperror.IsInsufficientStock(err), "got %v", err)

	appErr, _ := apperror.AsAppError(err)
	require.EqualValues(t, 3, appErr.Details["requested"])
	require.EqualValues(t, 2, appErr.Details["available"])

	require.EqualValues(t, 10, f.products.stock(apples.ID))
	require.EqualValues(t, 2, f.products.stock(bananas.ID))
	require.Equal(t, 0, f.ledger.count())
}

func TestCreate_UnknownProduct(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 10)
	f := newFixture(t, apples)

	_, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionOut,
		Lines: []LineInput{
			{ProductID: apples.ID, Quantity: 1},
			{ProductID: id.New(), Quantity: 1},
		},
	})
	require.Error(t, err)
	require.True(t, apperror.IsNotFound(err), "got %v", err)

	require.EqualValues(t, 10, f.products.stock(apples.ID))
	require.Equal(t, 0, f.ledger.count())
}

func TestCreate_DeletedProduct(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 10)
	apples.DeletionMark = true
	f := newFixture(t, apples)

	_, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionIn,
		Lines:     []LineInput{{ProductID: apples.ID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestCreate_InvalidInput(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 10)
	f := newFixture(t, apples)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{
			name: "bad direction",
			input: CreateInput{
				Direction: Direction("sideways"),
				Lines:     []LineInput{{ProductID: apples.ID, Quantity: 1}},
			},
		},
		{
			name:  "no lines",
			input: CreateInput{Direction: DirectionIn},
		},
		{
			name: "zero quantity",
			input: CreateInput{
				Direction: DirectionIn,
				Lines:     []LineInput{{ProductID: apples.ID, Quantity: 0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx(), tt.input)
			require.Error(t, err)
			require.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestCreate_RequiresAuthenticatedUser(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 10)
	f := newFixture(t, apples)

	_, err := f.svc.Create(context.Background(), CreateInput{
		Direction: DirectionIn,
		Lines:     []LineInput{{ProductID: apples.ID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestCreate_ConcurrentOversellPrevented(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 10)
	f := newFixture(t, apples)

	const workers = 4

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(f.ctx(), CreateInput{
				Direction: DirectionOut,
				Lines:     []LineInput{{ProductID: apples.ID, Quantity: 7}},
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.IsInsufficientStock(err):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Stock of 10 allows exactly one withdrawal of 7.
	require.Equal(t, 1, ok)
	require.Equal(t, workers-1, insufficient)
	require.EqualValues(t, 3, f.products.stock(apples.ID))
	require.Equal(t, 1, f.ledger.count())
}

func TestGetByID_View(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 0)
	f := newFixture(t, apples)

	created, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionIn,
		Lines:     []LineInput{{ProductID: apples.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	view, err := f.svc.GetByID(f.ctx(), created.ID)
	require.NoError(t, err)

	require.Equal(t, created.Number, view.Number)
	require.Len(t, view.Lines, 1)
	require.Equal(t, "Apples", view.Lines[0].Product.Name)
	require.Equal(t, "PRD-00001", view.Lines[0].Product.Code)

	// Snapshot carries the product's price and post-movement stock level.
	require.True(t, view.Lines[0].Product.Price.Equal(types.MustMoney("1.50")))
	require.EqualValues(t, 10, view.Lines[0].Product.StockQuantity)

	require.NotNil(t, view.Actor)
	require.Equal(t, "Test Manager", view.Actor.Name)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(f.ctx(), id.New())
	require.Error(t, err)
	require.True(t, apperror.IsNotFound(err))
}

func TestList_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(f.ctx(), ListFilter{Direction: Direction("upwards")})
	require.Error(t, err)
	require.True(t, apperror.IsValidation(err))

	from := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -5)
	_, err = f.svc.List(f.ctx(), ListFilter{DateFrom: &from, DateTo: &to})
	require.Error(t, err)
	require.True(t, apperror.IsValidation(err))
}

func TestList_FiltersByDirectionAndDateRange(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 100)
	f := newFixture(t, apples)

	day := func(n int) time.Time {
		return time.Date(2026, 8, n, 12, 0, 0, 0, time.UTC)
	}

	// One transaction per day, alternating direction: in@1, out@2, in@3, out@4, in@5.
	directions := []Direction{DirectionIn, DirectionOut, DirectionIn, DirectionOut, DirectionIn}
	created := make([]*StockTransaction, 0, len(directions))
	for i, dir := range directions {
		tx, err := f.svc.Create(f.ctx(), CreateInput{
			Direction: dir,
			Lines:     []LineInput{{ProductID: apples.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		tx.CreatedAt = day(i + 1)
		created = append(created, tx)
	}

	from := day(2)
	to := day(5)

	// Incoming transactions within [day 2, day 5]: day 3 and day 5.
	result, err := f.svc.List(f.ctx(), ListFilter{
		ListFilter: domain.ListFilter{Page: 1, Limit: 1},
		Direction:  DirectionIn,
		DateFrom:   &from,
		DateTo:     &to,
	})
	require.NoError(t, err)

	require.EqualValues(t, 2, result.TotalCount)
	require.Equal(t, 2, result.TotalPages())
	require.Len(t, result.Items, 1)

	// Newest first: page 1 holds day 5, page 2 holds day 3.
	require.Equal(t, created[4].ID, result.Items[0].ID)

	result, err = f.svc.List(f.ctx(), ListFilter{
		ListFilter: domain.ListFilter{Page: 2, Limit: 1},
		Direction:  DirectionIn,
		DateFrom:   &from,
		DateTo:     &to,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, created[2].ID, result.Items[0].ID)

	// Date bounds are inclusive: narrowing to [day 5, day 5] still matches.
	result, err = f.svc.List(f.ctx(), ListFilter{
		ListFilter: domain.ListFilter{Page: 1, Limit: 10},
		DateFrom:   &to,
		DateTo:     &to,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.TotalCount)
	require.Equal(t, created[4].ID, result.Items[0].ID)
}

func TestGetTurnover(t *testing.T) {
	apples := testProduct("PRD-00001", "Apples", "1.50", 0)
	f := newFixture(t, apples)

	_, err := f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionIn,
		Lines:     []LineInput{{ProductID: apples.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx(), CreateInput{
		Direction: DirectionOut,
		Lines:     []LineInput{{ProductID: apples.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	tv, err := f.svc.GetTurnover(f.ctx(), apples.ID, from, to)
	require.NoError(t, err)
	require.EqualValues(t, 10, tv.IncomingQty)
	require.EqualValues(t, 4, tv.OutgoingQty)

	// Balance equals incoming minus outgoing.
	require.EqualValues(t, tv.IncomingQty-tv.OutgoingQty, f.products.stock(apples.ID))
}
