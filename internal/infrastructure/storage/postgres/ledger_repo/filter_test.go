package ledger_repo

import (
	"testing"
	"time"

	"freshmart/internal/core/id"
	"freshmart/internal/domain/ledger"
)

func TestBuildListQuery(t *testing.T) {
	productID := id.New()
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	const baseSQL = "SELECT id, number, direction, user_id, total_value, note, created_at FROM stock_transactions"

	tests := []struct {
		name     string
		filter   ledger.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "no filters",
			filter:   ledger.ListFilter{},
			wantSQL:  baseSQL,
			wantArgs: nil,
		},
		{
			name:     "direction",
			filter:   ledger.ListFilter{Direction: ledger.DirectionIn},
			wantSQL:  baseSQL + " WHERE direction = $1",
			wantArgs: []any{ledger.DirectionIn},
		},
		{
			name:     "date range",
			filter:   ledger.ListFilter{DateFrom: &from, DateTo: &to},
			wantSQL:  baseSQL + " WHERE created_at >= $1 AND created_at <= $2",
			wantArgs: []any{from, to},
		},
		{
			name:   "direction with product",
			filter: ledger.ListFilter{Direction: ledger.DirectionOut, ProductID: productID},
			wantSQL: baseSQL + " WHERE direction = $1" +
				" AND id IN (SELECT transaction_id FROM stock_transaction_lines WHERE product_id = $2)",
			wantArgs: []any{ledger.DirectionOut, productID},
		},
		{
			name: "all filters",
			filter: ledger.ListFilter{
				Direction: ledger.DirectionIn,
				ProductID: productID,
				DateFrom:  &from,
				DateTo:    &to,
			},
			wantSQL: baseSQL + " WHERE direction = $1 AND created_at >= $2 AND created_at <= $3" +
				" AND id IN (SELECT transaction_id FROM stock_transaction_lines WHERE product_id = $4)",
			wantArgs: []any{ledger.DirectionIn, from, to, productID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildListQuery(tt.filter).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("Arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestBuildListQuery_Pagination(t *testing.T) {
	filter := ledger.ListFilter{Direction: ledger.DirectionIn}
	filter.Page = 3
	filter.Limit = 20

	sql, _, err := buildListQuery(filter).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	want := "SELECT id, number, direction, user_id, total_value, note, created_at" +
		" FROM stock_transactions WHERE direction = $1" +
		" ORDER BY created_at DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, sql)
	}
}
