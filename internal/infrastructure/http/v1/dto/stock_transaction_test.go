package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
	"freshmart/internal/domain/ledger"
)

func TestCreateStockTransactionRequestToInput(t *testing.T) {
	productID := id.New()
	price := "2.50"

	req := CreateStockTransactionRequest{
		Direction: "in",
		Note:      "delivery",
		Lines: []StockTransactionLineRequest{
			{ProductID: productID.String(), Quantity: 10, UnitPrice: &price},
			{ProductID: productID.String(), Quantity: 5},
		},
	}

	input, err := req.ToInput()
	require.NoError(t, err)

	assert.Equal(t, ledger.DirectionIn, input.Direction)
	assert.Equal(t, "delivery", input.Note)
	require.Len(t, input.Lines, 2)

	assert.Equal(t, productID, input.Lines[0].ProductID)
	assert.Equal(t, int64(10), input.Lines[0].Quantity)
	require.NotNil(t, input.Lines[0].UnitPrice)
	assert.Equal(t, "2.5", input.Lines[0].UnitPrice.String())

	// Second line has no price; the domain defaults it to the product price.
	assert.Nil(t, input.Lines[1].UnitPrice)
}

func TestCreateStockTransactionRequestToInput_BadProductID(t *testing.T) {
	req := CreateStockTransactionRequest{
		Direction: "out",
		Lines: []StockTransactionLineRequest{
			{ProductID: "not-a-uuid", Quantity: 1},
		},
	}

	_, err := req.ToInput()
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 0, appErr.Details["lineIndex"])
}

func TestCreateStockTransactionRequestToInput_BadPrice(t *testing.T) {
	bad := "abc"
	req := CreateStockTransactionRequest{
		Direction: "in",
		Lines: []StockTransactionLineRequest{
			{ProductID: id.New().String(), Quantity: 1, UnitPrice: &bad},
		},
	}

	_, err := req.ToInput()
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestFromTransactionView_ProductSnapshot(t *testing.T) {
	productID := id.New()

	view := &ledger.TransactionView{
		StockTransaction: ledger.StockTransaction{
			ID:         id.New(),
			Number:     "ST-2026-00001",
			Direction:  ledger.DirectionIn,
			TotalValue: types.MustMoney("15.00"),
		},
		Lines: []ledger.LineView{
			{
				StockTransactionLine: ledger.StockTransactionLine{
					ID:        id.New(),
					LineNo:    1,
					ProductID: productID,
					Quantity:  10,
					UnitPrice: types.MustMoney("1.50"),
					LineTotal: types.MustMoney("15.00"),
				},
				Product: ledger.ProductSnapshot{
					ID:            productID,
					Code:          "PRD-00001",
					Name:          "Apples",
					Unit:          "kg",
					Price:         types.MustMoney("1.50"),
					StockQuantity: 42,
				},
			},
		},
	}

	resp := FromTransactionView(view)
	require.Len(t, resp.Lines, 1)

	line := resp.Lines[0]
	assert.Equal(t, "PRD-00001", line.ProductCode)
	assert.Equal(t, "Apples", line.ProductName)
	assert.Equal(t, "kg", line.ProductUnit)
	assert.Equal(t, "1.5", line.ProductPrice)
	require.NotNil(t, line.ProductStock)
	assert.EqualValues(t, 42, *line.ProductStock)
}

func TestStockTransactionListRequestToFilter(t *testing.T) {
	productID := id.New()

	req := StockTransactionListRequest{
		Direction: "out",
		ProductID: productID.String(),
	}
	req.Page = 2
	req.Limit = 50

	filter, err := req.ToFilter()
	require.NoError(t, err)

	assert.Equal(t, ledger.DirectionOut, filter.Direction)
	assert.Equal(t, productID, filter.ProductID)
	assert.Equal(t, 2, filter.Page)
	assert.Equal(t, 50, filter.Limit)
}
