package dto

import (
	"time"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/core/types"
	"freshmart/internal/domain/ledger"
)

// CreateStockTransactionRequest for POST /stock-transactions.
type CreateStockTransactionRequest struct {
	Direction string                        `json:"direction" binding:"required"`
	Note      string                        `json:"note"`
	Lines     []StockTransactionLineRequest `json:"lines" binding:"required"`
}

// StockTransactionLineRequest is one requested movement line.
type StockTransactionLineRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int64   `json:"quantity" binding:"required"`
	UnitPrice *string `json:"unitPrice"`
}

// ToInput converts the request to a ledger create input.
// Quantity and price value checks are left to the domain layer.
func (r CreateStockTransactionRequest) ToInput() (ledger.CreateInput, error) {
	input := ledger.CreateInput{
		Direction: ledger.Direction(r.Direction),
		Note:      r.Note,
		Lines:     make([]ledger.LineInput, 0, len(r.Lines)),
	}

	for i, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return ledger.CreateInput{}, apperror.NewValidation("invalid product id").
				WithDetail("lineIndex", i).
				WithDetail("value", line.ProductID)
		}

		var unitPrice *types.Money
		if line.UnitPrice != nil {
			price, err := types.NewMoneyFromString(*line.UnitPrice)
			if err != nil {
				return ledger.CreateInput{}, apperror.NewValidation("invalid unit price").
					WithDetail("lineIndex", i).
					WithDetail("value", *line.UnitPrice)
			}
			unitPrice = &price
		}

		input.Lines = append(input.Lines, ledger.LineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		})
	}

	return input, nil
}

// StockTransactionLineResponse is one line of a recorded transaction.
type StockTransactionLineResponse struct {
	ID        string `json:"id"`
	LineNo    int    `json:"lineNo"`
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`

	// Product snapshot, present on history views
	ProductCode  string `json:"productCode,omitempty"`
	ProductName  string `json:"productName,omitempty"`
	ProductUnit  string `json:"productUnit,omitempty"`
	ProductPrice string `json:"productPrice,omitempty"`
	ProductStock *int64 `json:"productStock,omitempty"`
}

// StockTransactionResponse is the public transaction representation.
type StockTransactionResponse struct {
	ID         string                         `json:"id"`
	Number     string                         `json:"number"`
	Direction  string                         `json:"direction"`
	UserID     string                         `json:"userId"`
	TotalValue string                         `json:"totalValue"`
	Note       string                         `json:"note,omitempty"`
	CreatedAt  time.Time                      `json:"createdAt"`
	Actor      *ActorResponse                 `json:"actor,omitempty"`
	Lines      []StockTransactionLineResponse `json:"lines,omitempty"`
}

// ActorResponse identifies who recorded a transaction.
type ActorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FromStockTransaction maps a ledger header to its response.
func FromStockTransaction(t *ledger.StockTransaction) StockTransactionResponse {
	return StockTransactionResponse{
		ID:         t.ID.String(),
		Number:     t.Number,
		Direction:  string(t.Direction),
		UserID:     t.UserID.String(),
		TotalValue: t.TotalValue.String(),
		Note:       t.Note,
		CreatedAt:  t.CreatedAt,
	}
}

// FromStockTransactionCreated maps a freshly recorded transaction
// including its lines.
func FromStockTransactionCreated(t *ledger.StockTransaction) StockTransactionResponse {
	resp := FromStockTransaction(t)
	resp.Lines = make([]StockTransactionLineResponse, 0, len(t.Lines))
	for _, line := range t.Lines {
		resp.Lines = append(resp.Lines, StockTransactionLineResponse{
			ID:        line.ID.String(),
			LineNo:    line.LineNo,
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.String(),
			LineTotal: line.LineTotal.String(),
		})
	}
	return resp
}

// FromTransactionView maps a full history view.
func FromTransactionView(v *ledger.TransactionView) StockTransactionResponse {
	resp := FromStockTransaction(&v.StockTransaction)

	if v.Actor != nil {
		resp.Actor = &ActorResponse{
			ID:    v.Actor.ID.String(),
			Name:  v.Actor.Name,
			Email: v.Actor.Email,
		}
	}

	resp.Lines = make([]StockTransactionLineResponse, 0, len(v.Lines))
	for _, line := range v.Lines {
		stock := line.Product.StockQuantity
		resp.Lines = append(resp.Lines, StockTransactionLineResponse{
			ID:           line.ID.String(),
			LineNo:       line.LineNo,
			ProductID:    line.ProductID.String(),
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice.String(),
			LineTotal:    line.LineTotal.String(),
			ProductCode:  line.Product.Code,
			ProductName:  line.Product.Name,
			ProductUnit:  line.Product.Unit,
			ProductPrice: line.Product.Price.String(),
			ProductStock: &stock,
		})
	}

	return resp
}

// StockTransactionListRequest contains history query parameters.
type StockTransactionListRequest struct {
	PaginationRequest
	Direction string     `form:"direction"`
	ProductID string     `form:"productId"`
	DateFrom  *time.Time `form:"dateFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo    *time.Time `form:"dateTo" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ToFilter converts query parameters to a ledger filter.
func (r StockTransactionListRequest) ToFilter() (ledger.ListFilter, error) {
	filter := ledger.ListFilter{
		ListFilter: r.PaginationRequest.ToFilter(),
		Direction:  ledger.Direction(r.Direction),
		DateFrom:   r.DateFrom,
		DateTo:     r.DateTo,
	}

	if r.ProductID != "" {
		productID, err := id.Parse(r.ProductID)
		if err != nil {
			return ledger.ListFilter{}, apperror.NewValidation("invalid product id").
				WithDetail("field", "productId").
				WithDetail("value", r.ProductID)
		}
		filter.ProductID = productID
	}

	return filter, nil
}

// TurnoverResponse aggregates movements for a product over a period.
type TurnoverResponse struct {
	ProductID   string `json:"productId"`
	IncomingQty int64  `json:"incomingQty"`
	OutgoingQty int64  `json:"outgoingQty"`
	IncomingVal string `json:"incomingVal"`
	OutgoingVal string `json:"outgoingVal"`
}

// FromTurnover maps a ledger turnover to its response.
func FromTurnover(t *ledger.Turnover) TurnoverResponse {
	return TurnoverResponse{
		ProductID:   t.ProductID.String(),
		IncomingQty: t.IncomingQty,
		OutgoingQty: t.OutgoingQty,
		IncomingVal: t.IncomingVal.String(),
		OutgoingVal: t.OutgoingVal.String(),
	}
}
