package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"freshmart/internal/core/apperror"
	"freshmart/internal/domain/ledger"
	"freshmart/internal/infrastructure/http/v1/dto"
	"freshmart/internal/infrastructure/storage/postgres"
)

// StockTransactionHandler handles stock ledger endpoints.
type StockTransactionHandler struct {
	BaseHandler
	service *ledger.Service
	audit   *postgres.AuditService
}

// NewStockTransactionHandler creates a new stock transaction handler.
func NewStockTransactionHandler(service *ledger.Service, audit *postgres.AuditService) *StockTransactionHandler {
	return &StockTransactionHandler{service: service, audit: audit}
}

// Create handles POST /stock-transactions.
// Records a movement and updates product balances atomically.
func (h *StockTransactionHandler) Create(c *gin.Context) {
	var req dto.CreateStockTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromStockTransactionCreated(t))
}

// Get handles GET /stock-transactions/:id.
// Returns the transaction with lines, product snapshots and actor.
func (h *StockTransactionHandler) Get(c *gin.Context) {
	txID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), txID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransactionView(view))
}

// List handles GET /stock-transactions.
// Supports direction, product and date range filters, newest first.
func (h *StockTransactionHandler) List(c *gin.Context) {
	var req dto.StockTransactionListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromStockTransaction))
}

// Movements handles GET /products/:id/movements.
// Ledger history narrowed to one product, newest first.
func (h *StockTransactionHandler) Movements(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.StockTransactionListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	filter.ProductID = productID

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromStockTransaction))
}

// AuditTrail handles GET /stock-transactions/:id/audit.
// Returns the audit records for one transaction, newest first.
func (h *StockTransactionHandler) AuditTrail(c *gin.Context) {
	txID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	// Verify the transaction exists so unknown IDs return 404 instead of
	// an empty trail.
	if _, err := h.service.GetByID(c.Request.Context(), txID); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), "stock_transaction", txID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAuditEntries(entries))
}

// Turnover handles GET /stock-transactions/turnover/:productId.
// Aggregates movements for one product over a period.
func (h *StockTransactionHandler) Turnover(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	from, err := parseTimeQuery(c.Query("from"), time.Time{})
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid from date").WithDetail("value", c.Query("from")))
		return
	}
	to, err := parseTimeQuery(c.Query("to"), time.Now().UTC())
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid to date").WithDetail("value", c.Query("to")))
		return
	}

	tv, err := h.service.GetTurnover(c.Request.Context(), productID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTurnover(tv))
}

func parseTimeQuery(raw string, defaultVal time.Time) (time.Time, error) {
	if raw == "" {
		return defaultVal, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
