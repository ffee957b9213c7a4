package handler

import (
	inventoryapp "github.com/erp/realestate/internal/application/inventory"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/gin-gonic/gin"
)

// StockMoveHandler handles stock move endpoints
type StockMoveHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockMoveHandler creates a new StockMoveHandler
func NewStockMoveHandler(stockService *inventoryapp.StockService) *StockMoveHandler {
	return &StockMoveHandler{stockService: stockService}
}

// Record handles POST /stock-moves. OUT moves beyond the item's balance are refused.
func (h *StockMoveHandler) Record(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req inventoryapp.RecordMoveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	result, err := h.stockService.Record(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List handles GET /stock-moves?item_id=&project_id=&direction=&from=&to=
func (h *StockMoveHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := inventory.StockMoveFilter{Filter: base}
	if filter.ItemID, ok = h.queryUUID(c, "item_id"); !ok {
		return
	}
	if filter.ProjectID, ok = h.queryUUID(c, "project_id"); !ok {
		return
	}
	if filter.Direction, ok = queryEnum(&h.BaseHandler, c, "direction", inventory.Direction.IsValid); !ok {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}
	filter.From, filter.To = period.From, period.To

	moves, total, err := h.stockService.Moves(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, moves, total, base.Page, base.PageSize)
}
