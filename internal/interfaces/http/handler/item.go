package handler

import (
	inventoryapp "github.com/erp/realestate/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// ItemHandler handles inventory item endpoints
type ItemHandler struct {
	BaseHandler
	itemService  *inventoryapp.ItemService
	stockService *inventoryapp.StockService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *inventoryapp.ItemService, stockService *inventoryapp.StockService) *ItemHandler {
	return &ItemHandler{
		itemService:  itemService,
		stockService: stockService,
	}
}

// Create handles POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req inventoryapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	item, err := h.itemService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetByID handles GET /items/:id
func (h *ItemHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id", "item")
	if !ok {
		return
	}

	item, err := h.itemService.GetByID(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// List handles GET /items
func (h *ItemHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	items, total, err := h.itemService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Update handles PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id", "item")
	if !ok {
		return
	}

	var req inventoryapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete handles DELETE /items/:id. Items with stock moves are refused.
func (h *ItemHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id", "item")
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), tenantID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Balance handles GET /items/:id/balance
func (h *ItemHandler) Balance(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id", "item")
	if !ok {
		return
	}

	level, err := h.stockService.Balance(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// Levels handles GET /items/levels
func (h *ItemHandler) Levels(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	levels, err := h.stockService.Levels(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// LowStock handles GET /items/low-stock
func (h *ItemHandler) LowStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	levels, err := h.stockService.LowStock(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}
