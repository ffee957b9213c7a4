package handler

import (
	partyapp "github.com/erp/realestate/internal/application/party"
	"github.com/gin-gonic/gin"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partyapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partyapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req partyapp.CreateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// GetByID handles GET /suppliers/:id
func (h *SupplierHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	supplierID, ok := h.pathID(c, "id", "supplier")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), tenantID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	suppliers, total, err := h.supplierService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	supplierID, ok := h.pathID(c, "id", "supplier")
	if !ok {
		return
	}

	var req partyapp.UpdateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), tenantID, supplierID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete handles DELETE /suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	supplierID, ok := h.pathID(c, "id", "supplier")
	if !ok {
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), tenantID, supplierID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
