package handler

import (
	realtyapp "github.com/erp/realestate/internal/application/realty"
	"github.com/erp/realestate/internal/domain/realty"
	"github.com/gin-gonic/gin"
)

// UnitHandler handles property unit endpoints
type UnitHandler struct {
	BaseHandler
	unitService *realtyapp.UnitService
}

// NewUnitHandler creates a new UnitHandler
func NewUnitHandler(unitService *realtyapp.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// Create handles POST /units
func (h *UnitHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req realtyapp.CreateUnitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	unit, err := h.unitService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, unit)
}

// GetByID handles GET /units/:id
func (h *UnitHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	unitID, ok := h.pathID(c, "id", "unit")
	if !ok {
		return
	}

	unit, err := h.unitService.GetByID(c.Request.Context(), tenantID, unitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// List handles GET /units?unit_type=&group=&is_sold=
func (h *UnitHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	unitType, ok := queryEnum(&h.BaseHandler, c, "unit_type", realty.UnitType.IsValid)
	if !ok {
		return
	}
	group, ok := queryEnum(&h.BaseHandler, c, "group", realty.UnitGroup.IsValid)
	if !ok {
		return
	}
	isSold, ok := h.queryBool(c, "is_sold")
	if !ok {
		return
	}

	filter := realty.UnitFilter{Filter: base, UnitType: unitType, Group: group, IsSold: isSold}
	units, total, err := h.unitService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, units, total, base.Page, base.PageSize)
}

// Update handles PUT /units/:id
func (h *UnitHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	unitID, ok := h.pathID(c, "id", "unit")
	if !ok {
		return
	}

	var req realtyapp.UpdateUnitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	unit, err := h.unitService.Update(c.Request.Context(), tenantID, unitID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// Delete handles DELETE /units/:id
func (h *UnitHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	unitID, ok := h.pathID(c, "id", "unit")
	if !ok {
		return
	}

	if err := h.unitService.Delete(c.Request.Context(), tenantID, unitID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
