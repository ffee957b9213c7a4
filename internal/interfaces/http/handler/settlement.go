package handler

import (
	settlementapp "github.com/erp/realestate/internal/application/settlement"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/gin-gonic/gin"
)

// SettlementHandler handles settlement endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *settlementapp.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *settlementapp.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// Compute handles POST /settlements/compute. Nothing is persisted.
func (h *SettlementHandler) Compute(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req settlementapp.ComputeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.settlementService.Compute(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create handles POST /settlements. The run records the pending settlements
// with the partners' balances before and after.
func (h *SettlementHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req settlementapp.ComputeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	run, err := h.settlementService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, run)
}

// Execute handles POST /settlements/:id/execute
func (h *SettlementHandler) Execute(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	settlementID, ok := h.pathID(c, "id", "settlement")
	if !ok {
		return
	}

	// The body is optional
	var req settlementapp.ExecuteRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	result, err := h.settlementService.Execute(c.Request.Context(), tenantID, settlementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel handles POST /settlements/:id/cancel
func (h *SettlementHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	settlementID, ok := h.pathID(c, "id", "settlement")
	if !ok {
		return
	}

	result, err := h.settlementService.Cancel(c.Request.Context(), tenantID, settlementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByID handles GET /settlements/:id
func (h *SettlementHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	settlementID, ok := h.pathID(c, "id", "settlement")
	if !ok {
		return
	}

	result, err := h.settlementService.GetByID(c.Request.Context(), tenantID, settlementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /settlements?partner_id=&partners_group_id=&project_id=&status=&run_id=
func (h *SettlementHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := settlement.Filter{Filter: base}
	if filter.PartnerID, ok = h.queryUUID(c, "partner_id"); !ok {
		return
	}
	if filter.PartnersGroupID, ok = h.queryUUID(c, "partners_group_id"); !ok {
		return
	}
	if filter.ProjectID, ok = h.queryUUID(c, "project_id"); !ok {
		return
	}
	if filter.RunID, ok = h.queryUUID(c, "run_id"); !ok {
		return
	}
	if filter.Status, ok = queryEnum(&h.BaseHandler, c, "status", settlement.Status.IsValid); !ok {
		return
	}

	items, total, err := h.settlementService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, base.Page, base.PageSize)
}

// Runs handles GET /settlements/runs?partners_group_id=
func (h *SettlementHandler) Runs(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	groupID, ok := h.queryUUID(c, "partners_group_id")
	if !ok {
		return
	}

	runs, err := h.settlementService.Runs(c.Request.Context(), tenantID, groupID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, runs)
}

// GetRun handles GET /settlements/runs/:id
func (h *SettlementHandler) GetRun(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	runID, ok := h.pathID(c, "id", "settlement run")
	if !ok {
		return
	}

	run, err := h.settlementService.GetRun(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, run)
}
