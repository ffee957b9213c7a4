package handler

import (
	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/gin-gonic/gin"
)

// SafeHandler handles safe and treasury position endpoints
type SafeHandler struct {
	BaseHandler
	safeService     *treasuryapp.SafeService
	treasuryService *treasuryapp.TreasuryService
}

// NewSafeHandler creates a new SafeHandler
func NewSafeHandler(safeService *treasuryapp.SafeService, treasuryService *treasuryapp.TreasuryService) *SafeHandler {
	return &SafeHandler{
		safeService:     safeService,
		treasuryService: treasuryService,
	}
}

// Create handles POST /safes. A partner_id makes the safe that partner's wallet.
func (h *SafeHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req treasuryapp.CreateSafeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	safe, err := h.safeService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, safe)
}

// GetByID handles GET /safes/:id
func (h *SafeHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	safeID, ok := h.pathID(c, "id", "safe")
	if !ok {
		return
	}

	safe, err := h.safeService.GetByID(c.Request.Context(), tenantID, safeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, safe)
}

// List handles GET /safes
func (h *SafeHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	safes, err := h.safeService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, safes)
}

// Update handles PUT /safes/:id
func (h *SafeHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	safeID, ok := h.pathID(c, "id", "safe")
	if !ok {
		return
	}

	var req treasuryapp.UpdateSafeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	safe, err := h.safeService.Update(c.Request.Context(), tenantID, safeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, safe)
}

// Delete handles DELETE /safes/:id. Safes with vouchers are refused.
func (h *SafeHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	safeID, ok := h.pathID(c, "id", "safe")
	if !ok {
		return
	}

	if err := h.safeService.Delete(c.Request.Context(), tenantID, safeID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Balance handles GET /safes/:id/balance?from=&to=
func (h *SafeHandler) Balance(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	safeID, ok := h.pathID(c, "id", "safe")
	if !ok {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}

	balance, err := h.treasuryService.SafeBalance(c.Request.Context(), tenantID, safeID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// CashFlow handles GET /safes/:id/cash-flow?from=&to=
func (h *SafeHandler) CashFlow(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	safeID, ok := h.pathID(c, "id", "safe")
	if !ok {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}

	flow, err := h.treasuryService.CashFlow(c.Request.Context(), tenantID, safeID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flow)
}

// Summary handles GET /safes/summary
func (h *SafeHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	summary, err := h.treasuryService.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Transfer handles POST /safes/transfer
func (h *SafeHandler) Transfer(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req treasuryapp.TransferRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	result, err := h.treasuryService.Transfer(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
