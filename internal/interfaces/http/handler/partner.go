package handler

import (
	equityapp "github.com/erp/realestate/internal/application/equity"
	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/gin-gonic/gin"
)

// PartnerHandler handles partner endpoints and the partner-facing views
type PartnerHandler struct {
	BaseHandler
	partnerService  *equityapp.PartnerService
	balanceService  *equityapp.BalanceService
	treasuryService *treasuryapp.TreasuryService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(
	partnerService *equityapp.PartnerService,
	balanceService *equityapp.BalanceService,
	treasuryService *treasuryapp.TreasuryService,
) *PartnerHandler {
	return &PartnerHandler{
		partnerService:  partnerService,
		balanceService:  balanceService,
		treasuryService: treasuryService,
	}
}

// Create handles POST /partners. create_wallet also opens the partner's wallet safe.
func (h *PartnerHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req equityapp.CreatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	partner, err := h.partnerService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, partner)
}

// GetByID handles GET /partners/:id
func (h *PartnerHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	partner, err := h.partnerService.GetByID(c.Request.Context(), tenantID, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// List handles GET /partners
func (h *PartnerHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	partners, total, err := h.partnerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, partners, total, filter.Page, filter.PageSize)
}

// Update handles PUT /partners/:id
func (h *PartnerHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	var req equityapp.UpdatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	partner, err := h.partnerService.Update(c.Request.Context(), tenantID, partnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, partner)
}

// Delete handles DELETE /partners/:id. Partners in a group are refused.
func (h *PartnerHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	if err := h.partnerService.Delete(c.Request.Context(), tenantID, partnerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Balance handles GET /partners/:id/balance
func (h *PartnerHandler) Balance(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	balance, err := h.balanceService.PartnerBalance(c.Request.Context(), tenantID, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ShareLedger handles GET /partners/:id/share-ledger?group_id=&from=&to=
func (h *PartnerHandler) ShareLedger(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := equity.ShareEntryFilter{Filter: base}
	if filter.GroupID, ok = h.queryUUID(c, "group_id"); !ok {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}
	filter.From, filter.To = period.From, period.To

	ledger, err := h.balanceService.ShareLedger(c.Request.Context(), tenantID, partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// SettlementBalance handles GET /partners/:id/settlement-balance?group_id=
func (h *PartnerHandler) SettlementBalance(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	groupID, ok := h.queryUUID(c, "group_id")
	if !ok {
		return
	}

	balance, err := h.balanceService.SettlementBalance(c.Request.Context(), tenantID, partnerID, groupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Transactions handles GET /partners/:id/transactions?from=&to=
func (h *PartnerHandler) Transactions(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}

	result, err := h.treasuryService.PartnerTransactions(c.Request.Context(), tenantID, partnerID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
