package handler

import (
	salesapp "github.com/erp/realestate/internal/application/sales"
	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/gin-gonic/gin"
)

// ContractHandler handles installment contract endpoints
type ContractHandler struct {
	BaseHandler
	contractService *salesapp.ContractService
	paymentService  *treasuryapp.PaymentService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *salesapp.ContractService, paymentService *treasuryapp.PaymentService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		paymentService:  paymentService,
	}
}

// Create handles POST /contracts. The schedule is generated with the contract.
func (h *ContractHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req salesapp.CreateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	result, err := h.contractService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID handles GET /contracts/:id
func (h *ContractHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	result, err := h.contractService.GetByID(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /contracts?customer_id=&unit_id=&partners_group_id=
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := contract.ContractFilter{Filter: base}
	if filter.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}
	if filter.UnitID, ok = h.queryUUID(c, "unit_id"); !ok {
		return
	}
	if filter.PartnersGroupID, ok = h.queryUUID(c, "partners_group_id"); !ok {
		return
	}

	items, total, err := h.contractService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, base.Page, base.PageSize)
}

// Update handles PUT /contracts/:id. Contracts with payments are locked.
func (h *ContractHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	var req salesapp.UpdateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.contractService.Update(c.Request.Context(), tenantID, contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete handles DELETE /contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	if err := h.contractService.Delete(c.Request.Context(), tenantID, contractID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Schedule handles GET /contracts/:id/installments
func (h *ContractHandler) Schedule(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	// Confirm the contract exists so an unknown id is a 404 rather than an empty list
	if _, err := h.contractService.GetByID(c.Request.Context(), tenantID, contractID); err != nil {
		h.HandleError(c, err)
		return
	}
	items, err := h.contractService.Installments(c.Request.Context(), tenantID,
		contract.InstallmentFilter{ContractID: &contractID})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Summary handles GET /contracts/:id/summary
func (h *ContractHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	result, err := h.contractService.Summary(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// LateFees handles GET /contracts/:id/late-fees?percent=
// Without percent the configured default rate applies.
func (h *ContractHandler) LateFees(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	percent, ok := h.queryDecimal(c, "percent")
	if !ok {
		return
	}

	result, err := h.contractService.LateFees(c.Request.Context(), tenantID, contractID, percent)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reschedule handles POST /contracts/:id/reschedule
func (h *ContractHandler) Reschedule(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	result, err := h.contractService.Reschedule(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Payments handles GET /contracts/:id/payments
func (h *ContractHandler) Payments(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	result, err := h.contractService.Payments(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Pay handles POST /contracts/:id/pay. The amount is applied to the oldest
// unpaid installments first.
func (h *ContractHandler) Pay(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}

	var req treasuryapp.PayContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	result, err := h.paymentService.PayContract(c.Request.Context(), tenantID, contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
