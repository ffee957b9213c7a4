package handler

import (
	salesapp "github.com/erp/realestate/internal/application/sales"
	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/gin-gonic/gin"
)

// InstallmentHandler handles installment endpoints
type InstallmentHandler struct {
	BaseHandler
	contractService *salesapp.ContractService
	paymentService  *treasuryapp.PaymentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(contractService *salesapp.ContractService, paymentService *treasuryapp.PaymentService) *InstallmentHandler {
	return &InstallmentHandler{
		contractService: contractService,
		paymentService:  paymentService,
	}
}

// List handles GET /installments?contract_id=&status=&due_from=&due_to=&unpaid_only=&fields=
// With fields set, each row carries only the named columns.
func (h *InstallmentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := contract.InstallmentFilter{Filter: base}
	if filter.ContractID, ok = h.queryUUID(c, "contract_id"); !ok {
		return
	}
	if filter.Status, ok = queryEnum(&h.BaseHandler, c, "status", contract.InstallmentStatus.IsValid); !ok {
		return
	}
	if filter.DueFrom, ok = h.queryDate(c, "due_from"); !ok {
		return
	}
	if filter.DueTo, ok = h.queryDate(c, "due_to"); !ok {
		return
	}
	unpaid, ok := h.queryBool(c, "unpaid_only")
	if !ok {
		return
	}
	filter.UnpaidOnly = unpaid != nil && *unpaid

	fields := queryFields(c)
	cols, err := InstallmentFields.Select(fields)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, err := h.contractService.Installments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(fields) > 0 {
		h.Success(c, Project(items, cols))
		return
	}
	h.Success(c, items)
}

// Pay handles POST /installments/:id/pay
func (h *InstallmentHandler) Pay(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	installmentID, ok := h.pathID(c, "id", "installment")
	if !ok {
		return
	}

	var req treasuryapp.PayInstallmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	result, err := h.paymentService.PayInstallment(c.Request.Context(), tenantID, installmentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
