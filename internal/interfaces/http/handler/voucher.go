package handler

import (
	"context"

	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VoucherHandler handles receipt and payment voucher endpoints
type VoucherHandler struct {
	BaseHandler
	voucherService *treasuryapp.VoucherService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(voucherService *treasuryapp.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService}
}

// voucherListPage is a voucher page rendered with a field selection
type voucherListPage struct {
	Items       []map[string]any  `json:"items"`
	Total       int64             `json:"total"`
	TotalAmount valueobject.Money `json:"total_amount"`
}

// CreateReceipt handles POST /receipt-vouchers
func (h *VoucherHandler) CreateReceipt(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req treasuryapp.RecordReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	voucher, err := h.voucherService.RecordReceipt(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// CreatePayment handles POST /payment-vouchers. The safe must cover the amount.
func (h *VoucherHandler) CreatePayment(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req treasuryapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	voucher, err := h.voucherService.RecordPayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// GetReceipt handles GET /receipt-vouchers/:id
func (h *VoucherHandler) GetReceipt(c *gin.Context) {
	h.get(c, h.voucherService.GetReceipt)
}

// GetPayment handles GET /payment-vouchers/:id
func (h *VoucherHandler) GetPayment(c *gin.Context) {
	h.get(c, h.voucherService.GetPayment)
}

// CancelReceipt handles POST /receipt-vouchers/:id/cancel
func (h *VoucherHandler) CancelReceipt(c *gin.Context) {
	h.cancel(c, h.voucherService.CancelReceipt)
}

// CancelPayment handles POST /payment-vouchers/:id/cancel
func (h *VoucherHandler) CancelPayment(c *gin.Context) {
	h.cancel(c, h.voucherService.CancelPayment)
}

// ListReceipts handles GET /receipt-vouchers
func (h *VoucherHandler) ListReceipts(c *gin.Context) {
	h.list(c, h.voucherService.ListReceipts)
}

// ListPayments handles GET /payment-vouchers
func (h *VoucherHandler) ListPayments(c *gin.Context) {
	h.list(c, h.voucherService.ListPayments)
}

// Stats handles GET /vouchers/stats?safe_id=&from=&to=
func (h *VoucherHandler) Stats(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	safeID, ok := h.queryUUID(c, "safe_id")
	if !ok {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}

	stats, err := h.voucherService.Stats(c.Request.Context(), tenantID, safeID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

func (h *VoucherHandler) get(c *gin.Context,
	load func(context.Context, uuid.UUID, uuid.UUID) (*treasuryapp.VoucherResponse, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	voucherID, ok := h.pathID(c, "id", "voucher")
	if !ok {
		return
	}

	voucher, err := load(c.Request.Context(), tenantID, voucherID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// cancel marks a voucher cancelled; balances exclude it from then on
func (h *VoucherHandler) cancel(c *gin.Context,
	apply func(context.Context, uuid.UUID, uuid.UUID, treasuryapp.CancelVoucherRequest) (*treasuryapp.VoucherResponse, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	voucherID, ok := h.pathID(c, "id", "voucher")
	if !ok {
		return
	}

	var req treasuryapp.CancelVoucherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	voucher, err := apply(c.Request.Context(), tenantID, voucherID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// list binds the shared voucher filters:
// safe_id, partner_id, customer_id, supplier_id, project_id, contract_id,
// from, to, include_cancelled, expense_only and fields.
func (h *VoucherHandler) list(c *gin.Context,
	find func(context.Context, uuid.UUID, treasury.VoucherFilter) (*treasuryapp.VoucherListResponse, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := treasury.VoucherFilter{Filter: base}
	refs := []struct {
		name string
		dst  **uuid.UUID
	}{
		{"safe_id", &filter.SafeID},
		{"partner_id", &filter.PartnerID},
		{"customer_id", &filter.CustomerID},
		{"supplier_id", &filter.SupplierID},
		{"project_id", &filter.ProjectID},
		{"contract_id", &filter.ContractID},
	}
	for _, ref := range refs {
		if *ref.dst, ok = h.queryUUID(c, ref.name); !ok {
			return
		}
	}
	if filter.Period, ok = h.period(c); !ok {
		return
	}
	includeCancelled, ok := h.queryBool(c, "include_cancelled")
	if !ok {
		return
	}
	filter.IncludeCancelled = includeCancelled != nil && *includeCancelled
	expenseOnly, ok := h.queryBool(c, "expense_only")
	if !ok {
		return
	}
	filter.ExpenseSourceOnly = expenseOnly != nil && *expenseOnly

	fields := queryFields(c)
	cols, err := VoucherFields.Select(fields)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := find(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(fields) == 0 {
		h.SuccessWithMeta(c, page, page.Total, base.Page, base.PageSize)
		return
	}
	h.SuccessWithMeta(c, voucherListPage{
		Items:       Project(page.Items, cols),
		Total:       page.Total,
		TotalAmount: page.TotalAmount,
	}, page.Total, base.Page, base.PageSize)
}
