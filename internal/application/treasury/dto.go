package treasury

import (
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Safe DTOs =====================

// CreateSafeRequest represents a request to create a safe or a partner wallet
type CreateSafeRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	PartnerID   *uuid.UUID `json:"partner_id"`
	Description string     `json:"description" binding:"max=500"`
}

// UpdateSafeRequest represents a request to update a safe
type UpdateSafeRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// SafeResponse represents a safe in API responses
type SafeResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	IsPartnerWallet bool       `json:"is_partner_wallet"`
	PartnerID       *uuid.UUID `json:"partner_id,omitempty"`
	Description     string     `json:"description"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToSafeResponse converts a domain safe to a response
func ToSafeResponse(s *treasury.Safe) SafeResponse {
	return SafeResponse{
		ID:              s.ID,
		Name:            s.Name,
		IsPartnerWallet: s.IsPartnerWallet,
		PartnerID:       s.PartnerID,
		Description:     s.Description,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ===================== Voucher DTOs =====================

// RecordReceiptRequest represents a request to record a receipt voucher.
// A receipt that names an installment is applied to the contract schedule.
type RecordReceiptRequest struct {
	SafeID        uuid.UUID              `json:"safe_id" binding:"required"`
	Amount        decimal.Decimal        `json:"amount" binding:"decimal_gt0"`
	Date          string                 `json:"date" binding:"omitempty,datetime=2006-01-02"`
	PartnerID     *uuid.UUID             `json:"partner_id"`
	CustomerID    *uuid.UUID             `json:"customer_id"`
	ContractID    *uuid.UUID             `json:"contract_id"`
	InstallmentID *uuid.UUID             `json:"installment_id"`
	Method        contract.PaymentMethod `json:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER CHECK OTHER"`
	Description   string                 `json:"description" binding:"max=500"`
	CreatedBy     *uuid.UUID             `json:"-"`
}

// RecordPaymentRequest represents a request to record a payment voucher
type RecordPaymentRequest struct {
	SafeID      uuid.UUID       `json:"safe_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Date        string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	PartnerID   *uuid.UUID      `json:"partner_id"`
	SupplierID  *uuid.UUID      `json:"supplier_id"`
	ProjectID   *uuid.UUID      `json:"project_id"`
	ExpenseHead string          `json:"expense_head" binding:"max=100"`
	Description string          `json:"description" binding:"max=500"`
	CreatedBy   *uuid.UUID      `json:"-"`
}

// CancelVoucherRequest represents a request to cancel a voucher
type CancelVoucherRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// VoucherResponse represents a receipt or payment voucher in API responses
type VoucherResponse struct {
	ID            uuid.UUID              `json:"id"`
	Type          treasury.VoucherType   `json:"type"`
	Number        string                 `json:"number"`
	Date          time.Time              `json:"date"`
	Amount        valueobject.Money      `json:"amount"`
	SafeID        uuid.UUID              `json:"safe_id"`
	PartnerID     *uuid.UUID             `json:"partner_id,omitempty"`
	CustomerID    *uuid.UUID             `json:"customer_id,omitempty"`
	ContractID    *uuid.UUID             `json:"contract_id,omitempty"`
	InstallmentID *uuid.UUID             `json:"installment_id,omitempty"`
	SupplierID    *uuid.UUID             `json:"supplier_id,omitempty"`
	ProjectID     *uuid.UUID             `json:"project_id,omitempty"`
	ExpenseHead   string                 `json:"expense_head,omitempty"`
	Description   string                 `json:"description"`
	Source        treasury.VoucherSource `json:"source"`
	SourceID      *uuid.UUID             `json:"source_id,omitempty"`
	IsCancelled   bool                   `json:"is_cancelled"`
	CancelledAt   *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason  string                 `json:"cancel_reason,omitempty"`
	CreatedBy     *uuid.UUID             `json:"created_by,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func voucherResponse(v *treasury.Voucher, t treasury.VoucherType) VoucherResponse {
	return VoucherResponse{
		ID:           v.ID,
		Type:         t,
		Number:       v.Number,
		Date:         v.Date,
		Amount:       v.AmountMoney(),
		SafeID:       v.SafeID,
		PartnerID:    v.PartnerID,
		Description:  v.Description,
		Source:       v.Source,
		SourceID:     v.SourceID,
		IsCancelled:  v.IsCancelled,
		CancelledAt:  v.CancelledAt,
		CancelReason: v.CancelReason,
		CreatedBy:    v.CreatedBy,
		CreatedAt:    v.CreatedAt,
	}
}

// ToReceiptResponse converts a receipt voucher to a response
func ToReceiptResponse(v *treasury.ReceiptVoucher) VoucherResponse {
	r := voucherResponse(&v.Voucher, treasury.VoucherTypeReceipt)
	r.CustomerID = v.CustomerID
	r.ContractID = v.ContractID
	r.InstallmentID = v.InstallmentID
	return r
}

// ToPaymentResponse converts a payment voucher to a response
func ToPaymentResponse(v *treasury.PaymentVoucher) VoucherResponse {
	r := voucherResponse(&v.Voucher, treasury.VoucherTypePayment)
	r.SupplierID = v.SupplierID
	r.ProjectID = v.ProjectID
	r.ExpenseHead = v.ExpenseHead
	return r
}

// VoucherListResponse is a page of vouchers with the total of every matching voucher
type VoucherListResponse struct {
	Items       []VoucherResponse `json:"items"`
	Total       int64             `json:"total"`
	TotalAmount valueobject.Money `json:"total_amount"`
}

// VoucherStatsResponse summarizes voucher activity, optionally for one safe
type VoucherStatsResponse struct {
	SafeID       *uuid.UUID        `json:"safe_id,omitempty"`
	ReceiptCount int64             `json:"receipt_count"`
	ReceiptTotal valueobject.Money `json:"receipt_total"`
	PaymentCount int64             `json:"payment_count"`
	PaymentTotal valueobject.Money `json:"payment_total"`
	Net          valueobject.Money `json:"net"`
}

// ===================== Installment payment DTOs =====================

// PayInstallmentRequest represents a payment against one installment
type PayInstallmentRequest struct {
	SafeID      uuid.UUID              `json:"safe_id" binding:"required"`
	Amount      decimal.Decimal        `json:"amount" binding:"decimal_gt0"`
	PaymentDate string                 `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Method      contract.PaymentMethod `json:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER CHECK OTHER"`
	Note        string                 `json:"note" binding:"max=500"`
	CreatedBy   *uuid.UUID             `json:"-"`
}

// PayContractRequest represents a payment spread over a contract's unpaid installments
type PayContractRequest = PayInstallmentRequest

// AllocationResponse is the part of a payment applied to one installment
type AllocationResponse struct {
	InstallmentID uuid.UUID                  `json:"installment_id"`
	SeqNo         int                        `json:"seq_no"`
	Amount        valueobject.Money          `json:"amount"`
	PaidAmount    valueobject.Money          `json:"paid_amount"`
	Remaining     valueobject.Money          `json:"remaining"`
	Status        contract.InstallmentStatus `json:"status"`
}

// ShareResponse is one partner's cut of a payment
type ShareResponse struct {
	PartnerID uuid.UUID         `json:"partner_id"`
	Percent   decimal.Decimal   `json:"percent"`
	Amount    valueobject.Money `json:"amount"`
}

// PaymentRecordResponse is the outcome of an installment payment. Unapplied
// is the part of the amount no installment could absorb; the voucher
// excludes it.
type PaymentRecordResponse struct {
	Voucher             VoucherResponse      `json:"voucher"`
	Allocations         []AllocationResponse `json:"allocations"`
	Shares              []ShareResponse      `json:"shares"`
	ContractOutstanding valueobject.Money    `json:"contract_outstanding"`
	Unapplied           valueobject.Money    `json:"unapplied"`
}

func toPaymentRecordResponse(p *appliedPayment) *PaymentRecordResponse {
	out := &PaymentRecordResponse{
		Voucher:             ToReceiptResponse(p.receipt),
		Allocations:         make([]AllocationResponse, 0, len(p.allocations)),
		Shares:              toShareResponses(p.shares),
		ContractOutstanding: p.contract.Outstanding(),
		Unapplied:           p.unapplied,
	}
	for _, a := range p.allocations {
		line := AllocationResponse{InstallmentID: a.InstallmentID, SeqNo: a.SeqNo, Amount: a.Amount}
		if inst := p.contract.Installment(a.InstallmentID); inst != nil {
			line.PaidAmount = valueobject.NewMoney(inst.PaidAmount)
			line.Remaining = inst.Remaining()
			line.Status = inst.Status
		}
		out.Allocations = append(out.Allocations, line)
	}
	return out
}

func toShareResponses(shares []equity.Share) []ShareResponse {
	out := make([]ShareResponse, 0, len(shares))
	for _, s := range shares {
		out = append(out, ShareResponse{PartnerID: s.PartnerID, Percent: s.Percent, Amount: s.Amount})
	}
	return out
}

// ===================== Treasury DTOs =====================

// TransferRequest represents a transfer between two safes
type TransferRequest struct {
	FromSafeID  uuid.UUID       `json:"from_safe_id" binding:"required"`
	ToSafeID    uuid.UUID       `json:"to_safe_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Date        string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Description string          `json:"description" binding:"max=500"`
	CreatedBy   *uuid.UUID      `json:"-"`
}

// TransferResponse holds the paired vouchers of a transfer
type TransferResponse struct {
	TransferID uuid.UUID       `json:"transfer_id"`
	Payment    VoucherResponse `json:"payment"`
	Receipt    VoucherResponse `json:"receipt"`
}

// BalanceResponse is the position of a safe over a period
type BalanceResponse struct {
	SafeID   uuid.UUID         `json:"safe_id"`
	From     *time.Time        `json:"from,omitempty"`
	To       *time.Time        `json:"to,omitempty"`
	Receipts valueobject.Money `json:"receipts"`
	Payments valueobject.Money `json:"payments"`
	Balance  valueobject.Money `json:"balance"`
}

func toBalanceResponse(b treasury.Balance, period treasury.Period) BalanceResponse {
	return BalanceResponse{
		SafeID:   b.SafeID,
		From:     period.From,
		To:       period.To,
		Receipts: b.Receipts,
		Payments: b.Payments,
		Balance:  b.Net(),
	}
}

// CashFlowLine is one voucher in a cash flow statement
type CashFlowLine struct {
	Date        time.Time                  `json:"date"`
	Direction   treasury.CashFlowDirection `json:"direction"`
	VoucherID   uuid.UUID                  `json:"voucher_id"`
	Number      string                     `json:"number"`
	Description string                     `json:"description"`
	Amount      valueobject.Money          `json:"amount"`
	Running     valueobject.Money          `json:"running_balance"`
}

// CashFlowResponse is the dated movement of a safe with a running balance
type CashFlowResponse struct {
	SafeID  uuid.UUID         `json:"safe_id"`
	From    *time.Time        `json:"from,omitempty"`
	To      *time.Time        `json:"to,omitempty"`
	Opening valueobject.Money `json:"opening_balance"`
	Closing valueobject.Money `json:"closing_balance"`
	Entries []CashFlowLine    `json:"entries"`
}

// SafeBalanceLine is one row of the all-safes summary
type SafeBalanceLine struct {
	SafeID          uuid.UUID         `json:"safe_id"`
	Name            string            `json:"name"`
	IsPartnerWallet bool              `json:"is_partner_wallet"`
	IsActive        bool              `json:"is_active"`
	Receipts        valueobject.Money `json:"receipts"`
	Payments        valueobject.Money `json:"payments"`
	Balance         valueobject.Money `json:"balance"`
}

// SummaryResponse lists every safe with its all-time balance and the totals
type SummaryResponse struct {
	Safes         []SafeBalanceLine `json:"safes"`
	TotalReceipts valueobject.Money `json:"total_receipts"`
	TotalPayments valueobject.Money `json:"total_payments"`
	TotalBalance  valueobject.Money `json:"total_balance"`
}

// PartnerTransactionsResponse lists the vouchers of a partner
type PartnerTransactionsResponse struct {
	PartnerID     uuid.UUID         `json:"partner_id"`
	WalletID      *uuid.UUID        `json:"wallet_id,omitempty"`
	Receipts      []VoucherResponse `json:"receipts"`
	Payments      []VoucherResponse `json:"payments"`
	TotalReceipts valueobject.Money `json:"total_receipts"`
	TotalPayments valueobject.Money `json:"total_payments"`
	Net           valueobject.Money `json:"net"`
}

// parseDateOr parses an optional YYYY-MM-DD value, falling back to def
func parseDateOr(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return shared.DateOf(def), nil
	}
	return shared.ParseDate(value)
}

func userID(createdBy *uuid.UUID) uuid.UUID {
	if createdBy == nil {
		return uuid.Nil
	}
	return *createdBy
}
