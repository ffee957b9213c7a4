package treasury

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherType distinguishes money in from money out
type VoucherType string

const (
	VoucherTypeReceipt VoucherType = "RECEIPT"
	VoucherTypePayment VoucherType = "PAYMENT"
)

// Prefix returns the number prefix of the voucher type
func (t VoucherType) Prefix() string {
	if t == VoucherTypePayment {
		return "PV"
	}
	return "RV"
}

// FormatVoucherNumber renders a sequence value as RV-000001 / PV-000001
func FormatVoucherNumber(t VoucherType, seq int64) string {
	return fmt.Sprintf("%s-%06d", t.Prefix(), seq)
}

// VoucherSource records which workflow produced a voucher
type VoucherSource string

const (
	SourceManual      VoucherSource = "MANUAL"
	SourceInstallment VoucherSource = "INSTALLMENT"
	SourceTransfer    VoucherSource = "TRANSFER"
	SourceSettlement  VoucherSource = "SETTLEMENT"
)

// IsValid checks if the source is known
func (s VoucherSource) IsValid() bool {
	switch s {
	case SourceManual, SourceInstallment, SourceTransfer, SourceSettlement:
		return true
	}
	return false
}

// CountsAsPartnerExpense reports whether payments from this source are real spending.
// Transfers and settlements only move money between safes and partners.
func (s VoucherSource) CountsAsPartnerExpense() bool {
	return s == SourceManual || s == ""
}

var minVoucherAmount = valueobject.MustMoney("0.01")

// Voucher holds the fields shared by receipt and payment vouchers
type Voucher struct {
	shared.TenantAggregateRoot
	Number       string
	Date         time.Time
	Amount       decimal.Decimal
	SafeID       uuid.UUID
	PartnerID    *uuid.UUID
	Description  string
	Source       VoucherSource
	SourceID     *uuid.UUID
	IsCancelled  bool
	CancelledAt  *time.Time
	CancelReason string
}

// VoucherInput carries the common voucher fields
type VoucherInput struct {
	Date        time.Time
	Amount      valueobject.Money
	SafeID      uuid.UUID
	PartnerID   *uuid.UUID
	Description string
	Source      VoucherSource
	SourceID    *uuid.UUID
	CreatedBy   uuid.UUID
}

func newVoucher(tenantID uuid.UUID, number string, in VoucherInput) (Voucher, error) {
	if strings.TrimSpace(number) == "" {
		return Voucher{}, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if in.Amount.LessThan(minVoucherAmount) {
		return Voucher{}, shared.NewDomainError("INVALID_AMOUNT", "Voucher amount must be at least 0.01")
	}
	if !in.Amount.Equal(in.Amount.Rounded()) {
		return Voucher{}, shared.NewDomainError("INVALID_AMOUNT", "Voucher amount cannot have more than two decimal places")
	}
	if in.SafeID == uuid.Nil {
		return Voucher{}, shared.NewDomainError("INVALID_SAFE", "Safe is required")
	}
	if in.Date.IsZero() {
		return Voucher{}, shared.NewDomainError("INVALID_DATE", "Voucher date is required")
	}
	if shared.DateOf(in.Date).After(shared.Today()) {
		return Voucher{}, shared.NewDomainError("FUTURE_DATE", "Voucher date cannot be in the future")
	}
	source := in.Source
	if source == "" {
		source = SourceManual
	}
	if !source.IsValid() {
		return Voucher{}, shared.NewDomainError("INVALID_SOURCE", "Unknown voucher source")
	}
	v := Voucher{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Date:                shared.DateOf(in.Date),
		Amount:              in.Amount.Amount(),
		SafeID:              in.SafeID,
		PartnerID:           in.PartnerID,
		Description:         in.Description,
		Source:              source,
		SourceID:            in.SourceID,
	}
	v.SetCreatedBy(in.CreatedBy)
	return v, nil
}

// AmountMoney returns the voucher amount as Money
func (v *Voucher) AmountMoney() valueobject.Money {
	return valueobject.NewMoney(v.Amount)
}

// Cancel marks the voucher cancelled. Cancelled vouchers drop out of every balance.
func (v *Voucher) Cancel(reason string, at time.Time) error {
	if v.IsCancelled {
		return shared.NewDomainErrorf("ALREADY_CANCELLED", "Voucher %s is already cancelled", v.Number)
	}
	v.IsCancelled = true
	v.CancelledAt = &at
	v.CancelReason = reason
	v.UpdatedAt = at
	v.IncrementVersion()
	return nil
}

// ReceiptVoucher records money received into a safe
type ReceiptVoucher struct {
	Voucher
	CustomerID    *uuid.UUID
	ContractID    *uuid.UUID
	InstallmentID *uuid.UUID
}

// ReceiptInput are the receipt-specific fields
type ReceiptInput struct {
	VoucherInput
	CustomerID    *uuid.UUID
	ContractID    *uuid.UUID
	InstallmentID *uuid.UUID
}

// NewReceiptVoucher creates a receipt voucher
func NewReceiptVoucher(tenantID uuid.UUID, number string, in ReceiptInput) (*ReceiptVoucher, error) {
	v, err := newVoucher(tenantID, number, in.VoucherInput)
	if err != nil {
		return nil, err
	}
	rv := &ReceiptVoucher{
		Voucher:       v,
		CustomerID:    in.CustomerID,
		ContractID:    in.ContractID,
		InstallmentID: in.InstallmentID,
	}
	rv.AddDomainEvent(NewVoucherPostedEvent(&rv.Voucher, VoucherTypeReceipt))
	return rv, nil
}

// CancelReceipt cancels the receipt and records the event
func (rv *ReceiptVoucher) CancelReceipt(reason string, at time.Time) error {
	if err := rv.Cancel(reason, at); err != nil {
		return err
	}
	rv.AddDomainEvent(NewVoucherCancelledEvent(&rv.Voucher, VoucherTypeReceipt))
	return nil
}

// PaymentVoucher records money paid out of a safe
type PaymentVoucher struct {
	Voucher
	SupplierID  *uuid.UUID
	ProjectID   *uuid.UUID
	ExpenseHead string
}

// PaymentInput are the payment-specific fields
type PaymentInput struct {
	VoucherInput
	SupplierID  *uuid.UUID
	ProjectID   *uuid.UUID
	ExpenseHead string
}

// NewPaymentVoucher creates a payment voucher
func NewPaymentVoucher(tenantID uuid.UUID, number string, in PaymentInput) (*PaymentVoucher, error) {
	v, err := newVoucher(tenantID, number, in.VoucherInput)
	if err != nil {
		return nil, err
	}
	pv := &PaymentVoucher{
		Voucher:     v,
		SupplierID:  in.SupplierID,
		ProjectID:   in.ProjectID,
		ExpenseHead: in.ExpenseHead,
	}
	pv.AddDomainEvent(NewVoucherPostedEvent(&pv.Voucher, VoucherTypePayment))
	return pv, nil
}

// CancelPayment cancels the payment and records the event
func (pv *PaymentVoucher) CancelPayment(reason string, at time.Time) error {
	if err := pv.Cancel(reason, at); err != nil {
		return err
	}
	pv.AddDomainEvent(NewVoucherCancelledEvent(&pv.Voucher, VoucherTypePayment))
	return nil
}

// TransferDescriptions returns the payment and receipt descriptions of an inter-safe transfer
func TransferDescriptions(fromName, toName, description string) (out, in string) {
	out = "Transfer to " + toName
	in = "Transfer from " + fromName
	if description != "" {
		out += ": " + description
		in += ": " + description
	}
	return out, in
}
