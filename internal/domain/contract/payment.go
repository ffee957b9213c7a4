package contract

import (
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how an installment payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// InstallmentPayment is the allocation record written for each
// (receipt voucher, installment) funding event. Cancelling the voucher
// reverses exactly these rows.
type InstallmentPayment struct {
	shared.BaseEntity
	TenantID         uuid.UUID
	ContractID       uuid.UUID
	InstallmentID    uuid.UUID
	ReceiptVoucherID uuid.UUID
	Amount           decimal.Decimal
	Method           PaymentMethod
	Note             string
	PaidOn           time.Time
	ReversedAt       *time.Time
}

// NewInstallmentPayments builds one payment record per allocation
func NewInstallmentPayments(c *Contract, voucherID uuid.UUID, allocations []Allocation, method PaymentMethod, note string, paidOn time.Time) []InstallmentPayment {
	if method == "" {
		method = PaymentMethodCash
	}
	records := make([]InstallmentPayment, 0, len(allocations))
	for _, a := range allocations {
		records = append(records, InstallmentPayment{
			BaseEntity:       shared.NewBaseEntity(),
			TenantID:         c.TenantID,
			ContractID:       c.ID,
			InstallmentID:    a.InstallmentID,
			ReceiptVoucherID: voucherID,
			Amount:           a.Amount.Amount(),
			Method:           method,
			Note:             note,
			PaidOn:           shared.DateOf(paidOn),
		})
	}
	return records
}

// IsReversed reports whether the payment has been reversed
func (p *InstallmentPayment) IsReversed() bool {
	return p.ReversedAt != nil
}

// MarkReversed stamps the reversal time
func (p *InstallmentPayment) MarkReversed(at time.Time) error {
	if p.IsReversed() {
		return shared.NewDomainError("ALREADY_REVERSED", "Installment payment has already been reversed")
	}
	p.ReversedAt = &at
	p.UpdatedAt = at
	return nil
}
