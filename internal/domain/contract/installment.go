package contract

import (
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus is derived from paid amount and due date
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING" // Not fully paid, not yet overdue
	InstallmentLate    InstallmentStatus = "LATE"    // Not fully paid, past due date
	InstallmentPaid    InstallmentStatus = "PAID"    // Fully paid
)

// IsValid checks if the status is valid
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentPending, InstallmentLate, InstallmentPaid:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// DefaultLateFeePercent is the monthly late fee rate applied when none is configured
var DefaultLateFeePercent = decimal.NewFromInt(2)

// Installment is one scheduled payment of a contract
type Installment struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	ContractID uuid.UUID
	SeqNo      int
	DueDate    time.Time
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
	Status     InstallmentStatus
}

func newInstallment(c *Contract, line ScheduleLine) Installment {
	return Installment{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   c.TenantID,
		ContractID: c.ID,
		SeqNo:      line.SeqNo,
		DueDate:    line.DueDate,
		Amount:     line.Amount.Amount(),
		PaidAmount: decimal.Zero,
		Status:     InstallmentPending,
	}
}

// Remaining returns the unpaid part of the installment
func (i *Installment) Remaining() valueobject.Money {
	return valueobject.NewMoney(i.Amount.Sub(i.PaidAmount))
}

// IsPartial reports whether something but not everything has been paid
func (i *Installment) IsPartial() bool {
	return i.PaidAmount.IsPositive() && i.PaidAmount.LessThan(i.Amount)
}

// IsSettled reports whether the installment is fully paid
func (i *Installment) IsSettled() bool {
	return i.PaidAmount.GreaterThanOrEqual(i.Amount)
}

// DeriveStatus computes the status the installment should have on the given day
func (i *Installment) DeriveStatus(today time.Time) InstallmentStatus {
	if i.IsSettled() {
		return InstallmentPaid
	}
	if shared.DateOf(today).After(shared.DateOf(i.DueDate)) {
		return InstallmentLate
	}
	return InstallmentPending
}

// RefreshStatus stores the derived status and reports whether it changed
func (i *Installment) RefreshStatus(today time.Time) bool {
	next := i.DeriveStatus(today)
	if next == i.Status {
		return false
	}
	i.Status = next
	i.Touch()
	return true
}

// ApplyPayment adds amount to the paid amount, capped at the installment
// amount. It returns the part applied and the excess that did not fit.
func (i *Installment) ApplyPayment(amount valueobject.Money, today time.Time) (applied, excess valueobject.Money, err error) {
	if !amount.IsPositive() {
		return valueobject.Zero(), valueobject.Zero(), shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	applied = amount.Min(i.Remaining())
	excess = amount.Sub(applied)
	i.PaidAmount = i.PaidAmount.Add(applied.Amount())
	i.RefreshStatus(today)
	i.Touch()
	return applied, excess, nil
}

// ReversePayment removes a previously applied amount
func (i *Installment) ReversePayment(amount valueobject.Money, today time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be positive")
	}
	if amount.Amount().GreaterThan(i.PaidAmount) {
		return shared.NewDomainErrorf("INVALID_REVERSAL", "Cannot reverse %s from installment #%d with %s paid",
			amount.String(), i.SeqNo, i.PaidAmount.StringFixed(2))
	}
	i.PaidAmount = i.PaidAmount.Sub(amount.Amount())
	i.RefreshStatus(today)
	i.Touch()
	return nil
}

// DaysLate returns the whole days past the due date, zero if not overdue
func (i *Installment) DaysLate(today time.Time) int {
	days := shared.DaysBetween(i.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}

// LateFee computes the advisory late fee on the unpaid remainder:
// remaining * percent/100 * days_late/30, rounded half-up to two places.
// Paid and not-yet-due installments carry no fee.
func (i *Installment) LateFee(today time.Time, percent decimal.Decimal) valueobject.Money {
	if i.IsSettled() {
		return valueobject.Zero()
	}
	days := i.DaysLate(today)
	if days == 0 {
		return valueobject.Zero()
	}
	fee := i.Remaining().Amount().
		Mul(percent).
		Mul(decimal.NewFromInt(int64(days))).
		DivRound(decimal.NewFromInt(3000), 16)
	return valueobject.NewMoney(valueobject.Round(fee))
}
