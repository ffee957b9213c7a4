package contract

import (
	"time"

	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary is the payment progress of a contract on a given day
type Summary struct {
	ContractID        uuid.UUID
	UnitValue         valueobject.Money
	DownPayment       valueobject.Money
	InstallmentsTotal valueobject.Money
	InstallmentsPaid  valueobject.Money
	TotalPaid         valueobject.Money
	Remaining         valueobject.Money
	CompletionPercent decimal.Decimal
	PaidCount         int
	LateCount         int
	PendingCount      int
	PartialCount      int
	NextDue           *Installment
}

// Summarize computes the payment progress using statuses derived for today
func (c *Contract) Summarize(today time.Time) Summary {
	s := Summary{
		ContractID:        c.ID,
		UnitValue:         valueobject.NewMoney(c.UnitValue),
		DownPayment:       valueobject.NewMoney(c.DownPayment),
		InstallmentsTotal: c.ScheduleTotal(),
		InstallmentsPaid:  valueobject.Zero(),
	}
	for _, inst := range c.SortedInstallments() {
		s.InstallmentsPaid = s.InstallmentsPaid.Add(valueobject.NewMoney(inst.PaidAmount))
		if inst.IsPartial() {
			s.PartialCount++
		}
		switch inst.DeriveStatus(today) {
		case InstallmentPaid:
			s.PaidCount++
		case InstallmentLate:
			s.LateCount++
		default:
			s.PendingCount++
		}
		if s.NextDue == nil && !inst.IsSettled() {
			s.NextDue = inst
		}
	}
	s.TotalPaid = s.DownPayment.Add(s.InstallmentsPaid)
	s.Remaining = s.UnitValue.Sub(s.TotalPaid)
	s.CompletionPercent = valueobject.PercentOf(s.TotalPaid, s.UnitValue)
	return s
}

// LateFeeLine is the advisory late fee of one overdue installment
type LateFeeLine struct {
	InstallmentID uuid.UUID
	SeqNo         int
	DueDate       time.Time
	Remaining     valueobject.Money
	DaysLate      int
	Fee           valueobject.Money
}

// LateFees returns the fee of every overdue, unsettled installment
func (c *Contract) LateFees(today time.Time, percent decimal.Decimal) ([]LateFeeLine, valueobject.Money) {
	total := valueobject.Zero()
	var lines []LateFeeLine
	for _, inst := range c.SortedInstallments() {
		fee := inst.LateFee(today, percent)
		if fee.IsZero() {
			continue
		}
		lines = append(lines, LateFeeLine{
			InstallmentID: inst.ID,
			SeqNo:         inst.SeqNo,
			DueDate:       inst.DueDate,
			Remaining:     inst.Remaining(),
			DaysLate:      inst.DaysLate(today),
			Fee:           fee,
		})
		total = total.Add(fee)
	}
	return lines, total
}
