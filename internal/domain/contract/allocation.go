package contract

import (
	"sort"
	"time"

	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Allocation records how much of a payment landed on one installment
type Allocation struct {
	InstallmentID uuid.UUID
	SeqNo         int
	Amount        valueobject.Money
}

// AllocateFIFO distributes amount over the unpaid installments in ascending
// seq_no order, filling each before moving on. Installments are mutated in
// place. It returns one allocation per touched installment and the part of
// amount that no installment could absorb.
func AllocateFIFO(installments []*Installment, amount valueobject.Money, today time.Time) ([]Allocation, valueobject.Money) {
	ordered := make([]*Installment, 0, len(installments))
	for _, inst := range installments {
		if !inst.IsSettled() {
			ordered = append(ordered, inst)
		}
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].SeqNo < ordered[b].SeqNo
	})

	remaining := amount
	var allocations []Allocation
	for _, inst := range ordered {
		if !remaining.IsPositive() {
			break
		}
		applied, excess, err := inst.ApplyPayment(remaining, today)
		if err != nil {
			break
		}
		if applied.IsPositive() {
			allocations = append(allocations, Allocation{
				InstallmentID: inst.ID,
				SeqNo:         inst.SeqNo,
				Amount:        applied,
			})
		}
		remaining = excess
	}
	return allocations, remaining
}

// TotalAllocated sums the allocation amounts
func TotalAllocated(allocations []Allocation) valueobject.Money {
	total := valueobject.Zero()
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	return total
}
