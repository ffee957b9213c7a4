package contract

import (
	"sort"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Terms are the commercial terms of an installment sale
type Terms struct {
	Code              string
	CustomerID        uuid.UUID
	UnitID            uuid.UUID
	UnitValue         valueobject.Money
	DownPayment       valueobject.Money
	InstallmentsCount int
	ScheduleType      ScheduleType
	StartDate         time.Time
	PartnersGroupID   *uuid.UUID
	Notes             string
}

var minUnitValue = valueobject.MustMoney("0.01")

// Validate checks the terms in isolation
func (t Terms) Validate() error {
	if t.Code == "" {
		return shared.NewDomainError("INVALID_CODE", "Contract code cannot be empty")
	}
	if len(t.Code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Contract code cannot exceed 50 characters")
	}
	if t.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if t.UnitID == uuid.Nil {
		return shared.NewDomainError("INVALID_UNIT", "Unit is required")
	}
	if t.UnitValue.LessThan(minUnitValue) {
		return shared.NewDomainError("INVALID_AMOUNT", "Unit value must be at least 0.01")
	}
	if !t.UnitValue.Equal(t.UnitValue.Rounded()) || !t.DownPayment.Equal(t.DownPayment.Rounded()) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot have more than two decimal places")
	}
	if t.DownPayment.IsNegative() {
		return shared.NewDomainError("INVALID_DOWN_PAYMENT", "Down payment cannot be negative")
	}
	if t.DownPayment.GreaterThan(t.UnitValue) {
		return shared.NewDomainError("INVALID_DOWN_PAYMENT", "Down payment cannot exceed the unit value")
	}
	if t.InstallmentsCount < 0 {
		return shared.NewDomainError("INVALID_INSTALLMENTS_COUNT", "Installments count cannot be negative")
	}
	if t.DownPayment.Equal(t.UnitValue) && t.InstallmentsCount != 0 {
		return shared.NewDomainError("INVALID_INSTALLMENTS_COUNT", "A fully paid-down contract cannot have installments")
	}
	if t.DownPayment.LessThan(t.UnitValue) && t.InstallmentsCount == 0 {
		return shared.NewDomainError("INVALID_INSTALLMENTS_COUNT", "Installments count must be at least 1 when a balance remains")
	}
	if !t.ScheduleType.IsValid() {
		return shared.NewDomainError("INVALID_SCHEDULE_TYPE", "Schedule type must be monthly, quarterly or yearly")
	}
	if t.StartDate.IsZero() {
		return shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	return nil
}

// Contract is an installment sale of one unit to one customer.
// It owns its installment schedule.
type Contract struct {
	shared.TenantAggregateRoot
	Code              string
	CustomerID        uuid.UUID
	UnitID            uuid.UUID
	UnitValue         decimal.Decimal
	DownPayment       decimal.Decimal
	InstallmentsCount int
	ScheduleType      ScheduleType
	StartDate         time.Time
	PartnersGroupID   *uuid.UUID
	Notes             string
	Installments      []Installment
}

// NewContract validates the terms and generates the installment schedule
func NewContract(tenantID uuid.UUID, terms Terms) (*Contract, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	c := &Contract{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	c.applyTerms(terms)
	if err := c.regenerate(); err != nil {
		return nil, err
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))
	return c, nil
}

func (c *Contract) applyTerms(t Terms) {
	c.Code = t.Code
	c.CustomerID = t.CustomerID
	c.UnitID = t.UnitID
	c.UnitValue = t.UnitValue.Amount()
	c.DownPayment = t.DownPayment.Amount()
	c.InstallmentsCount = t.InstallmentsCount
	c.ScheduleType = t.ScheduleType
	c.StartDate = shared.DateOf(t.StartDate)
	c.PartnersGroupID = t.PartnersGroupID
	c.Notes = t.Notes
}

func (c *Contract) regenerate() error {
	lines, err := GenerateSchedule(c.Financed(), c.InstallmentsCount, c.StartDate, c.ScheduleType, 0)
	if err != nil {
		return err
	}
	c.Installments = make([]Installment, 0, len(lines))
	for _, line := range lines {
		c.Installments = append(c.Installments, newInstallment(c, line))
	}
	return nil
}

// Terms returns the current commercial terms
func (c *Contract) Terms() Terms {
	return Terms{
		Code:              c.Code,
		CustomerID:        c.CustomerID,
		UnitID:            c.UnitID,
		UnitValue:         valueobject.NewMoney(c.UnitValue),
		DownPayment:       valueobject.NewMoney(c.DownPayment),
		InstallmentsCount: c.InstallmentsCount,
		ScheduleType:      c.ScheduleType,
		StartDate:         c.StartDate,
		PartnersGroupID:   c.PartnersGroupID,
		Notes:             c.Notes,
	}
}

// Financed returns unit_value - down_payment, the amount spread over installments
func (c *Contract) Financed() valueobject.Money {
	return valueobject.NewMoney(c.UnitValue.Sub(c.DownPayment))
}

// HasPayments reports whether any installment has received money
func (c *Contract) HasPayments() bool {
	for i := range c.Installments {
		if c.Installments[i].PaidAmount.IsPositive() {
			return true
		}
	}
	return false
}

// UpdateTerms replaces the terms and regenerates the schedule.
// Terms are frozen once any installment has been paid.
func (c *Contract) UpdateTerms(terms Terms) error {
	if c.HasPayments() {
		return shared.NewDomainError("CONTRACT_LOCKED", "Contract terms cannot change after an installment has been paid")
	}
	if err := terms.Validate(); err != nil {
		return err
	}
	c.applyTerms(terms)
	if err := c.regenerate(); err != nil {
		return err
	}
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewScheduleRegeneratedEvent(c))
	return nil
}

// Installment returns the installment with the given id
func (c *Contract) Installment(id uuid.UUID) *Installment {
	for i := range c.Installments {
		if c.Installments[i].ID == id {
			return &c.Installments[i]
		}
	}
	return nil
}

// SortedInstallments returns pointers to the installments ordered by seq_no
func (c *Contract) SortedInstallments() []*Installment {
	out := make([]*Installment, len(c.Installments))
	for i := range c.Installments {
		out[i] = &c.Installments[i]
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].SeqNo < out[b].SeqNo })
	return out
}

// Outstanding returns the unpaid total across all installments
func (c *Contract) Outstanding() valueobject.Money {
	total := valueobject.Zero()
	for i := range c.Installments {
		total = total.Add(c.Installments[i].Remaining())
	}
	return total
}

// ScheduleTotal returns the sum of installment amounts
func (c *Contract) ScheduleTotal() valueobject.Money {
	total := valueobject.Zero()
	for i := range c.Installments {
		total = total.Add(valueobject.NewMoney(c.Installments[i].Amount))
	}
	return total
}

// PayInstallment applies amount to one installment, capped at its remainder.
// The excess carries over FIFO to the unpaid installments numbered after the
// target. Whatever those cannot absorb is returned as unapplied and is not
// part of any allocation.
func (c *Contract) PayInstallment(installmentID uuid.UUID, amount valueobject.Money, today time.Time) ([]Allocation, valueobject.Money, error) {
	if !amount.IsPositive() {
		return nil, valueobject.Zero(), shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	target := c.Installment(installmentID)
	if target == nil {
		return nil, valueobject.Zero(), shared.NewNotFoundError("Installment")
	}
	if target.IsSettled() {
		return nil, valueobject.Zero(), shared.NewDomainErrorf("INSTALLMENT_ALREADY_PAID", "Installment #%d is already paid", target.SeqNo)
	}

	applied, excess, err := target.ApplyPayment(amount, today)
	if err != nil {
		return nil, valueobject.Zero(), err
	}
	allocations := []Allocation{{InstallmentID: target.ID, SeqNo: target.SeqNo, Amount: applied}}
	if excess.IsPositive() {
		var later []*Installment
		for _, inst := range c.SortedInstallments() {
			if inst.SeqNo > target.SeqNo {
				later = append(later, inst)
			}
		}
		var carried []Allocation
		carried, excess = AllocateFIFO(later, excess, today)
		allocations = append(allocations, carried...)
	}

	c.Touch()
	c.AddDomainEvent(NewPaymentAppliedEvent(c, allocations))
	return allocations, excess, nil
}

// PayFIFO spreads amount over the unpaid installments oldest first.
// The amount must not exceed the contract outstanding.
func (c *Contract) PayFIFO(amount valueobject.Money, today time.Time) ([]Allocation, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if outstanding := c.Outstanding(); amount.GreaterThan(outstanding) {
		return nil, shared.NewDomainErrorf("PAYMENT_EXCEEDS_BALANCE", "Payment %s exceeds the contract outstanding balance %s",
			amount.String(), outstanding.String())
	}
	allocations, remainder := AllocateFIFO(c.SortedInstallments(), amount, today)
	if remainder.IsPositive() {
		return nil, shared.NewDomainError("UNALLOCATED_REMAINDER", "Payment could not be fully allocated")
	}
	c.Touch()
	c.AddDomainEvent(NewPaymentAppliedEvent(c, allocations))
	return allocations, nil
}

// ReversePayments undoes previously recorded installment payments
func (c *Contract) ReversePayments(payments []InstallmentPayment, today time.Time) error {
	for _, p := range payments {
		inst := c.Installment(p.InstallmentID)
		if inst == nil {
			return shared.NewNotFoundError("Installment")
		}
		if err := inst.ReversePayment(valueobject.NewMoney(p.Amount), today); err != nil {
			return err
		}
	}
	c.Touch()
	return nil
}

// RefreshStatuses persists derived statuses and returns the installments that changed
func (c *Contract) RefreshStatuses(today time.Time) []*Installment {
	var changed []*Installment
	for i := range c.Installments {
		if c.Installments[i].RefreshStatus(today) {
			changed = append(changed, &c.Installments[i])
		}
	}
	return changed
}

// RecalculateSchedule rebuilds every installment that is not PAID.
//
// PAID rows are kept. The remaining balance (financed minus what PAID rows
// collected) is spread over installments_count minus the PAID rows, numbered
// after the last PAID row and starting one period after its due date, or at
// start_date when nothing is paid. Partially paid rows would lose their
// payments so the rebuild is refused while any exist.
func (c *Contract) RecalculateSchedule() (removed []Installment, err error) {
	var paid []Installment
	for _, inst := range c.Installments {
		if inst.Status == InstallmentPaid || inst.IsSettled() {
			paid = append(paid, inst)
			continue
		}
		if inst.PaidAmount.IsPositive() {
			return nil, shared.NewDomainErrorf("PARTIAL_INSTALLMENT", "Installment #%d is partially paid; settle or reverse it before rescheduling", inst.SeqNo)
		}
		removed = append(removed, inst)
	}
	sort.SliceStable(paid, func(a, b int) bool { return paid[a].SeqNo < paid[b].SeqNo })

	remaining := c.Financed()
	for _, p := range paid {
		remaining = remaining.Sub(valueobject.NewMoney(p.PaidAmount))
	}
	count := c.InstallmentsCount - len(paid)

	start := c.StartDate
	offset := 0
	if n := len(paid); n > 0 {
		last := paid[n-1]
		start = c.ScheduleType.DueDate(last.DueDate, 1)
		offset = last.SeqNo
	}

	if count <= 0 && remaining.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INSTALLMENTS_COUNT", "No installments left to carry the remaining balance")
	}
	lines, err := GenerateSchedule(remaining, max(count, 0), start, c.ScheduleType, offset)
	if err != nil {
		return nil, err
	}

	c.Installments = paid
	for _, line := range lines {
		c.Installments = append(c.Installments, newInstallment(c, line))
	}
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewScheduleRegeneratedEvent(c))
	return removed, nil
}
