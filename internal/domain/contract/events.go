package contract

import (
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeContractCreated     = "ContractCreated"
	EventTypeScheduleRegenerated = "ContractScheduleRegenerated"
	EventTypePaymentApplied      = "InstallmentPaymentApplied"
)

// AggregateTypeContract is the aggregate type reported by contract events
const AggregateTypeContract = "Contract"

// ContractCreatedEvent is raised when a new contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID        uuid.UUID       `json:"contract_id"`
	Code              string          `json:"code"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	UnitID            uuid.UUID       `json:"unit_id"`
	UnitValue         decimal.Decimal `json:"unit_value"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	InstallmentsCount int             `json:"installments_count"`
	CreatedBy         *uuid.UUID      `json:"created_by,omitempty"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:        c.ID,
		Code:              c.Code,
		CustomerID:        c.CustomerID,
		UnitID:            c.UnitID,
		UnitValue:         c.UnitValue,
		DownPayment:       c.DownPayment,
		InstallmentsCount: c.InstallmentsCount,
		CreatedBy:         c.CreatedBy,
	}
}

// ScheduleRegeneratedEvent is raised when the schedule is rebuilt
type ScheduleRegeneratedEvent struct {
	shared.BaseDomainEvent
	ContractID   uuid.UUID `json:"contract_id"`
	Code         string    `json:"code"`
	Installments int       `json:"installments"`
}

// NewScheduleRegeneratedEvent creates a new ScheduleRegeneratedEvent
func NewScheduleRegeneratedEvent(c *Contract) *ScheduleRegeneratedEvent {
	return &ScheduleRegeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleRegenerated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		Code:            c.Code,
		Installments:    len(c.Installments),
	}
}

// PaymentAppliedEvent is raised when money is applied to installments
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	ContractID  uuid.UUID       `json:"contract_id"`
	Code        string          `json:"code"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Installment []int           `json:"installments"`
	AppliedAt   time.Time       `json:"applied_at"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(c *Contract, allocations []Allocation) *PaymentAppliedEvent {
	seqs := make([]int, 0, len(allocations))
	for _, a := range allocations {
		seqs = append(seqs, a.SeqNo)
	}
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		Code:            c.Code,
		CustomerID:      c.CustomerID,
		Amount:          TotalAllocated(allocations).Amount(),
		Installment:     seqs,
		AppliedAt:       time.Now(),
		CreatedBy:       c.CreatedBy,
	}
}
