package sales

import (
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateContractRequest represents a request to create an installment contract
type CreateContractRequest struct {
	Code              string          `json:"code" binding:"required,min=1,max=50"`
	CustomerID        uuid.UUID       `json:"customer_id" binding:"required"`
	UnitID            uuid.UUID       `json:"unit_id" binding:"required"`
	UnitValue         decimal.Decimal `json:"unit_value" binding:"decimal_gte0"`
	DownPayment       decimal.Decimal `json:"down_payment" binding:"decimal_gte0"`
	InstallmentsCount int             `json:"installments_count" binding:"min=0,max=600"`
	ScheduleType      string          `json:"schedule_type" binding:"required,oneof=monthly quarterly yearly"`
	StartDate         string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	PartnersGroupID   *uuid.UUID      `json:"partners_group_id"`
	Notes             string          `json:"notes"`
	CreatedBy         *uuid.UUID      `json:"-"`
}

// UpdateContractRequest represents a request to change the terms of an unpaid contract
type UpdateContractRequest struct {
	CustomerID        uuid.UUID       `json:"customer_id" binding:"required"`
	UnitValue         decimal.Decimal `json:"unit_value" binding:"decimal_gt0"`
	DownPayment       decimal.Decimal `json:"down_payment" binding:"decimal_gte0"`
	InstallmentsCount int             `json:"installments_count" binding:"min=0,max=600"`
	ScheduleType      string          `json:"schedule_type" binding:"required,oneof=monthly quarterly yearly"`
	StartDate         string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	PartnersGroupID   *uuid.UUID      `json:"partners_group_id"`
	Notes             string          `json:"notes"`
}

// InstallmentResponse represents one installment in API responses
type InstallmentResponse struct {
	ID         uuid.UUID                  `json:"id"`
	ContractID uuid.UUID                  `json:"contract_id"`
	SeqNo      int                        `json:"seq_no"`
	DueDate    time.Time                  `json:"due_date"`
	Amount     valueobject.Money          `json:"amount"`
	PaidAmount valueobject.Money          `json:"paid_amount"`
	Remaining  valueobject.Money          `json:"remaining"`
	Status     contract.InstallmentStatus `json:"status"`
	DaysLate   int                        `json:"days_late"`
}

// ToInstallmentResponse converts an installment with the status derived for today
func ToInstallmentResponse(inst *contract.Installment, today time.Time) InstallmentResponse {
	return InstallmentResponse{
		ID:         inst.ID,
		ContractID: inst.ContractID,
		SeqNo:      inst.SeqNo,
		DueDate:    inst.DueDate,
		Amount:     valueobject.NewMoney(inst.Amount),
		PaidAmount: valueobject.NewMoney(inst.PaidAmount),
		Remaining:  inst.Remaining(),
		Status:     inst.DeriveStatus(today),
		DaysLate:   inst.DaysLate(today),
	}
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID                uuid.UUID             `json:"id"`
	Code              string                `json:"code"`
	CustomerID        uuid.UUID             `json:"customer_id"`
	UnitID            uuid.UUID             `json:"unit_id"`
	UnitValue         valueobject.Money     `json:"unit_value"`
	DownPayment       valueobject.Money     `json:"down_payment"`
	InstallmentsCount int                   `json:"installments_count"`
	ScheduleType      contract.ScheduleType `json:"schedule_type"`
	StartDate         time.Time             `json:"start_date"`
	PartnersGroupID   *uuid.UUID            `json:"partners_group_id,omitempty"`
	Notes             string                `json:"notes"`
	Installments      []InstallmentResponse `json:"installments,omitempty"`
	CreatedBy         *uuid.UUID            `json:"created_by,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// ToContractResponse converts a contract and its schedule to a response
func ToContractResponse(c *contract.Contract, today time.Time) ContractResponse {
	r := ContractResponse{
		ID:                c.ID,
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
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	for _, inst := range c.SortedInstallments() {
		r.Installments = append(r.Installments, ToInstallmentResponse(inst, today))
	}
	return r
}

// ContractListItem is a contract without its schedule
type ContractListItem struct {
	ID                uuid.UUID             `json:"id"`
	Code              string                `json:"code"`
	CustomerID        uuid.UUID             `json:"customer_id"`
	UnitID            uuid.UUID             `json:"unit_id"`
	UnitValue         valueobject.Money     `json:"unit_value"`
	DownPayment       valueobject.Money     `json:"down_payment"`
	InstallmentsCount int                   `json:"installments_count"`
	ScheduleType      contract.ScheduleType `json:"schedule_type"`
	StartDate         time.Time             `json:"start_date"`
	PartnersGroupID   *uuid.UUID            `json:"partners_group_id,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// ToContractListItem converts a contract to a list item
func ToContractListItem(c *contract.Contract) ContractListItem {
	return ContractListItem{
		ID:                c.ID,
		Code:              c.Code,
		CustomerID:        c.CustomerID,
		UnitID:            c.UnitID,
		UnitValue:         valueobject.NewMoney(c.UnitValue),
		DownPayment:       valueobject.NewMoney(c.DownPayment),
		InstallmentsCount: c.InstallmentsCount,
		ScheduleType:      c.ScheduleType,
		StartDate:         c.StartDate,
		PartnersGroupID:   c.PartnersGroupID,
		CreatedAt:         c.CreatedAt,
	}
}

// SummaryResponse is the payment progress of a contract
type SummaryResponse struct {
	ContractID        uuid.UUID            `json:"contract_id"`
	UnitValue         valueobject.Money    `json:"unit_value"`
	DownPayment       valueobject.Money    `json:"down_payment"`
	InstallmentsTotal valueobject.Money    `json:"installments_total"`
	InstallmentsPaid  valueobject.Money    `json:"installments_paid"`
	TotalPaid         valueobject.Money    `json:"total_paid"`
	Remaining         valueobject.Money    `json:"remaining"`
	CompletionPercent decimal.Decimal      `json:"completion_percent"`
	PaidCount         int                  `json:"paid_count"`
	LateCount         int                  `json:"late_count"`
	PendingCount      int                  `json:"pending_count"`
	PartialCount      int                  `json:"partial_count"`
	NextDue           *InstallmentResponse `json:"next_due,omitempty"`
}

// LateFeeLineResponse is the advisory fee of one overdue installment
type LateFeeLineResponse struct {
	InstallmentID uuid.UUID         `json:"installment_id"`
	SeqNo         int               `json:"seq_no"`
	DueDate       time.Time         `json:"due_date"`
	Remaining     valueobject.Money `json:"remaining"`
	DaysLate      int               `json:"days_late"`
	Fee           valueobject.Money `json:"fee"`
}

// LateFeesResponse lists the advisory late fees of a contract
type LateFeesResponse struct {
	ContractID uuid.UUID             `json:"contract_id"`
	Percent    decimal.Decimal       `json:"percent"`
	Lines      []LateFeeLineResponse `json:"lines"`
	Total      valueobject.Money     `json:"total"`
}

// InstallmentPaymentResponse is one allocation record of a contract
type InstallmentPaymentResponse struct {
	ID               uuid.UUID              `json:"id"`
	InstallmentID    uuid.UUID              `json:"installment_id"`
	ReceiptVoucherID uuid.UUID              `json:"receipt_voucher_id"`
	Amount           valueobject.Money      `json:"amount"`
	Method           contract.PaymentMethod `json:"method"`
	Note             string                 `json:"note"`
	PaidOn           time.Time              `json:"paid_on"`
	ReversedAt       *time.Time             `json:"reversed_at,omitempty"`
}
