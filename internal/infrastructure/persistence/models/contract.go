package models

import (
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate.
type ContractModel struct {
	TenantAggregateModel
	Code              string                `gorm:"type:varchar(50);not null;index"`
	CustomerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID            uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:uq_contracts_unit"`
	UnitValue         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	DownPayment       decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	InstallmentsCount int                   `gorm:"not null;default:0"`
	ScheduleType      contract.ScheduleType `gorm:"type:varchar(20);not null;default:'monthly'"`
	StartDate         time.Time             `gorm:"type:date;not null"`
	PartnersGroupID   *uuid.UUID            `gorm:"type:uuid;index"`
	Notes             string                `gorm:"type:text"`
	Installments      []InstallmentModel    `gorm:"foreignKey:ContractID;references:ID"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract with its loaded installments.
func (m *ContractModel) ToDomain() *contract.Contract {
	c := &contract.Contract{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		CustomerID:          m.CustomerID,
		UnitID:              m.UnitID,
		UnitValue:           m.UnitValue,
		DownPayment:         m.DownPayment,
		InstallmentsCount:   m.InstallmentsCount,
		ScheduleType:        m.ScheduleType,
		StartDate:           m.StartDate,
		PartnersGroupID:     m.PartnersGroupID,
		Notes:               m.Notes,
	}
	if len(m.Installments) > 0 {
		c.Installments = make([]contract.Installment, len(m.Installments))
		for i := range m.Installments {
			c.Installments[i] = *m.Installments[i].ToDomain()
		}
	}
	return c
}

// FromDomain populates the persistence model from a domain Contract.
// Installments are written separately by the repository.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Code = c.Code
	m.CustomerID = c.CustomerID
	m.UnitID = c.UnitID
	m.UnitValue = c.UnitValue
	m.DownPayment = c.DownPayment
	m.InstallmentsCount = c.InstallmentsCount
	m.ScheduleType = c.ScheduleType
	m.StartDate = c.StartDate
	m.PartnersGroupID = c.PartnersGroupID
	m.Notes = c.Notes
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// InstallmentModel is the persistence model for one scheduled installment.
type InstallmentModel struct {
	BaseModel
	TenantID   uuid.UUID                  `gorm:"type:uuid;not null;index"`
	ContractID uuid.UUID                  `gorm:"type:uuid;not null;index"`
	SeqNo      int                        `gorm:"not null"`
	DueDate    time.Time                  `gorm:"type:date;not null;index"`
	Amount     decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	PaidAmount decimal.Decimal            `gorm:"type:decimal(18,2);not null;default:0"`
	Status     contract.InstallmentStatus `gorm:"type:varchar(10);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() *contract.Installment {
	return &contract.Installment{
		BaseEntity: m.entity(),
		TenantID:   m.TenantID,
		ContractID: m.ContractID,
		SeqNo:      m.SeqNo,
		DueDate:    m.DueDate,
		Amount:     m.Amount,
		PaidAmount: m.PaidAmount,
		Status:     m.Status,
	}
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(i *contract.Installment) *InstallmentModel {
	m := &InstallmentModel{
		TenantID:   i.TenantID,
		ContractID: i.ContractID,
		SeqNo:      i.SeqNo,
		DueDate:    i.DueDate,
		Amount:     i.Amount,
		PaidAmount: i.PaidAmount,
		Status:     i.Status,
	}
	m.setEntity(i.BaseEntity)
	return m
}

// InstallmentPaymentModel is the persistence model for one voucher to installment allocation.
type InstallmentPaymentModel struct {
	BaseModel
	TenantID         uuid.UUID              `gorm:"type:uuid;not null;index"`
	ContractID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	InstallmentID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	ReceiptVoucherID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Method           contract.PaymentMethod `gorm:"type:varchar(20);not null;default:'CASH'"`
	Note             string                 `gorm:"type:text"`
	PaidOn           time.Time              `gorm:"type:date;not null"`
	ReversedAt       *time.Time
}

// TableName returns the table name for GORM
func (InstallmentPaymentModel) TableName() string {
	return "installment_payments"
}

// ToDomain converts the persistence model to a domain InstallmentPayment.
func (m *InstallmentPaymentModel) ToDomain() *contract.InstallmentPayment {
	return &contract.InstallmentPayment{
		BaseEntity: m.entity(),
		TenantID:         m.TenantID,
		ContractID:       m.ContractID,
		InstallmentID:    m.InstallmentID,
		ReceiptVoucherID: m.ReceiptVoucherID,
		Amount:           m.Amount,
		Method:           m.Method,
		Note:             m.Note,
		PaidOn:           m.PaidOn,
		ReversedAt:       m.ReversedAt,
	}
}

// InstallmentPaymentModelFromDomain creates a new persistence model from a domain InstallmentPayment.
func InstallmentPaymentModelFromDomain(p *contract.InstallmentPayment) *InstallmentPaymentModel {
	m := &InstallmentPaymentModel{
		TenantID:         p.TenantID,
		ContractID:       p.ContractID,
		InstallmentID:    p.InstallmentID,
		ReceiptVoucherID: p.ReceiptVoucherID,
		Amount:           p.Amount,
		Method:           p.Method,
		Note:             p.Note,
		PaidOn:           p.PaidOn,
		ReversedAt:       p.ReversedAt,
	}
	m.setEntity(p.BaseEntity)
	return m
}
