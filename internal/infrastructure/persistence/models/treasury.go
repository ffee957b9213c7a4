package models

import (
	"time"

	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SafeModel is the persistence model for the Safe domain entity.
type SafeModel struct {
	TenantAggregateModel
	Name            string     `gorm:"type:varchar(100);not null"`
	IsPartnerWallet bool       `gorm:"not null;default:false"`
	PartnerID       *uuid.UUID `gorm:"type:uuid;index"`
	Description     string     `gorm:"type:text"`
	IsActive        bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SafeModel) TableName() string {
	return "safes"
}

// ToDomain converts the persistence model to a domain Safe entity.
func (m *SafeModel) ToDomain() *treasury.Safe {
	return &treasury.Safe{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		IsPartnerWallet:     m.IsPartnerWallet,
		PartnerID:           m.PartnerID,
		Description:         m.Description,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Safe entity.
func (m *SafeModel) FromDomain(s *treasury.Safe) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.Name = s.Name
	m.IsPartnerWallet = s.IsPartnerWallet
	m.PartnerID = s.PartnerID
	m.Description = s.Description
	m.IsActive = s.IsActive
}

// SafeModelFromDomain creates a new persistence model from a domain Safe entity.
func SafeModelFromDomain(s *treasury.Safe) *SafeModel {
	m := &SafeModel{}
	m.FromDomain(s)
	return m
}

// VoucherColumns are the columns shared by receipt and payment vouchers.
type VoucherColumns struct {
	TenantAggregateModel
	Number       string                 `gorm:"type:varchar(20);not null;index"`
	Date         time.Time              `gorm:"type:date;not null;index"`
	Amount       decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	SafeID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	PartnerID    *uuid.UUID             `gorm:"type:uuid;index"`
	Description  string                 `gorm:"type:text"`
	Source       treasury.VoucherSource `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	SourceID     *uuid.UUID             `gorm:"type:uuid;index"`
	IsCancelled  bool                   `gorm:"not null;default:false;index"`
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

func (m *VoucherColumns) toDomain() treasury.Voucher {
	return treasury.Voucher{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              m.Number,
		Date:                m.Date,
		Amount:              m.Amount,
		SafeID:              m.SafeID,
		PartnerID:           m.PartnerID,
		Description:         m.Description,
		Source:              m.Source,
		SourceID:            m.SourceID,
		IsCancelled:         m.IsCancelled,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

func (m *VoucherColumns) fromDomain(v *treasury.Voucher) {
	m.FromDomainTenantAggregateRoot(v.TenantAggregateRoot)
	m.Number = v.Number
	m.Date = v.Date
	m.Amount = v.Amount
	m.SafeID = v.SafeID
	m.PartnerID = v.PartnerID
	m.Description = v.Description
	m.Source = v.Source
	m.SourceID = v.SourceID
	m.IsCancelled = v.IsCancelled
	m.CancelledAt = v.CancelledAt
	m.CancelReason = v.CancelReason
}

// ReceiptVoucherModel is the persistence model for the ReceiptVoucher aggregate.
type ReceiptVoucherModel struct {
	VoucherColumns
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	ContractID    *uuid.UUID `gorm:"type:uuid;index"`
	InstallmentID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReceiptVoucherModel) TableName() string {
	return "receipt_vouchers"
}

// ToDomain converts the persistence model to a domain ReceiptVoucher.
func (m *ReceiptVoucherModel) ToDomain() *treasury.ReceiptVoucher {
	return &treasury.ReceiptVoucher{
		Voucher:       m.toDomain(),
		CustomerID:    m.CustomerID,
		ContractID:    m.ContractID,
		InstallmentID: m.InstallmentID,
	}
}

// FromDomain populates the persistence model from a domain ReceiptVoucher.
func (m *ReceiptVoucherModel) FromDomain(rv *treasury.ReceiptVoucher) {
	m.fromDomain(&rv.Voucher)
	m.CustomerID = rv.CustomerID
	m.ContractID = rv.ContractID
	m.InstallmentID = rv.InstallmentID
}

// ReceiptVoucherModelFromDomain creates a new persistence model from a domain ReceiptVoucher.
func ReceiptVoucherModelFromDomain(rv *treasury.ReceiptVoucher) *ReceiptVoucherModel {
	m := &ReceiptVoucherModel{}
	m.FromDomain(rv)
	return m
}

// PaymentVoucherModel is the persistence model for the PaymentVoucher aggregate.
type PaymentVoucherModel struct {
	VoucherColumns
	SupplierID  *uuid.UUID `gorm:"type:uuid;index"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index"`
	ExpenseHead string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentVoucherModel) TableName() string {
	return "payment_vouchers"
}

// ToDomain converts the persistence model to a domain PaymentVoucher.
func (m *PaymentVoucherModel) ToDomain() *treasury.PaymentVoucher {
	return &treasury.PaymentVoucher{
		Voucher:     m.toDomain(),
		SupplierID:  m.SupplierID,
		ProjectID:   m.ProjectID,
		ExpenseHead: m.ExpenseHead,
	}
}

// FromDomain populates the persistence model from a domain PaymentVoucher.
func (m *PaymentVoucherModel) FromDomain(pv *treasury.PaymentVoucher) {
	m.fromDomain(&pv.Voucher)
	m.SupplierID = pv.SupplierID
	m.ProjectID = pv.ProjectID
	m.ExpenseHead = pv.ExpenseHead
}

// PaymentVoucherModelFromDomain creates a new persistence model from a domain PaymentVoucher.
func PaymentVoucherModelFromDomain(pv *treasury.PaymentVoucher) *PaymentVoucherModel {
	m := &PaymentVoucherModel{}
	m.FromDomain(pv)
	return m
}

// VoucherSequenceModel holds the last number handed out per tenant and key.
type VoucherSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key       string    `gorm:"column:seq_key;type:varchar(10);primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VoucherSequenceModel) TableName() string {
	return "voucher_sequences"
}
