package models

import (
	"encoding/json"
	"time"

	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementModel is the persistence model for the Settlement aggregate.
type SettlementModel struct {
	TenantAggregateModel
	Number           string            `gorm:"type:varchar(20);not null;index"`
	RunID            *uuid.UUID        `gorm:"type:uuid;index"`
	FromPartnerID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ToPartnerID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Status           settlement.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	PartnersGroupID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProjectID        *uuid.UUID        `gorm:"type:uuid;index"`
	PeriodFrom       *time.Time        `gorm:"type:date"`
	PeriodTo         *time.Time        `gorm:"type:date"`
	SettlementDate   time.Time         `gorm:"type:date;not null"`
	Notes            string            `gorm:"type:text"`
	PaymentVoucherID *uuid.UUID        `gorm:"type:uuid"`
	ReceiptVoucherID *uuid.UUID        `gorm:"type:uuid"`
	ExecutedAt       *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts the persistence model to a domain Settlement.
func (m *SettlementModel) ToDomain() *settlement.Settlement {
	return &settlement.Settlement{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              m.Number,
		RunID:               m.RunID,
		FromPartnerID:       m.FromPartnerID,
		ToPartnerID:         m.ToPartnerID,
		Amount:              m.Amount,
		Status:              m.Status,
		PartnersGroupID:     m.PartnersGroupID,
		ProjectID:           m.ProjectID,
		PeriodFrom:          m.PeriodFrom,
		PeriodTo:            m.PeriodTo,
		SettlementDate:      m.SettlementDate,
		Notes:               m.Notes,
		PaymentVoucherID:    m.PaymentVoucherID,
		ReceiptVoucherID:    m.ReceiptVoucherID,
		ExecutedAt:          m.ExecutedAt,
		CancelledAt:         m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain Settlement.
func (m *SettlementModel) FromDomain(s *settlement.Settlement) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.Number = s.Number
	m.RunID = s.RunID
	m.FromPartnerID = s.FromPartnerID
	m.ToPartnerID = s.ToPartnerID
	m.Amount = s.Amount
	m.Status = s.Status
	m.PartnersGroupID = s.PartnersGroupID
	m.ProjectID = s.ProjectID
	m.PeriodFrom = s.PeriodFrom
	m.PeriodTo = s.PeriodTo
	m.SettlementDate = s.SettlementDate
	m.Notes = s.Notes
	m.PaymentVoucherID = s.PaymentVoucherID
	m.ReceiptVoucherID = s.ReceiptVoucherID
	m.ExecutedAt = s.ExecutedAt
	m.CancelledAt = s.CancelledAt
}

// SettlementModelFromDomain creates a new persistence model from a domain Settlement.
func SettlementModelFromDomain(s *settlement.Settlement) *SettlementModel {
	m := &SettlementModel{}
	m.FromDomain(s)
	return m
}

// SettlementRunModel is the persistence model for a settlement calculation snapshot.
// Balances and transfer details are stored as JSON documents.
type SettlementRunModel struct {
	TenantAggregateModel
	PartnersGroupID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID        *uuid.UUID      `gorm:"type:uuid;index"`
	PeriodFrom       *time.Time      `gorm:"type:date"`
	PeriodTo         *time.Time      `gorm:"type:date"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PreBalancesJSON  string          `gorm:"column:pre_balances;type:jsonb;default:'[]'"`
	PostBalancesJSON string          `gorm:"column:post_balances;type:jsonb;default:'[]'"`
	DetailsJSON      string          `gorm:"column:details;type:jsonb;default:'[]'"`
	Notes            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SettlementRunModel) TableName() string {
	return "settlement_runs"
}

// ToDomain converts the persistence model to a domain Run.
// Malformed JSON columns are logged and read back as empty lists.
func (m *SettlementRunModel) ToDomain() *settlement.Run {
	run := &settlement.Run{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		PartnersGroupID:     m.PartnersGroupID,
		ProjectID:           m.ProjectID,
		PeriodFrom:          m.PeriodFrom,
		PeriodTo:            m.PeriodTo,
		Total:               m.Total,
		Notes:               m.Notes,
	}
	decodeJSONColumn(m.ID, "pre_balances", m.PreBalancesJSON, &run.PreBalances)
	decodeJSONColumn(m.ID, "post_balances", m.PostBalancesJSON, &run.PostBalances)
	decodeJSONColumn(m.ID, "details", m.DetailsJSON, &run.Details)
	return run
}

// SettlementRunModelFromDomain creates a new persistence model from a domain Run.
func SettlementRunModelFromDomain(r *settlement.Run) (*SettlementRunModel, error) {
	m := &SettlementRunModel{
		PartnersGroupID: r.PartnersGroupID,
		ProjectID:       r.ProjectID,
		PeriodFrom:      r.PeriodFrom,
		PeriodTo:        r.PeriodTo,
		Total:           r.Total,
		Notes:           r.Notes,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)

	var err error
	if m.PreBalancesJSON, err = encodeJSONColumn(r.PreBalances); err != nil {
		return nil, err
	}
	if m.PostBalancesJSON, err = encodeJSONColumn(r.PostBalances); err != nil {
		return nil, err
	}
	if m.DetailsJSON, err = encodeJSONColumn(r.Details); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeJSONColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

func decodeJSONColumn(id uuid.UUID, column, raw string, target any) {
	if raw == "" || raw == "[]" {
		return
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		zap.L().Warn("failed to parse JSON column",
			zap.String("table", "settlement_runs"),
			zap.String("column", column),
			zap.String("id", id.String()),
			zap.Error(err),
		)
	}
}
