package models

import (
	"time"

	"github.com/erp/realestate/internal/domain/equity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerModel is the persistence model for the Partner domain entity.
type PartnerModel struct {
	TenantAggregateModel
	Code           string          `gorm:"type:varchar(50);not null;index"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Phone          string          `gorm:"type:varchar(50)"`
	SharePercent   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes          string          `gorm:"type:text"`
	IsActive       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the persistence model to a domain Partner entity.
func (m *PartnerModel) ToDomain() *equity.Partner {
	return &equity.Partner{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Phone:               m.Phone,
		SharePercent:        m.SharePercent,
		OpeningBalance:      m.OpeningBalance,
		Notes:               m.Notes,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Partner entity.
func (m *PartnerModel) FromDomain(p *equity.Partner) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Phone = p.Phone
	m.SharePercent = p.SharePercent
	m.OpeningBalance = p.OpeningBalance
	m.Notes = p.Notes
	m.IsActive = p.IsActive
}

// PartnerModelFromDomain creates a new persistence model from a domain Partner entity.
func PartnerModelFromDomain(p *equity.Partner) *PartnerModel {
	m := &PartnerModel{}
	m.FromDomain(p)
	return m
}

// PartnersGroupModel is the persistence model for the PartnersGroup aggregate.
type PartnersGroupModel struct {
	TenantAggregateModel
	Name        string                     `gorm:"type:varchar(200);not null"`
	Description string                     `gorm:"type:text"`
	Status      equity.GroupStatus         `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Members     []PartnersGroupMemberModel `gorm:"foreignKey:GroupID;references:ID"`
	FinalizedAt *time.Time
}

// TableName returns the table name for GORM
func (PartnersGroupModel) TableName() string {
	return "partners_groups"
}

// ToDomain converts the persistence model to a domain PartnersGroup with its loaded members.
func (m *PartnersGroupModel) ToDomain() *equity.PartnersGroup {
	g := &equity.PartnersGroup{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Description:         m.Description,
		Status:              m.Status,
		FinalizedAt:         m.FinalizedAt,
	}
	if len(m.Members) > 0 {
		g.Members = make([]equity.Member, len(m.Members))
		for i, mm := range m.Members {
			g.Members[i] = equity.Member{PartnerID: mm.PartnerID, Percent: mm.Percent}
		}
	}
	return g
}

// FromDomain populates the persistence model from a domain PartnersGroup.
// Members are written separately by the repository.
func (m *PartnersGroupModel) FromDomain(g *equity.PartnersGroup) {
	m.FromDomainTenantAggregateRoot(g.TenantAggregateRoot)
	m.Name = g.Name
	m.Description = g.Description
	m.Status = g.Status
	m.FinalizedAt = g.FinalizedAt
}

// PartnersGroupModelFromDomain creates a new persistence model from a domain PartnersGroup.
func PartnersGroupModelFromDomain(g *equity.PartnersGroup) *PartnersGroupModel {
	m := &PartnersGroupModel{}
	m.FromDomain(g)
	return m
}

// PartnersGroupMemberModel is one partner's percentage within a group.
type PartnersGroupMemberModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	GroupID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_group_member,priority:1"`
	PartnerID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_group_member,priority:2;index"`
	Percent   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PartnersGroupMemberModel) TableName() string {
	return "partners_group_members"
}

// ShareEntryModel is the persistence model for a share ledger line.
type ShareEntryModel struct {
	BaseModel
	TenantID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	PartnerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	GroupID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	ContractID       *uuid.UUID            `gorm:"type:uuid;index"`
	ReceiptVoucherID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Kind             equity.ShareEntryKind `gorm:"type:varchar(20);not null"`
	Percent          decimal.Decimal       `gorm:"type:decimal(5,2);not null"`
	Amount           decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	EntryDate        time.Time             `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (ShareEntryModel) TableName() string {
	return "share_entries"
}

// ToDomain converts the persistence model to a domain ShareEntry.
func (m *ShareEntryModel) ToDomain() *equity.ShareEntry {
	return &equity.ShareEntry{
		BaseEntity: m.entity(),
		TenantID:         m.TenantID,
		PartnerID:        m.PartnerID,
		GroupID:          m.GroupID,
		ContractID:       m.ContractID,
		ReceiptVoucherID: m.ReceiptVoucherID,
		Kind:             m.Kind,
		Percent:          m.Percent,
		Amount:           m.Amount,
		EntryDate:        m.EntryDate,
	}
}

// ShareEntryModelFromDomain creates a new persistence model from a domain ShareEntry.
func ShareEntryModelFromDomain(e *equity.ShareEntry) *ShareEntryModel {
	m := &ShareEntryModel{
		TenantID:         e.TenantID,
		PartnerID:        e.PartnerID,
		GroupID:          e.GroupID,
		ContractID:       e.ContractID,
		ReceiptVoucherID: e.ReceiptVoucherID,
		Kind:             e.Kind,
		Percent:          e.Percent,
		Amount:           e.Amount,
		EntryDate:        e.EntryDate,
	}
	m.setEntity(e.BaseEntity)
	return m
}
