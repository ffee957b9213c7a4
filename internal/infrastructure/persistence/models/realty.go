package models

import (
	"github.com/erp/realestate/internal/domain/realty"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitModel is the persistence model for the Unit domain entity.
type UnitModel struct {
	TenantAggregateModel
	Code            string           `gorm:"type:varchar(50);not null;index"`
	Name            string           `gorm:"type:varchar(200);not null"`
	BuildingNo      string           `gorm:"type:varchar(50)"`
	UnitType        realty.UnitType  `gorm:"type:varchar(20);not null;default:'residential'"`
	PriceTotal      decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Group           realty.UnitGroup `gorm:"column:unit_group;type:varchar(20);not null;default:'res'"`
	PartnersGroupID *uuid.UUID       `gorm:"type:uuid;index"`
	IsSold          bool             `gorm:"not null;default:false;index"`
	Notes           string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() *realty.Unit {
	return &realty.Unit{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		BuildingNo:          m.BuildingNo,
		UnitType:            m.UnitType,
		PriceTotal:          m.PriceTotal,
		Group:               m.Group,
		PartnersGroupID:     m.PartnersGroupID,
		IsSold:              m.IsSold,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Unit entity.
func (m *UnitModel) FromDomain(u *realty.Unit) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Code = u.Code
	m.Name = u.Name
	m.BuildingNo = u.BuildingNo
	m.UnitType = u.UnitType
	m.PriceTotal = u.PriceTotal
	m.Group = u.Group
	m.PartnersGroupID = u.PartnersGroupID
	m.IsSold = u.IsSold
	m.Notes = u.Notes
}

// UnitModelFromDomain creates a new persistence model from a domain Unit entity.
func UnitModelFromDomain(u *realty.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}
