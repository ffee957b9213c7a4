package models

import (
	"github.com/erp/realestate/internal/domain/party"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	TenantAggregateModel
	Code       string `gorm:"type:varchar(50);not null;index"`
	Name       string `gorm:"type:varchar(200);not null"`
	Phone      string `gorm:"type:varchar(50);index"`
	Email      string `gorm:"type:varchar(200)"`
	Address    string `gorm:"type:text"`
	NationalID string `gorm:"type:varchar(50)"`
	Notes      string `gorm:"type:text"`
	IsActive   bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *party.Customer {
	return &party.Customer{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Phone:               m.Phone,
		Email:               m.Email,
		Address:             m.Address,
		NationalID:          m.NationalID,
		Notes:               m.Notes,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *party.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Phone = c.Phone
	m.Email = c.Email
	m.Address = c.Address
	m.NationalID = c.NationalID
	m.Notes = c.Notes
	m.IsActive = c.IsActive
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *party.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	TenantAggregateModel
	Code     string `gorm:"type:varchar(50);not null;index"`
	Name     string `gorm:"type:varchar(200);not null"`
	Phone    string `gorm:"type:varchar(50)"`
	Address  string `gorm:"type:text"`
	Notes    string `gorm:"type:text"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *party.Supplier {
	return &party.Supplier{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Phone:               m.Phone,
		Address:             m.Address,
		Notes:               m.Notes,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *party.Supplier) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.Code = s.Code
	m.Name = s.Name
	m.Phone = s.Phone
	m.Address = s.Address
	m.Notes = s.Notes
	m.IsActive = s.IsActive
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *party.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
