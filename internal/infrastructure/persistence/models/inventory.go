package models

import (
	"time"

	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for the stock Item domain entity.
type ItemModel struct {
	TenantAggregateModel
	Code         string          `gorm:"type:varchar(50);not null;index"`
	Name         string          `gorm:"type:varchar(200);not null"`
	UOM          string          `gorm:"column:uom;type:varchar(20);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MinimumStock decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SupplierID   *uuid.UUID      `gorm:"type:uuid;index"`
	Notes        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *ItemModel) ToDomain() *inventory.Item {
	return &inventory.Item{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		UOM:                 m.UOM,
		UnitPrice:           m.UnitPrice,
		MinimumStock:        m.MinimumStock,
		SupplierID:          m.SupplierID,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *ItemModel) FromDomain(i *inventory.Item) {
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	m.Code = i.Code
	m.Name = i.Name
	m.UOM = i.UOM
	m.UnitPrice = i.UnitPrice
	m.MinimumStock = i.MinimumStock
	m.SupplierID = i.SupplierID
	m.Notes = i.Notes
}

// ItemModelFromDomain creates a new persistence model from a domain Item entity.
func ItemModelFromDomain(i *inventory.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

// StockMoveModel is the persistence model for an item movement.
type StockMoveModel struct {
	BaseModel
	TenantID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProjectID *uuid.UUID          `gorm:"type:uuid;index"`
	Qty       decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Direction inventory.Direction `gorm:"type:varchar(3);not null"`
	Date      time.Time           `gorm:"type:date;not null;index"`
	Notes     string              `gorm:"type:text"`
	CreatedBy *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMoveModel) TableName() string {
	return "stock_moves"
}

// ToDomain converts the persistence model to a domain StockMove.
func (m *StockMoveModel) ToDomain() *inventory.StockMove {
	return &inventory.StockMove{
		BaseEntity: m.entity(),
		TenantID:  m.TenantID,
		ItemID:    m.ItemID,
		ProjectID: m.ProjectID,
		Qty:       m.Qty,
		Direction: m.Direction,
		Date:      m.Date,
		Notes:     m.Notes,
		CreatedBy: m.CreatedBy,
	}
}

// StockMoveModelFromDomain creates a new persistence model from a domain StockMove.
func StockMoveModelFromDomain(s *inventory.StockMove) *StockMoveModel {
	m := &StockMoveModel{
		TenantID:  s.TenantID,
		ItemID:    s.ItemID,
		ProjectID: s.ProjectID,
		Qty:       s.Qty,
		Direction: s.Direction,
		Date:      s.Date,
		Notes:     s.Notes,
		CreatedBy: s.CreatedBy,
	}
	m.setEntity(s.BaseEntity)
	return m
}
