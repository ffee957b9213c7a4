package inventory

import (
	"time"

	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to create a stock item
type CreateItemRequest struct {
	Code         string          `json:"code" binding:"required,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	UOM          string          `json:"uom" binding:"required,max=20"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	MinimumStock decimal.Decimal `json:"minimum_stock" binding:"decimal_gte0"`
	SupplierID   *uuid.UUID      `json:"supplier_id"`
	Notes        string          `json:"notes"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// UpdateItemRequest represents a request to update a stock item
type UpdateItemRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	UOM          string          `json:"uom" binding:"required,max=20"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	MinimumStock decimal.Decimal `json:"minimum_stock" binding:"decimal_gte0"`
	SupplierID   *uuid.UUID      `json:"supplier_id"`
	Notes        string          `json:"notes"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID           uuid.UUID         `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	UOM          string            `json:"uom"`
	UnitPrice    valueobject.Money `json:"unit_price"`
	MinimumStock decimal.Decimal   `json:"minimum_stock"`
	SupplierID   *uuid.UUID        `json:"supplier_id,omitempty"`
	Notes        string            `json:"notes"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ToItemResponse converts a domain item to a response
func ToItemResponse(i *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		Code:         i.Code,
		Name:         i.Name,
		UOM:          i.UOM,
		UnitPrice:    valueobject.NewMoney(i.UnitPrice),
		MinimumStock: i.MinimumStock,
		SupplierID:   i.SupplierID,
		Notes:        i.Notes,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

// RecordMoveRequest represents a receipt into or an issue out of stock
type RecordMoveRequest struct {
	ItemID    uuid.UUID       `json:"item_id" binding:"required"`
	ProjectID *uuid.UUID      `json:"project_id"`
	Qty       decimal.Decimal `json:"qty" binding:"decimal_gt0"`
	Direction string          `json:"direction" binding:"required,oneof=IN OUT"`
	Date      string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Notes     string          `json:"notes"`
	CreatedBy *uuid.UUID      `json:"-"`
}

// StockMoveResponse represents a stock move in API responses
type StockMoveResponse struct {
	ID        uuid.UUID           `json:"id"`
	ItemID    uuid.UUID           `json:"item_id"`
	ProjectID *uuid.UUID          `json:"project_id,omitempty"`
	Qty       decimal.Decimal     `json:"qty"`
	Direction inventory.Direction `json:"direction"`
	Date      time.Time           `json:"date"`
	Notes     string              `json:"notes"`
	CreatedAt time.Time           `json:"created_at"`
}

// ToStockMoveResponse converts a stock move to a response
func ToStockMoveResponse(m *inventory.StockMove) StockMoveResponse {
	return StockMoveResponse{
		ID:        m.ID,
		ItemID:    m.ItemID,
		ProjectID: m.ProjectID,
		Qty:       m.Qty,
		Direction: m.Direction,
		Date:      m.Date,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}

// RecordMoveResponse is a recorded move with the item's new level
type RecordMoveResponse struct {
	Move  StockMoveResponse    `json:"move"`
	Level inventory.StockLevel `json:"level"`
}
