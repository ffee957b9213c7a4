package inventory

import (
	"strings"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a stock-keeping material consumed by projects
type Item struct {
	shared.TenantAggregateRoot
	Code         string
	Name         string
	UOM          string
	UnitPrice    decimal.Decimal
	MinimumStock decimal.Decimal
	SupplierID   *uuid.UUID
	Notes        string
}

// ItemDetails are the editable item fields
type ItemDetails struct {
	Name         string
	UOM          string
	UnitPrice    valueobject.Money
	MinimumStock decimal.Decimal
	SupplierID   *uuid.UUID
	Notes        string
}

func (d ItemDetails) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if strings.TrimSpace(d.UOM) == "" {
		return shared.NewDomainError("INVALID_UOM", "Unit of measure cannot be empty")
	}
	if d.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if d.MinimumStock.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum stock cannot be negative")
	}
	return nil
}

// NewItem creates an item
func NewItem(tenantID uuid.UUID, code string, d ItemDetails) (*Item, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Item code cannot be empty")
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	item := &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.TrimSpace(code),
	}
	item.apply(d)
	return item, nil
}

func (i *Item) apply(d ItemDetails) {
	i.Name = strings.TrimSpace(d.Name)
	i.UOM = strings.TrimSpace(d.UOM)
	i.UnitPrice = d.UnitPrice.Rounded().Amount()
	i.MinimumStock = d.MinimumStock
	i.SupplierID = d.SupplierID
	i.Notes = d.Notes
}

// Update replaces the editable fields
func (i *Item) Update(d ItemDetails) error {
	if err := d.validate(); err != nil {
		return err
	}
	i.apply(d)
	i.Touch()
	i.IncrementVersion()
	return nil
}

// ValueOf prices a quantity of this item
func (i *Item) ValueOf(qty decimal.Decimal) valueobject.Money {
	return valueobject.NewMoney(qty.Mul(i.UnitPrice)).Rounded()
}

// StockLevel is an item's perpetual balance
type StockLevel struct {
	ItemID       uuid.UUID         `json:"item_id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	UOM          string            `json:"uom"`
	InQty        decimal.Decimal   `json:"in_qty"`
	OutQty       decimal.Decimal   `json:"out_qty"`
	Balance      decimal.Decimal   `json:"balance"`
	MinimumStock decimal.Decimal   `json:"minimum_stock"`
	Value        valueobject.Money `json:"value"`
	IsLow        bool              `json:"is_low"`
}

// Level builds the stock level from the summed movements
func (i *Item) Level(inQty, outQty decimal.Decimal) StockLevel {
	balance := inQty.Sub(outQty)
	return StockLevel{
		ItemID:       i.ID,
		Code:         i.Code,
		Name:         i.Name,
		UOM:          i.UOM,
		InQty:        inQty,
		OutQty:       outQty,
		Balance:      balance,
		MinimumStock: i.MinimumStock,
		Value:        i.ValueOf(balance),
		IsLow:        balance.LessThanOrEqual(i.MinimumStock),
	}
}

// StockPercent is the balance as a percentage of the minimum, zero when no minimum is set
func (l StockLevel) StockPercent() decimal.Decimal {
	if !l.MinimumStock.IsPositive() {
		return decimal.Zero
	}
	return l.Balance.Mul(decimal.NewFromInt(100)).DivRound(l.MinimumStock, 2)
}
