package inventory

import (
	"context"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the sense of a stock move
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// IsValid checks if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

var minMoveQty = decimal.RequireFromString("0.01")

// StockMove is an immutable receipt into or issue out of stock
type StockMove struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	ItemID    uuid.UUID
	ProjectID *uuid.UUID
	Qty       decimal.Decimal
	Direction Direction
	Date      time.Time
	Notes     string
	CreatedBy *uuid.UUID
}

// NewStockMove creates a move. An OUT move must not take the balance below zero.
func NewStockMove(tenantID uuid.UUID, item *Item, projectID *uuid.UUID, qty decimal.Decimal, dir Direction, date time.Time, notes string, balance decimal.Decimal) (*StockMove, error) {
	if item == nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item is required")
	}
	if !dir.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Direction must be IN or OUT")
	}
	if qty.LessThan(minMoveQty) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 0.01")
	}
	if !qty.Equal(qty.Round(2)) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot have more than two decimal places")
	}
	if dir == DirectionOut && qty.GreaterThan(balance) {
		return nil, shared.NewDomainErrorf("INSUFFICIENT_STOCK",
			"Insufficient stock for %s: available %s, requested %s", item.Name, balance.String(), qty.String())
	}
	return &StockMove{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ItemID:     item.ID,
		ProjectID:  projectID,
		Qty:        qty,
		Direction:  dir,
		Date:       shared.DateOf(date),
		Notes:      notes,
	}, nil
}

// SignedQty returns qty for IN and -qty for OUT
func (m *StockMove) SignedQty() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Qty.Neg()
	}
	return m.Qty
}

// Value prices the move at the item's unit price
func (m *StockMove) Value(item *Item) valueobject.Money {
	return item.ValueOf(m.Qty)
}

// StockMoveFilter defines filtering options for stock move queries
type StockMoveFilter struct {
	shared.Filter
	ItemID    *uuid.UUID
	ProjectID *uuid.UUID
	Direction *Direction
	From      *time.Time
	To        *time.Time
}

// ItemRepository defines persistence for items
type ItemRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	// FindByIDForUpdate locks the item row so concurrent issues serialize on it
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Item, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockMoveRepository defines persistence for stock moves
type StockMoveRepository interface {
	Save(ctx context.Context, move *StockMove) error
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter StockMoveFilter) ([]StockMove, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter StockMoveFilter) (int64, error)
	CountByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
	// SumQty returns the IN and OUT totals for an item
	SumQty(ctx context.Context, tenantID, itemID uuid.UUID) (in, out decimal.Decimal, err error)
	// MaterialsCost values OUT moves charged to a project at item unit price
	MaterialsCost(ctx context.Context, tenantID, projectID uuid.UUID) (valueobject.Money, error)
}
