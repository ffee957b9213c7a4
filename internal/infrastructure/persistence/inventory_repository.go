package persistence

import (
	"context"

	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormItemRepository stores inventory items
type GormItemRepository struct {
	rows tenantRows[models.ItemModel, inventory.Item, *models.ItemModel]
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{
		rows: newTenantRows[models.ItemModel, inventory.Item, *models.ItemModel](
			db, models.ItemModelFromDomain, CodeNameSortFields, "name ASC"),
	}
}

func (r *GormItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	return r.rows.get(ctx, tenantID, id)
}

// FindByIDForUpdate locks the item row so concurrent issues serialize on it
func (r *GormItemRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	return r.rows.getForUpdate(ctx, tenantID, id)
}

func (r *GormItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Item, error) {
	return r.rows.list(ctx, tenantID, filter, itemFilter(filter))
}

func (r *GormItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	return r.rows.count(ctx, tenantID, itemFilter(filter))
}

func (r *GormItemRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return r.rows.codeTaken(ctx, tenantID, code)
}

func (r *GormItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return r.rows.save(ctx, item)
}

func (r *GormItemRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.rows.remove(ctx, tenantID, id)
}

func itemFilter(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = applySearch(q, filter.Search, "name", "code")
		if v, ok := filter.Filters["supplier_id"]; ok {
			q = q.Where("supplier_id = ?", v)
		}
		return q
	}
}

// GormStockMoveRepository implements StockMoveRepository using GORM
type GormStockMoveRepository struct {
	db *gorm.DB
}

// NewGormStockMoveRepository creates a new GormStockMoveRepository
func NewGormStockMoveRepository(db *gorm.DB) *GormStockMoveRepository {
	return &GormStockMoveRepository{db: db}
}

// Save records a stock move
func (r *GormStockMoveRepository) Save(ctx context.Context, move *inventory.StockMove) error {
	return r.db.WithContext(ctx).Save(models.StockMoveModelFromDomain(move)).Error
}

// FindAllForTenant lists stock moves matching the filter
func (r *GormStockMoveRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter inventory.StockMoveFilter) ([]inventory.StockMove, error) {
	var moveModels []models.StockMoveModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StockMoveModel{}).Where("tenant_id = ?", tenantID), filter)
	query = applyPagination(applyOrder(query, filter.Filter, StockMoveSortFields, "date DESC, created_at DESC"), filter.Filter)
	if err := query.Find(&moveModels).Error; err != nil {
		return nil, err
	}

	moves := make([]inventory.StockMove, len(moveModels))
	for i, model := range moveModels {
		moves[i] = *model.ToDomain()
	}
	return moves, nil
}

// CountForTenant counts stock moves matching the filter
func (r *GormStockMoveRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter inventory.StockMoveFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StockMoveModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByItem counts the moves of an item
func (r *GormStockMoveRepository) CountByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StockMoveModel{}).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQty returns the IN and OUT totals for an item
func (r *GormStockMoveRepository) SumQty(ctx context.Context, tenantID, itemID uuid.UUID) (in, out decimal.Decimal, err error) {
	row := r.db.WithContext(ctx).Model(&models.StockMoveModel{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN qty ELSE 0 END), 0), "+
			"COALESCE(SUM(CASE WHEN direction = ? THEN qty ELSE 0 END), 0)",
			inventory.DirectionIn, inventory.DirectionOut).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Row()
	if err = row.Scan(&in, &out); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return in, out, nil
}

// MaterialsCost values OUT moves charged to a project at the item's current unit price
func (r *GormStockMoveRepository) MaterialsCost(ctx context.Context, tenantID, projectID uuid.UUID) (valueobject.Money, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Model(&models.StockMoveModel{}).
		Select("COALESCE(SUM(stock_moves.qty * items.unit_price), 0)").
		Joins("JOIN items ON items.id = stock_moves.item_id").
		Where("stock_moves.tenant_id = ? AND stock_moves.project_id = ? AND stock_moves.direction = ?",
			tenantID, projectID, inventory.DirectionOut).
		Row()
	if err := row.Scan(&total); err != nil {
		return valueobject.Zero(), err
	}
	return valueobject.NewMoney(total.Round(2)), nil
}

func (r *GormStockMoveRepository) applyFilter(query *gorm.DB, filter inventory.StockMoveFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "notes")
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	return query
}

// Ensure repositories implement their interfaces
var (
	_ inventory.ItemRepository      = (*GormItemRepository)(nil)
	_ inventory.StockMoveRepository = (*GormStockMoveRepository)(nil)
)
