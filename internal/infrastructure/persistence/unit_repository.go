package persistence

import (
	"context"

	"github.com/erp/realestate/internal/domain/realty"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUnitRepository stores sellable units
type GormUnitRepository struct {
	rows tenantRows[models.UnitModel, realty.Unit, *models.UnitModel]
}

// NewGormUnitRepository lists units by code unless the caller sorts otherwise
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{
		rows: newTenantRows[models.UnitModel, realty.Unit, *models.UnitModel](
			db, models.UnitModelFromDomain, CodeNameSortFields, "code ASC"),
	}
}

func (r *GormUnitRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*realty.Unit, error) {
	return r.rows.get(ctx, tenantID, id)
}

// FindByIDForUpdate serializes concurrent sales of the same unit
func (r *GormUnitRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*realty.Unit, error) {
	return r.rows.getForUpdate(ctx, tenantID, id)
}

func (r *GormUnitRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter realty.UnitFilter) ([]realty.Unit, error) {
	return r.rows.list(ctx, tenantID, filter.Filter, unitFilter(filter))
}

func (r *GormUnitRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter realty.UnitFilter) (int64, error) {
	return r.rows.count(ctx, tenantID, unitFilter(filter))
}

func (r *GormUnitRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return r.rows.codeTaken(ctx, tenantID, code)
}

func (r *GormUnitRepository) Save(ctx context.Context, unit *realty.Unit) error {
	return r.rows.save(ctx, unit)
}

func (r *GormUnitRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.rows.remove(ctx, tenantID, id)
}

func unitFilter(filter realty.UnitFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = applySearch(q, filter.Search, "name", "code", "building_no")
		if filter.UnitType != nil {
			q = q.Where("unit_type = ?", *filter.UnitType)
		}
		if filter.Group != nil {
			q = q.Where("unit_group = ?", *filter.Group)
		}
		if filter.IsSold != nil {
			q = q.Where("is_sold = ?", *filter.IsSold)
		}
		return q
	}
}

var _ realty.UnitRepository = (*GormUnitRepository)(nil)
