package persistence

import (
	"context"

	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// partyFilter searches the given columns and honours the is_active filter
func partyFilter(filter shared.Filter, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = applySearch(q, filter.Search, columns...)
		if active, ok := filter.Filters["is_active"]; ok {
			q = q.Where("is_active = ?", active)
		}
		return q
	}
}

var customerSearch = []string{"name", "code", "phone", "national_id"}

// GormCustomerRepository stores customers
type GormCustomerRepository struct {
	rows tenantRows[models.CustomerModel, party.Customer, *models.CustomerModel]
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{
		rows: newTenantRows[models.CustomerModel, party.Customer, *models.CustomerModel](
			db, models.CustomerModelFromDomain, CodeNameSortFields, "name ASC"),
	}
}

func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Customer, error) {
	return r.rows.get(ctx, tenantID, id)
}

func (r *GormCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]party.Customer, error) {
	return r.rows.list(ctx, tenantID, filter, partyFilter(filter, customerSearch...))
}

func (r *GormCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	return r.rows.count(ctx, tenantID, partyFilter(filter, customerSearch...))
}

func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return r.rows.codeTaken(ctx, tenantID, code)
}

func (r *GormCustomerRepository) Save(ctx context.Context, c *party.Customer) error {
	return r.rows.save(ctx, c)
}

func (r *GormCustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.rows.remove(ctx, tenantID, id)
}

var supplierSearch = []string{"name", "code", "phone"}

// GormSupplierRepository stores suppliers
type GormSupplierRepository struct {
	rows tenantRows[models.SupplierModel, party.Supplier, *models.SupplierModel]
}

func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{
		rows: newTenantRows[models.SupplierModel, party.Supplier, *models.SupplierModel](
			db, models.SupplierModelFromDomain, CodeNameSortFields, "name ASC"),
	}
}

func (r *GormSupplierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Supplier, error) {
	return r.rows.get(ctx, tenantID, id)
}

func (r *GormSupplierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]party.Supplier, error) {
	return r.rows.list(ctx, tenantID, filter, partyFilter(filter, supplierSearch...))
}

func (r *GormSupplierRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	return r.rows.count(ctx, tenantID, partyFilter(filter, supplierSearch...))
}

func (r *GormSupplierRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return r.rows.codeTaken(ctx, tenantID, code)
}

func (r *GormSupplierRepository) Save(ctx context.Context, s *party.Supplier) error {
	return r.rows.save(ctx, s)
}

func (r *GormSupplierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.rows.remove(ctx, tenantID, id)
}

var (
	_ party.CustomerRepository = (*GormCustomerRepository)(nil)
	_ party.SupplierRepository = (*GormSupplierRepository)(nil)
)
