package persistence

import (
	"context"
	"errors"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSafeRepository implements SafeRepository using GORM
type GormSafeRepository struct {
	db *gorm.DB
}

// NewGormSafeRepository creates a new GormSafeRepository
func NewGormSafeRepository(db *gorm.DB) *GormSafeRepository {
	return &GormSafeRepository{db: db}
}

// FindByIDForTenant finds a safe by ID within a tenant
func (r *GormSafeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.Safe, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate loads the safe with a row lock (SELECT ... FOR UPDATE).
// Every balance check followed by a voucher insert runs under this lock.
func (r *GormSafeRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*treasury.Safe, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindWalletByPartner returns the partner's wallet, nil if none
func (r *GormSafeRepository) FindWalletByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) (*treasury.Safe, error) {
	safe, err := r.first(r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_partner_wallet = ? AND partner_id = ?", tenantID, true, partnerID))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return safe, err
}

// FindAllForTenant lists safes and wallets
func (r *GormSafeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]treasury.Safe, error) {
	query := r.db.WithContext(ctx).Model(&models.SafeModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter.Search, "name", "description")
	if v, ok := filter.Filters["is_partner_wallet"]; ok {
		query = query.Where("is_partner_wallet = ?", v)
	}
	if v, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", v)
	}
	query = applyPagination(applyOrder(query, filter, NameSortFields, "name ASC"), filter)
	return r.find(query)
}

// FindGeneral lists the tenant's general (non-wallet) safes
func (r *GormSafeRepository) FindGeneral(ctx context.Context, tenantID uuid.UUID) ([]treasury.Safe, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_partner_wallet = ?", tenantID, false).
		Order("name ASC"))
}

// Save creates or updates a safe
func (r *GormSafeRepository) Save(ctx context.Context, s *treasury.Safe) error {
	return r.db.WithContext(ctx).Save(models.SafeModelFromDomain(s)).Error
}

// Delete deletes a safe within a tenant
func (r *GormSafeRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.SafeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormSafeRepository) first(query *gorm.DB) (*treasury.Safe, error) {
	var model models.SafeModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormSafeRepository) find(query *gorm.DB) ([]treasury.Safe, error) {
	var safeModels []models.SafeModel
	if err := query.Find(&safeModels).Error; err != nil {
		return nil, err
	}
	safes := make([]treasury.Safe, len(safeModels))
	for i, model := range safeModels {
		safes[i] = *model.ToDomain()
	}
	return safes, nil
}

// Ensure GormSafeRepository implements SafeRepository
var _ treasury.SafeRepository = (*GormSafeRepository)(nil)
