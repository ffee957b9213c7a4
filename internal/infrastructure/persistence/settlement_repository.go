package persistence

import (
	"context"
	"errors"

	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettlementRepository implements settlement.Repository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByIDForTenant finds a settlement by ID within a tenant
func (r *GormSettlementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Settlement, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate loads a settlement and locks its row
func (r *GormSettlementRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Settlement, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindAllForTenant lists settlements matching the filter
func (r *GormSettlementRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter settlement.Filter) ([]settlement.Settlement, error) {
	var settlementModels []models.SettlementModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SettlementModel{}).Where("tenant_id = ?", tenantID), filter)
	query = applyPagination(applyOrder(query, filter.Filter, SettlementSortFields, "settlement_date DESC, number DESC"), filter.Filter)
	if err := query.Find(&settlementModels).Error; err != nil {
		return nil, err
	}

	settlements := make([]settlement.Settlement, len(settlementModels))
	for i, model := range settlementModels {
		settlements[i] = *model.ToDomain()
	}
	return settlements, nil
}

// CountForTenant counts settlements matching the filter
func (r *GormSettlementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter settlement.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SettlementModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a settlement
func (r *GormSettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	return r.db.WithContext(ctx).Save(models.SettlementModelFromDomain(s)).Error
}

// SaveBatch inserts the settlements produced by one run
func (r *GormSettlementRepository) SaveBatch(ctx context.Context, settlements []*settlement.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}
	settlementModels := make([]*models.SettlementModel, len(settlements))
	for i, s := range settlements {
		settlementModels[i] = models.SettlementModelFromDomain(s)
	}
	return r.db.WithContext(ctx).Create(&settlementModels).Error
}

// SumCompleted sums completed settlements paid (from) or received (to) by the partner
func (r *GormSettlementRepository) SumCompleted(ctx context.Context, tenantID, partnerID uuid.UUID, received bool, groupID *uuid.UUID) (valueobject.Money, error) {
	column := "from_partner_id"
	if received {
		column = "to_partner_id"
	}
	query := r.db.WithContext(ctx).Model(&models.SettlementModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, settlement.StatusCompleted).
		Where(column+" = ?", partnerID)
	if groupID != nil {
		query = query.Where("partners_group_id = ?", *groupID)
	}
	return sumAmount(query)
}

// SaveRun stores a settlement run with its balance snapshots
func (r *GormSettlementRepository) SaveRun(ctx context.Context, run *settlement.Run) error {
	model, err := models.SettlementRunModelFromDomain(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// FindRunByID finds a settlement run by ID within a tenant
func (r *GormSettlementRepository) FindRunByID(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Run, error) {
	var model models.SettlementRunModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRuns lists runs, newest first, optionally for one group
func (r *GormSettlementRepository) FindRuns(ctx context.Context, tenantID uuid.UUID, groupID *uuid.UUID, filter shared.Filter) ([]settlement.Run, error) {
	var runModels []models.SettlementRunModel
	query := r.db.WithContext(ctx).Model(&models.SettlementRunModel{}).Where("tenant_id = ?", tenantID)
	if groupID != nil {
		query = query.Where("partners_group_id = ?", *groupID)
	}
	query = applyPagination(applyOrder(query, filter, CommonSortFields, "created_at DESC"), filter)
	if err := query.Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]settlement.Run, len(runModels))
	for i, model := range runModels {
		runs[i] = *model.ToDomain()
	}
	return runs, nil
}

func (r *GormSettlementRepository) first(query *gorm.DB) (*settlement.Settlement, error) {
	var model models.SettlementModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormSettlementRepository) applyFilter(query *gorm.DB, filter settlement.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "number", "notes")
	if filter.PartnerID != nil {
		query = query.Where("from_partner_id = ? OR to_partner_id = ?", *filter.PartnerID, *filter.PartnerID)
	}
	if filter.PartnersGroupID != nil {
		query = query.Where("partners_group_id = ?", *filter.PartnersGroupID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RunID != nil {
		query = query.Where("run_id = ?", *filter.RunID)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// Ensure GormSettlementRepository implements settlement.Repository
var _ settlement.Repository = (*GormSettlementRepository)(nil)
