package persistence

import (
	"context"
	"errors"

	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPartnerRepository implements PartnerRepository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// FindByIDForTenant finds a partner by ID within a tenant
func (r *GormPartnerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*equity.Partner, error) {
	var model models.PartnerModel
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

// FindAllForTenant lists partners matching the filter
func (r *GormPartnerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]equity.Partner, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnerModel{}).Where("tenant_id = ?", tenantID), filter)
	return r.find(applyPagination(applyOrder(query, filter, CodeNameSortFields, "name ASC"), filter))
}

// FindByIDs loads the given partners; unknown ids are skipped
func (r *GormPartnerRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]equity.Partner, error) {
	if len(ids) == 0 {
		return []equity.Partner{}, nil
	}
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("name ASC"))
}

// CountForTenant counts partners matching the filter
func (r *GormPartnerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnerModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a partner with the given code exists in the tenant
func (r *GormPartnerRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PartnerModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a partner
func (r *GormPartnerRepository) Save(ctx context.Context, p *equity.Partner) error {
	return r.db.WithContext(ctx).Save(models.PartnerModelFromDomain(p)).Error
}

// Delete deletes a partner within a tenant
func (r *GormPartnerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.PartnerModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormPartnerRepository) find(query *gorm.DB) ([]equity.Partner, error) {
	var partnerModels []models.PartnerModel
	if err := query.Find(&partnerModels).Error; err != nil {
		return nil, err
	}
	partners := make([]equity.Partner, len(partnerModels))
	for i, model := range partnerModels {
		partners[i] = *model.ToDomain()
	}
	return partners, nil
}

func (r *GormPartnerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "code", "phone")
	if v, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", v)
	}
	return query
}

// GormPartnersGroupRepository implements PartnersGroupRepository using GORM
type GormPartnersGroupRepository struct {
	db *gorm.DB
}

// NewGormPartnersGroupRepository creates a new GormPartnersGroupRepository
func NewGormPartnersGroupRepository(db *gorm.DB) *GormPartnersGroupRepository {
	return &GormPartnersGroupRepository{db: db}
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByIDForTenant loads a group with its members in entry order
func (r *GormPartnersGroupRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*equity.PartnersGroup, error) {
	var model models.PartnersGroupModel
	if err := r.db.WithContext(ctx).
		Preload("Members", preloadMembers).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists groups with their members
func (r *GormPartnersGroupRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]equity.PartnersGroup, error) {
	var groupModels []models.PartnersGroupModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnersGroupModel{}).Where("tenant_id = ?", tenantID), filter)
	query = applyPagination(applyOrder(query, filter, NameSortFields, "name ASC"), filter)
	if err := query.Preload("Members", preloadMembers).Find(&groupModels).Error; err != nil {
		return nil, err
	}

	groups := make([]equity.PartnersGroup, len(groupModels))
	for i, model := range groupModels {
		groups[i] = *model.ToDomain()
	}
	return groups, nil
}

// CountForTenant counts groups matching the filter
func (r *GormPartnersGroupRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnersGroupModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the group and replaces its member rows
func (r *GormPartnersGroupRepository) Save(ctx context.Context, g *equity.PartnersGroup) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(models.PartnersGroupModelFromDomain(g)).Error; err != nil {
		return err
	}
	if err := db.Where("group_id = ?", g.ID).Delete(&models.PartnersGroupMemberModel{}).Error; err != nil {
		return err
	}
	if len(g.Members) == 0 {
		return nil
	}

	members := make([]models.PartnersGroupMemberModel, len(g.Members))
	for i, m := range g.Members {
		members[i] = models.PartnersGroupMemberModel{
			ID:        uuid.New(),
			TenantID:  g.TenantID,
			GroupID:   g.ID,
			PartnerID: m.PartnerID,
			Percent:   m.Percent,
			Position:  i,
		}
	}
	return db.Create(&members).Error
}

// Delete removes a group and its members
func (r *GormPartnersGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tenant_id = ? AND group_id = ?", tenantID, id).
		Delete(&models.PartnersGroupMemberModel{}).Error; err != nil {
		return err
	}
	result := db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.PartnersGroupModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountGroupsWithPartner counts groups that list the partner as a member
func (r *GormPartnersGroupRepository) CountGroupsWithPartner(ctx context.Context, tenantID, partnerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PartnersGroupMemberModel{}).
		Where("tenant_id = ? AND partner_id = ?", tenantID, partnerID).
		Distinct("group_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPartnersGroupRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "description")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	return query
}

// GormShareEntryRepository implements ShareEntryRepository using GORM
type GormShareEntryRepository struct {
	db *gorm.DB
}

// NewGormShareEntryRepository creates a new GormShareEntryRepository
func NewGormShareEntryRepository(db *gorm.DB) *GormShareEntryRepository {
	return &GormShareEntryRepository{db: db}
}

// SaveBatch inserts the ledger lines produced by one receipt
func (r *GormShareEntryRepository) SaveBatch(ctx context.Context, entries []equity.ShareEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entryModels := make([]*models.ShareEntryModel, len(entries))
	for i := range entries {
		entryModels[i] = models.ShareEntryModelFromDomain(&entries[i])
	}
	return r.db.WithContext(ctx).Create(&entryModels).Error
}

// FindByVoucher returns the ledger lines of a receipt voucher
func (r *GormShareEntryRepository) FindByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) ([]equity.ShareEntry, error) {
	return r.find(r.db.WithContext(ctx).
		Where("tenant_id = ? AND receipt_voucher_id = ?", tenantID, voucherID).
		Order("created_at ASC"))
}

// FindAllForTenant lists ledger lines matching the filter
func (r *GormShareEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter equity.ShareEntryFilter) ([]equity.ShareEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.ShareEntryModel{}).Where("tenant_id = ?", tenantID)
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.From != nil {
		query = query.Where("entry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("entry_date <= ?", *filter.To)
	}
	return r.find(applyPagination(applyOrder(query, filter.Filter, CommonSortFields, "entry_date DESC, created_at DESC"), filter.Filter))
}

// SumByPartner totals a partner's share amounts, optionally within one group
func (r *GormShareEntryRepository) SumByPartner(ctx context.Context, tenantID, partnerID uuid.UUID, groupID *uuid.UUID) (valueobject.Money, error) {
	query := r.db.WithContext(ctx).Model(&models.ShareEntryModel{}).
		Where("tenant_id = ? AND partner_id = ?", tenantID, partnerID)
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	return sumAmount(query)
}

func (r *GormShareEntryRepository) find(query *gorm.DB) ([]equity.ShareEntry, error) {
	var entryModels []models.ShareEntryModel
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]equity.ShareEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Ensure repositories implement their interfaces
var (
	_ equity.PartnerRepository       = (*GormPartnerRepository)(nil)
	_ equity.PartnersGroupRepository = (*GormPartnersGroupRepository)(nil)
	_ equity.ShareEntryRepository    = (*GormShareEntryRepository)(nil)
)
