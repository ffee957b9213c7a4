package persistence

import (
	"context"
	"errors"

	"github.com/erp/realestate/internal/domain/project"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements project.Repository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByIDForTenant finds a project by ID within a tenant
func (r *GormProjectRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
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

// FindAllForTenant lists projects matching the filter
func (r *GormProjectRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter project.Filter) ([]project.Project, error) {
	var projectModels []models.ProjectModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProjectModel{}).Where("tenant_id = ?", tenantID), filter)
	query = applyPagination(applyOrder(query, filter.Filter, CodeNameSortFields, "start_date DESC, code ASC"), filter.Filter)

	if err := query.Find(&projectModels).Error; err != nil {
		return nil, err
	}

	projects := make([]project.Project, len(projectModels))
	for i, model := range projectModels {
		projects[i] = *model.ToDomain()
	}
	return projects, nil
}

// CountForTenant counts projects matching the filter
func (r *GormProjectRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter project.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProjectModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a project with the given code exists in the tenant
func (r *GormProjectRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	return r.db.WithContext(ctx).Save(models.ProjectModelFromDomain(p)).Error
}

// Delete deletes a project within a tenant
func (r *GormProjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ProjectModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProjectRepository) applyFilter(query *gorm.DB, filter project.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "code")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	return query
}

// Ensure GormProjectRepository implements project.Repository
var _ project.Repository = (*GormProjectRepository)(nil)
