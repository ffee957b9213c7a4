package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

func preloadInstallments(db *gorm.DB) *gorm.DB {
	return db.Order("seq_no ASC")
}

// FindByIDForTenant loads a contract with its installments
func (r *GormContractRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Preload("Installments", preloadInstallments).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the contract row for the rest of the transaction.
// Installment rows are only written while the contract lock is held.
func (r *GormContractRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", model.ID).
		Order("seq_no ASC").
		Find(&model.Installments).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInstallmentID loads the contract owning the installment
func (r *GormContractRepository) FindByInstallmentID(ctx context.Context, tenantID, installmentID uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	sub := r.db.Model(&models.InstallmentModel{}).
		Select("contract_id").
		Where("tenant_id = ? AND id = ?", tenantID, installmentID)
	if err := r.db.WithContext(ctx).
		Preload("Installments", preloadInstallments).
		Where("tenant_id = ? AND id = (?)", tenantID, sub).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists contracts without installments
func (r *GormContractRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter contract.ContractFilter) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("tenant_id = ?", tenantID), filter)
	query = applyPagination(applyOrder(query, filter.Filter, ContractSortFields, "start_date DESC, code ASC"), filter.Filter)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]contract.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = *model.ToDomain()
	}
	return contracts, nil
}

// CountForTenant counts contracts matching the filter
func (r *GormContractRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter contract.ContractFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save upserts the contract and replaces its schedule
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(models.ContractModelFromDomain(c)).Error; err != nil {
		if what, ok := uniqueViolation(err); ok && strings.Contains(what, "unit") {
			return shared.NewDomainError("UNIT_ALREADY_SOLD", "Unit is already under contract")
		}
		return err
	}

	keep := make([]uuid.UUID, 0, len(c.Installments))
	for i := range c.Installments {
		keep = append(keep, c.Installments[i].ID)
	}

	stale := db.Where("contract_id = ?", c.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.InstallmentModel{}).Error; err != nil {
		return err
	}

	for i := range c.Installments {
		if err := db.Save(models.InstallmentModelFromDomain(&c.Installments[i])).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveInstallments updates the given installment rows only
func (r *GormContractRepository) SaveInstallments(ctx context.Context, installments []*contract.Installment) error {
	db := r.db.WithContext(ctx)
	for _, inst := range installments {
		if err := db.Save(models.InstallmentModelFromDomain(inst)).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a contract and its installments
func (r *GormContractRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tenant_id = ? AND contract_id = ?", tenantID, id).
		Delete(&models.InstallmentModel{}).Error; err != nil {
		return err
	}
	result := db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.ContractModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks the per-tenant contract code
func (r *GormContractRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	count, err := r.count(ctx, "tenant_id = ? AND code = ?", tenantID, code)
	return count > 0, err
}

// ExistsForUnit checks whether the unit is already under contract
func (r *GormContractRepository) ExistsForUnit(ctx context.Context, tenantID, unitID uuid.UUID) (bool, error) {
	count, err := r.count(ctx, "tenant_id = ? AND unit_id = ?", tenantID, unitID)
	return count > 0, err
}

// CountByCustomer counts contracts of a customer
func (r *GormContractRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	return r.count(ctx, "tenant_id = ? AND customer_id = ?", tenantID, customerID)
}

// CountByPartnersGroup counts contracts linked to a partners group
func (r *GormContractRepository) CountByPartnersGroup(ctx context.Context, tenantID, groupID uuid.UUID) (int64, error) {
	return r.count(ctx, "tenant_id = ? AND partners_group_id = ?", tenantID, groupID)
}

// FindInstallments lists installments across contracts
func (r *GormContractRepository) FindInstallments(ctx context.Context, tenantID uuid.UUID, filter contract.InstallmentFilter) ([]contract.Installment, error) {
	var installmentModels []models.InstallmentModel
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{}).Where("tenant_id = ?", tenantID)
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.UnpaidOnly {
		query = query.Where("paid_amount < amount")
	}
	query = applyPagination(applyOrder(query, filter.Filter, InstallmentSortFields, "due_date ASC, seq_no ASC"), filter.Filter)

	if err := query.Find(&installmentModels).Error; err != nil {
		return nil, err
	}

	installments := make([]contract.Installment, len(installmentModels))
	for i, model := range installmentModels {
		installments[i] = *model.ToDomain()
	}
	return installments, nil
}

func (r *GormContractRepository) count(ctx context.Context, where string, args ...any) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ContractModel{}).Where(where, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormContractRepository) applyFilter(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "code", "notes")
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.PartnersGroupID != nil {
		query = query.Where("partners_group_id = ?", *filter.PartnersGroupID)
	}
	return query
}

// GormInstallmentPaymentRepository implements InstallmentPaymentRepository using GORM
type GormInstallmentPaymentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentPaymentRepository creates a new GormInstallmentPaymentRepository
func NewGormInstallmentPaymentRepository(db *gorm.DB) *GormInstallmentPaymentRepository {
	return &GormInstallmentPaymentRepository{db: db}
}

// SaveBatch inserts allocation records produced by one receipt
func (r *GormInstallmentPaymentRepository) SaveBatch(ctx context.Context, payments []contract.InstallmentPayment) error {
	if len(payments) == 0 {
		return nil
	}
	paymentModels := make([]*models.InstallmentPaymentModel, len(payments))
	for i := range payments {
		paymentModels[i] = models.InstallmentPaymentModelFromDomain(&payments[i])
	}
	return r.db.WithContext(ctx).Create(&paymentModels).Error
}

// Save creates or updates one allocation record
func (r *GormInstallmentPaymentRepository) Save(ctx context.Context, payment *contract.InstallmentPayment) error {
	return r.db.WithContext(ctx).Save(models.InstallmentPaymentModelFromDomain(payment)).Error
}

// FindActiveByVoucher returns the unreversed allocations of a receipt voucher
func (r *GormInstallmentPaymentRepository) FindActiveByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) ([]contract.InstallmentPayment, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("tenant_id = ? AND receipt_voucher_id = ? AND reversed_at IS NULL", tenantID, voucherID))
}

// FindByContract returns every allocation of a contract, reversed ones included
func (r *GormInstallmentPaymentRepository) FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]contract.InstallmentPayment, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID))
}

func (r *GormInstallmentPaymentRepository) find(_ context.Context, query *gorm.DB) ([]contract.InstallmentPayment, error) {
	var paymentModels []models.InstallmentPaymentModel
	if err := query.Order("paid_on ASC, created_at ASC").Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]contract.InstallmentPayment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Ensure repositories implement their interfaces
var (
	_ contract.ContractRepository           = (*GormContractRepository)(nil)
	_ contract.InstallmentPaymentRepository = (*GormInstallmentPaymentRepository)(nil)
)
