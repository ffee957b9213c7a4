package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applyVoucherFilter applies the filters both voucher tables understand.
// Cancelled vouchers are excluded unless IncludeCancelled is set.
func applyVoucherFilter(query *gorm.DB, filter treasury.VoucherFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "number", "description")
	if filter.SafeID != nil {
		query = query.Where("safe_id = ?", *filter.SafeID)
	}
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ? OR safe_id IN (SELECT id FROM safes WHERE partner_id = ?)",
			*filter.PartnerID, *filter.PartnerID)
	}
	if filter.Period.From != nil {
		query = query.Where("date >= ?", *filter.Period.From)
	}
	if filter.Period.To != nil {
		query = query.Where("date <= ?", *filter.Period.To)
	}
	if !filter.IncludeCancelled {
		query = query.Where("is_cancelled = ?", false)
	}
	if filter.ExpenseSourceOnly {
		query = query.Where("source = ?", treasury.SourceManual)
	}
	return query
}

// sumAmount returns COALESCE(SUM(amount), 0) for the query
func sumAmount(query *gorm.DB) (valueobject.Money, error) {
	var total decimal.Decimal
	if err := query.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return valueobject.Zero(), err
	}
	return valueobject.NewMoney(total), nil
}

// GormReceiptVoucherRepository implements ReceiptVoucherRepository using GORM
type GormReceiptVoucherRepository struct {
	db *gorm.DB
}

// NewGormReceiptVoucherRepository creates a new GormReceiptVoucherRepository
func NewGormReceiptVoucherRepository(db *gorm.DB) *GormReceiptVoucherRepository {
	return &GormReceiptVoucherRepository{db: db}
}

// FindByIDForTenant finds a receipt voucher by ID within a tenant
func (r *GormReceiptVoucherRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.ReceiptVoucher, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate loads a receipt voucher and locks its row
func (r *GormReceiptVoucherRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*treasury.ReceiptVoucher, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindAllForTenant lists receipt vouchers matching the filter
func (r *GormReceiptVoucherRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) ([]treasury.ReceiptVoucher, error) {
	var voucherModels []models.ReceiptVoucherModel
	query := applyPagination(applyOrder(r.query(ctx, tenantID, filter), filter.Filter, VoucherSortFields, "date DESC, number DESC"), filter.Filter)
	if err := query.Find(&voucherModels).Error; err != nil {
		return nil, err
	}

	vouchers := make([]treasury.ReceiptVoucher, len(voucherModels))
	for i, model := range voucherModels {
		vouchers[i] = *model.ToDomain()
	}
	return vouchers, nil
}

// CountForTenant counts receipt vouchers matching the filter
func (r *GormReceiptVoucherRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) (int64, error) {
	var count int64
	if err := r.query(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a receipt voucher
func (r *GormReceiptVoucherRepository) Save(ctx context.Context, rv *treasury.ReceiptVoucher) error {
	return r.db.WithContext(ctx).Save(models.ReceiptVoucherModelFromDomain(rv)).Error
}

// SumAmount totals the amount of receipt vouchers matching the filter
func (r *GormReceiptVoucherRepository) SumAmount(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) (valueobject.Money, error) {
	return sumAmount(r.query(ctx, tenantID, filter))
}

// CountBySafe counts receipt vouchers posted to a safe, cancelled ones included
func (r *GormReceiptVoucherRepository) CountBySafe(ctx context.Context, tenantID, safeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReceiptVoucherModel{}).
		Where("tenant_id = ? AND safe_id = ?", tenantID, safeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormReceiptVoucherRepository) query(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) *gorm.DB {
	query := applyVoucherFilter(r.db.WithContext(ctx).Model(&models.ReceiptVoucherModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	return query
}

func (r *GormReceiptVoucherRepository) first(query *gorm.DB) (*treasury.ReceiptVoucher, error) {
	var model models.ReceiptVoucherModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormPaymentVoucherRepository implements PaymentVoucherRepository using GORM
type GormPaymentVoucherRepository struct {
	db *gorm.DB
}

// NewGormPaymentVoucherRepository creates a new GormPaymentVoucherRepository
func NewGormPaymentVoucherRepository(db *gorm.DB) *GormPaymentVoucherRepository {
	return &GormPaymentVoucherRepository{db: db}
}

// FindByIDForTenant finds a payment voucher by ID within a tenant
func (r *GormPaymentVoucherRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.PaymentVoucher, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate loads a payment voucher and locks its row
func (r *GormPaymentVoucherRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*treasury.PaymentVoucher, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindAllForTenant lists payment vouchers matching the filter
func (r *GormPaymentVoucherRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) ([]treasury.PaymentVoucher, error) {
	var voucherModels []models.PaymentVoucherModel
	query := applyPagination(applyOrder(r.query(ctx, tenantID, filter), filter.Filter, VoucherSortFields, "date DESC, number DESC"), filter.Filter)
	if err := query.Find(&voucherModels).Error; err != nil {
		return nil, err
	}

	vouchers := make([]treasury.PaymentVoucher, len(voucherModels))
	for i, model := range voucherModels {
		vouchers[i] = *model.ToDomain()
	}
	return vouchers, nil
}

// CountForTenant counts payment vouchers matching the filter
func (r *GormPaymentVoucherRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) (int64, error) {
	var count int64
	if err := r.query(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a payment voucher
func (r *GormPaymentVoucherRepository) Save(ctx context.Context, pv *treasury.PaymentVoucher) error {
	return r.db.WithContext(ctx).Save(models.PaymentVoucherModelFromDomain(pv)).Error
}

// SumAmount totals the amount of payment vouchers matching the filter
func (r *GormPaymentVoucherRepository) SumAmount(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) (valueobject.Money, error) {
	return sumAmount(r.query(ctx, tenantID, filter))
}

// CountBySafe counts payment vouchers drawn on a safe, cancelled ones included
func (r *GormPaymentVoucherRepository) CountBySafe(ctx context.Context, tenantID, safeID uuid.UUID) (int64, error) {
	return r.count(ctx, "tenant_id = ? AND safe_id = ?", tenantID, safeID)
}

// CountBySupplier counts payment vouchers issued to a supplier
func (r *GormPaymentVoucherRepository) CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error) {
	return r.count(ctx, "tenant_id = ? AND supplier_id = ?", tenantID, supplierID)
}

func (r *GormPaymentVoucherRepository) count(ctx context.Context, where string, args ...any) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentVoucherModel{}).Where(where, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPaymentVoucherRepository) query(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) *gorm.DB {
	query := applyVoucherFilter(r.db.WithContext(ctx).Model(&models.PaymentVoucherModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	return query
}

func (r *GormPaymentVoucherRepository) first(query *gorm.DB) (*treasury.PaymentVoucher, error) {
	var model models.PaymentVoucherModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormSequenceRepository hands out gap-free per-tenant voucher numbers
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments and returns the counter for (tenant, key).
// The UPDATE holds the row lock until the surrounding transaction ends,
// so a rolled back voucher also rolls back its number.
func (r *GormSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	db := r.db.WithContext(ctx)

	seed := &models.VoucherSequenceModel{TenantID: tenantID, Key: key}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return 0, err
	}

	if err := db.Model(&models.VoucherSequenceModel{}).
		Where("tenant_id = ? AND seq_key = ?", tenantID, key).
		Updates(map[string]any{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return 0, err
	}

	var seq models.VoucherSequenceModel
	if err := db.Where("tenant_id = ? AND seq_key = ?", tenantID, key).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}

// Ensure repositories implement their interfaces
var (
	_ treasury.ReceiptVoucherRepository = (*GormReceiptVoucherRepository)(nil)
	_ treasury.PaymentVoucherRepository = (*GormPaymentVoucherRepository)(nil)
	_ treasury.SequenceRepository       = (*GormSequenceRepository)(nil)
)
