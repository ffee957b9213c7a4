package persistence

import (
	"context"

	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/realty"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Contracts() contract.ContractRepository {
	return NewGormContractRepository(r.tx)
}

func (r *gormTransactionalRepositories) InstallmentPayments() contract.InstallmentPaymentRepository {
	return NewGormInstallmentPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Units() realty.UnitRepository {
	return NewGormUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) Safes() treasury.SafeRepository {
	return NewGormSafeRepository(r.tx)
}

func (r *gormTransactionalRepositories) Receipts() treasury.ReceiptVoucherRepository {
	return NewGormReceiptVoucherRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() treasury.PaymentVoucherRepository {
	return NewGormPaymentVoucherRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sequences() treasury.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Partners() equity.PartnerRepository {
	return NewGormPartnerRepository(r.tx)
}

func (r *gormTransactionalRepositories) Groups() equity.PartnersGroupRepository {
	return NewGormPartnersGroupRepository(r.tx)
}

func (r *gormTransactionalRepositories) ShareEntries() equity.ShareEntryRepository {
	return NewGormShareEntryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Settlements() settlement.Repository {
	return NewGormSettlementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Items() inventory.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockMoves() inventory.StockMoveRepository {
	return NewGormStockMoveRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ uow.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
