// Package uow defines the unit of work every monetary operation runs in.
package uow

import (
	"context"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/realty"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/treasury"
)

// TransactionScope provides transactional access to the repositories.
// All repository operations performed inside fn belong to one database
// transaction that is committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	Contracts() contract.ContractRepository
	InstallmentPayments() contract.InstallmentPaymentRepository
	Units() realty.UnitRepository

	Safes() treasury.SafeRepository
	Receipts() treasury.ReceiptVoucherRepository
	Payments() treasury.PaymentVoucherRepository
	Sequences() treasury.SequenceRepository

	Partners() equity.PartnerRepository
	Groups() equity.PartnersGroupRepository
	ShareEntries() equity.ShareEntryRepository

	Settlements() settlement.Repository

	Items() inventory.ItemRepository
	StockMoves() inventory.StockMoveRepository
}

// Repositories is a plain set of repositories. It backs NoOpTransactionScope.
type Repositories struct {
	ContractRepo           contract.ContractRepository
	InstallmentPaymentRepo contract.InstallmentPaymentRepository
	UnitRepo               realty.UnitRepository
	SafeRepo               treasury.SafeRepository
	ReceiptRepo            treasury.ReceiptVoucherRepository
	PaymentRepo            treasury.PaymentVoucherRepository
	SequenceRepo           treasury.SequenceRepository
	PartnerRepo            equity.PartnerRepository
	GroupRepo              equity.PartnersGroupRepository
	ShareEntryRepo         equity.ShareEntryRepository
	SettlementRepo         settlement.Repository
	ItemRepo               inventory.ItemRepository
	StockMoveRepo          inventory.StockMoveRepository
}

func (r *Repositories) Contracts() contract.ContractRepository {
	return r.ContractRepo
}

func (r *Repositories) InstallmentPayments() contract.InstallmentPaymentRepository {
	return r.InstallmentPaymentRepo
}

func (r *Repositories) Units() realty.UnitRepository {
	return r.UnitRepo
}

func (r *Repositories) Safes() treasury.SafeRepository {
	return r.SafeRepo
}

func (r *Repositories) Receipts() treasury.ReceiptVoucherRepository {
	return r.ReceiptRepo
}

func (r *Repositories) Payments() treasury.PaymentVoucherRepository {
	return r.PaymentRepo
}

func (r *Repositories) Sequences() treasury.SequenceRepository {
	return r.SequenceRepo
}

func (r *Repositories) Partners() equity.PartnerRepository {
	return r.PartnerRepo
}

func (r *Repositories) Groups() equity.PartnersGroupRepository {
	return r.GroupRepo
}

func (r *Repositories) ShareEntries() equity.ShareEntryRepository {
	return r.ShareEntryRepo
}

func (r *Repositories) Settlements() settlement.Repository {
	return r.SettlementRepo
}

func (r *Repositories) Items() inventory.ItemRepository {
	return r.ItemRepo
}

func (r *Repositories) StockMoves() inventory.StockMoveRepository {
	return r.StockMoveRepo
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with mocked repositories.
type NoOpTransactionScope struct {
	repos *Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(repos *Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*Repositories)(nil)
)
