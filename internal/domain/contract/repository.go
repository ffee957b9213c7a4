package contract

import (
	"context"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractFilter defines filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	CustomerID      *uuid.UUID
	UnitID          *uuid.UUID
	PartnersGroupID *uuid.UUID
}

// InstallmentFilter defines filtering options for installment queries
type InstallmentFilter struct {
	shared.Filter
	ContractID *uuid.UUID
	Status     *InstallmentStatus
	DueFrom    *time.Time
	DueTo      *time.Time
	UnpaidOnly bool
}

// ContractRepository defines persistence for contracts and their schedules
type ContractRepository interface {
	// FindByIDForTenant loads a contract with its installments
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)

	// FindByIDForUpdate loads a contract with its installments and locks the contract row
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)

	// FindByInstallmentID loads the contract owning the installment
	FindByInstallmentID(ctx context.Context, tenantID, installmentID uuid.UUID) (*Contract, error)

	// FindAllForTenant lists contracts without installments
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ContractFilter) ([]Contract, error)

	// CountForTenant counts contracts matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ContractFilter) (int64, error)

	// Save creates or updates the contract and replaces its installments
	Save(ctx context.Context, c *Contract) error

	// SaveInstallments updates the given installment rows only
	SaveInstallments(ctx context.Context, installments []*Installment) error

	// Delete removes a contract and its installments
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsByCode checks the per-tenant contract code
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// ExistsForUnit checks whether the unit is already under contract
	ExistsForUnit(ctx context.Context, tenantID, unitID uuid.UUID) (bool, error)

	// CountByCustomer counts contracts of a customer
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)

	// CountByPartnersGroup counts contracts linked to a partners group
	CountByPartnersGroup(ctx context.Context, tenantID, groupID uuid.UUID) (int64, error)

	// FindInstallments lists installments across contracts
	FindInstallments(ctx context.Context, tenantID uuid.UUID, filter InstallmentFilter) ([]Installment, error)
}

// InstallmentPaymentRepository stores installment payment allocation records
type InstallmentPaymentRepository interface {
	SaveBatch(ctx context.Context, payments []InstallmentPayment) error
	Save(ctx context.Context, payment *InstallmentPayment) error
	FindActiveByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) ([]InstallmentPayment, error)
	FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]InstallmentPayment, error)
}
